package lambdastack

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

// Every stack resource name carries the environment name as a suffix so
// that several environments of the same application can coexist in one
// account without colliding.

// ApplicationName returns the AppConfig application name for this stack.
func (c *Config) ApplicationName() string {
	return c.AppConfigName + "_" + c.AppConfigEnvName
}

// StrategyName returns the AppConfig deployment-strategy name.
func (c *Config) StrategyName() string {
	return c.DeploymentStrategyName + "_" + c.AppConfigEnvName
}

// DeployedFunctionName returns the function name as deployed.
func (c *Config) DeployedFunctionName() string {
	return c.FunctionName + "_" + c.AppConfigEnvName
}

// RoleName returns the name of the function's execution role.
func (c *Config) RoleName() string {
	return "LambdaRole_" + c.AppConfigEnvName
}

// logicalID returns the logical id intents use to reference each other.
func logicalID(typ IntentType, name string) string {
	return string(typ) + "/" + name
}

// profileName derives the configuration-profile name from a file path:
// the base name with its extension stripped.
func profileName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// logGroupARN returns the ARN of the log group Lambda creates for the
// deployed function.
func logGroupARN(region, account, functionName string) string {
	return fmt.Sprintf("arn:aws:logs:%s:%s:log-group:/aws/lambda/%s", region, account, functionName)
}

// logRegionARN returns the wildcard logs ARN used for log-group creation.
func logRegionARN(region, account string) string {
	return fmt.Sprintf("arn:aws:logs:%s:%s:*", region, account)
}

// appConfigApplicationARN returns the wildcard ARN covering all AppConfig
// applications in the account, matching the read grant the function needs.
func appConfigApplicationARN(account string) string {
	return fmt.Sprintf("arn:aws:appconfig:*:%s:application/*", account)
}

// validateARN checks that s is a syntactically valid AWS ARN.
func validateARN(subject, s string) error {
	if !arn.IsARN(s) {
		return &PlanError{
			Kind:    KindParseError,
			Subject: subject,
			Message: fmt.Sprintf("%q is not a valid ARN", s),
			Hint:    "expected arn:partition:service:region:account:resource",
		}
	}
	return nil
}
