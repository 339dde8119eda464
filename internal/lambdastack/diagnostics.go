package lambdastack

import (
	"context"
	"fmt"
	"sort"
)

// Warning categories.
const (
	CategoryConfiguration = "configuration"
	CategoryResource      = "resource"
)

// Lambda service limits used for advisory checks.
const (
	lambdaMinMemoryMB    = 128
	lambdaMaxMemoryMB    = 10240
	lambdaMaxTimeoutSecs = 900
)

// placeholderAccountID is the account id commonly left behind from docs.
const placeholderAccountID = "123456789012"

// DiagnosticWarning represents a non-fatal issue detected before planning
// or applying. Unlike Validate errors, warnings never abort a run.
type DiagnosticWarning struct {
	Category string
	Message  string
	Hint     string
}

// String formats the warning for display.
func (w DiagnosticWarning) String() string {
	if w.Hint != "" {
		return fmt.Sprintf("[%s] %s (hint: %s)", w.Category, w.Message, w.Hint)
	}
	return fmt.Sprintf("[%s] %s", w.Category, w.Message)
}

// DiagnoseConfig checks the resolved configuration for likely
// misconfigurations that validation alone cannot reject.
func DiagnoseConfig(cfg *Config) []DiagnosticWarning {
	var warnings []DiagnosticWarning

	if cfg.AccountID == placeholderAccountID {
		warnings = append(warnings, DiagnosticWarning{
			Category: CategoryConfiguration,
			Message:  "ACCOUNT_ID is the placeholder account id " + placeholderAccountID,
			Hint:     "replace with your real AWS account id",
		})
	}

	if cfg.FunctionMemorySize < lambdaMinMemoryMB || cfg.FunctionMemorySize > lambdaMaxMemoryMB {
		warnings = append(warnings, DiagnosticWarning{
			Category: CategoryConfiguration,
			Message: fmt.Sprintf("FUNCTION_MEMORY_SIZE %d MB is outside the Lambda range %d-%d",
				cfg.FunctionMemorySize, lambdaMinMemoryMB, lambdaMaxMemoryMB),
		})
	}
	if cfg.FunctionTimeout > lambdaMaxTimeoutSecs {
		warnings = append(warnings, DiagnosticWarning{
			Category: CategoryConfiguration,
			Message: fmt.Sprintf("FUNCTION_TIMEOUT %ds exceeds the Lambda maximum of %ds",
				cfg.FunctionTimeout, lambdaMaxTimeoutSecs),
		})
	}

	if shadowed := shadowedEnvKeys(cfg); len(shadowed) > 0 {
		warnings = append(warnings, DiagnosticWarning{
			Category: CategoryConfiguration,
			Message:  fmt.Sprintf("FUNCTION_ENV keys %v are overwritten by injected app_config_* values", shadowed),
			Hint:     "rename the conflicting keys in FUNCTION_ENV",
		})
	}

	return warnings
}

// DiagnoseFiles cross-checks the SECRETS list against the secret.json map.
// The plan grants access to the map's ARNs only; entries present in one
// place but not the other usually mean a stale .env or config file.
func DiagnoseFiles(cfg *Config, files *FileSet) []DiagnosticWarning {
	declared := make(map[string]bool, len(cfg.Secrets))
	for _, arn := range cfg.Secrets {
		declared[arn] = true
	}
	granted := make(map[string]bool, len(files.Secrets))
	for _, arn := range files.Secrets {
		granted[arn] = true
	}

	var warnings []DiagnosticWarning
	for _, arn := range sortedSet(declared) {
		if !granted[arn] {
			warnings = append(warnings, DiagnosticWarning{
				Category: CategoryConfiguration,
				Message:  fmt.Sprintf("secret %s is listed in SECRETS but missing from secret.json; no grant will be planned", arn),
			})
		}
	}
	for _, arn := range sortedSet(granted) {
		if len(declared) > 0 && !declared[arn] {
			warnings = append(warnings, DiagnosticWarning{
				Category: CategoryConfiguration,
				Message:  fmt.Sprintf("secret %s is granted via secret.json but not listed in SECRETS", arn),
			})
		}
	}
	return warnings
}

// sortedSet returns the set's members in lexicographic order.
func sortedSet(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResourceChecker looks up external resources referenced by a plan. The
// checks are advisory: a missing resource produces a warning, never a
// planning failure, because the provisioning engine owns the authoritative
// existence semantics.
type ResourceChecker interface {
	SecretExists(ctx context.Context, arn string) (bool, error)
	StreamExists(ctx context.Context, arn string) (bool, error)
	LogGroupExists(ctx context.Context, name string) (bool, error)
}

// CheckResources runs the advisory existence checks for every plan intent
// that references an external resource: secret grants, the input event
// source, the output grant, and the function's log group. Lookup errors
// (as opposed to clean not-found answers) abort the check.
func CheckResources(
	ctx context.Context, checker ResourceChecker, cfg *Config, result *PlanResult,
) ([]DiagnosticWarning, error) {
	var warnings []DiagnosticWarning

	for _, intent := range result.Intents {
		switch intent.Type {
		case IntentIamPolicyStatement:
			w, err := checkSecretStatement(ctx, checker, intent)
			if err != nil {
				return nil, err
			}
			warnings = append(warnings, w...)
		case IntentEventSource:
			w, err := checkStream(ctx, checker, intent.EventSource.StreamARN, "input stream")
			if err != nil {
				return nil, err
			}
			warnings = append(warnings, w...)
		case IntentOutputGrant:
			w, err := checkStream(ctx, checker, intent.Grant.ResourceARN, "output stream")
			if err != nil {
				return nil, err
			}
			warnings = append(warnings, w...)
		}
	}

	logGroup := "/aws/lambda/" + cfg.DeployedFunctionName()
	exists, err := checker.LogGroupExists(ctx, logGroup)
	if err != nil {
		return nil, fmt.Errorf("check log group %s: %w", logGroup, err)
	}
	if exists {
		warnings = append(warnings, DiagnosticWarning{
			Category: CategoryResource,
			Message:  fmt.Sprintf("log group %s already exists and will be reused", logGroup),
		})
	}

	return warnings, nil
}

// checkSecretStatement verifies the secret behind a GetSecretValue
// statement exists. Non-secret statements are skipped.
func checkSecretStatement(
	ctx context.Context, checker ResourceChecker, intent ResourceIntent,
) ([]DiagnosticWarning, error) {
	if len(intent.Policy.Actions) != 1 || intent.Policy.Actions[0] != "secretsmanager:GetSecretValue" {
		return nil, nil
	}
	var warnings []DiagnosticWarning
	for _, arn := range intent.Policy.Resources {
		exists, err := checker.SecretExists(ctx, arn)
		if err != nil {
			return nil, fmt.Errorf("check secret %s: %w", arn, err)
		}
		if !exists {
			warnings = append(warnings, DiagnosticWarning{
				Category: CategoryResource,
				Message:  fmt.Sprintf("secret %s does not exist", arn),
				Hint:     "create the secret or fix its ARN in secret.json",
			})
		}
	}
	return warnings, nil
}

// checkStream verifies a referenced Kinesis stream exists.
func checkStream(
	ctx context.Context, checker ResourceChecker, arn, role string,
) ([]DiagnosticWarning, error) {
	exists, err := checker.StreamExists(ctx, arn)
	if err != nil {
		return nil, fmt.Errorf("check stream %s: %w", arn, err)
	}
	if !exists {
		return []DiagnosticWarning{{
			Category: CategoryResource,
			Message:  fmt.Sprintf("%s %s does not exist", role, arn),
			Hint:     "create the stream or fix the arn in the config file",
		}}, nil
	}
	return nil, nil
}
