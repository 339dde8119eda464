package lambdastack

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v9"
)

// InputType enumerates supported event-source types for the function.
type InputType string

// OutputType enumerates supported output targets for the function.
type OutputType string

// Recognized input and output types.
const (
	InputKinesis InputType = "kinesis"

	OutputKinesis    OutputType = "kinesis"
	OutputPostgreSQL OutputType = "postgresql"
)

// valid reports whether the input type is a recognized value.
func (t InputType) valid() bool {
	return t == InputKinesis
}

// valid reports whether the output type is a recognized value.
func (t OutputType) valid() bool {
	return t == OutputKinesis || t == OutputPostgreSQL
}

// FunctionEnv is a user-supplied environment variable map for the function,
// provided as a JSON object in the FUNCTION_ENV variable.
type FunctionEnv map[string]string

// UnmarshalText parses the JSON object form used in the environment.
func (f *FunctionEnv) UnmarshalText(text []byte) error {
	m := map[string]string{}
	if err := json.Unmarshal(text, &m); err != nil {
		return fmt.Errorf("must be a JSON object of string values: %w", err)
	}
	*f = m
	return nil
}

// imageRefLocal is the sentinel image reference meaning "build the Docker
// image from the local context" instead of pulling from a registry.
const imageRefLocal = "local"

// Config holds the resolved deployment settings. It is populated once from
// the environment and is immutable afterward; all derived names and paths
// are computed from it on demand.
type Config struct {
	// AWS account and region the stack is planned for.
	AccountID string `env:"ACCOUNT_ID"`
	Region    string `env:"REGION"`

	// ConfigPath is the directory holding input.json, output.json,
	// secret.json, transform.json and the schemas/ subdirectory.
	ConfigPath string `env:"CONFIG_PATH"`

	InputType  InputType  `env:"INPUT_TYPE"`
	OutputType OutputType `env:"OUTPUT_TYPE"`

	// AppConfig naming triple. Resource names derive from these plus the
	// environment-name suffix (see naming.go).
	AppConfigName          string `env:"APP_CONFIG_NAME"`
	AppConfigEnvName       string `env:"APP_CONFIG_ENV_NAME"`
	DeploymentStrategyName string `env:"APP_CONFIG_DEPLOYMENT_STRATEGY_NAME"`

	// Secrets is the operator-declared list of secret ARNs. The grants in
	// the plan come from secret.json; this list is compared against it by
	// the diagnostics pass.
	Secrets []string `env:"SECRETS"`

	// Function settings.
	FunctionName        string      `env:"FUNCTION_NAME" envDefault:"LambdaFunctionKinesis"`
	FunctionDescription string      `env:"FUNCTION_DESCRIPTION" envDefault:"Lambda Function description"`
	FunctionMemorySize  int         `env:"FUNCTION_MEMORY_SIZE" envDefault:"128"`
	FunctionTimeout     int         `env:"FUNCTION_TIMEOUT" envDefault:"60"`
	FunctionVPC         string      `env:"FUNCTION_VPC"`
	FunctionEnv         FunctionEnv `env:"FUNCTION_ENV"`

	// DockerImage is either "local" or a "repo:tag" registry reference.
	DockerImage string `env:"DOCKER_IMAGE" envDefault:"local"`
}

// Parse reads the configuration from the environment without validating
// it. Callers that want every validation error call Validate themselves.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, wrapPlanError(KindParseError, "environment", err)
	}
	return cfg, nil
}

// Load reads the configuration from the environment and validates it.
// The first validation failure is returned as the error.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}
	return cfg, nil
}

// requiredFields maps required field accessors to their environment names.
// Ordering matters for deterministic error reporting.
func (c *Config) requiredFields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"ACCOUNT_ID", c.AccountID},
		{"REGION", c.Region},
		{"CONFIG_PATH", c.ConfigPath},
		{"INPUT_TYPE", string(c.InputType)},
		{"OUTPUT_TYPE", string(c.OutputType)},
		{"APP_CONFIG_NAME", c.AppConfigName},
		{"APP_CONFIG_ENV_NAME", c.AppConfigEnvName},
		{"APP_CONFIG_DEPLOYMENT_STRATEGY_NAME", c.DeploymentStrategyName},
	}
}

// Validate checks the config and returns all validation errors in a stable
// order. An empty slice means the config is usable for planning.
func (c *Config) Validate() []error {
	var errs []error

	for _, f := range c.requiredFields() {
		if f.value == "" {
			errs = append(errs, newPlanError(KindMissingField, f.name, "required field is not set"))
		}
	}

	if c.InputType != "" && !c.InputType.valid() {
		errs = append(errs, &PlanError{
			Kind:    KindInvalidEnum,
			Subject: "INPUT_TYPE",
			Message: fmt.Sprintf("unrecognized value %q", c.InputType),
			Hint:    `supported: "kinesis"`,
		})
	}
	if c.OutputType != "" && !c.OutputType.valid() {
		errs = append(errs, &PlanError{
			Kind:    KindInvalidEnum,
			Subject: "OUTPUT_TYPE",
			Message: fmt.Sprintf("unrecognized value %q", c.OutputType),
			Hint:    `supported: "kinesis", "postgresql"`,
		})
	}

	if _, err := parseImageRef(c.DockerImage); err != nil {
		errs = append(errs, err)
	}

	if c.FunctionMemorySize <= 0 {
		errs = append(errs, newPlanError(KindParseError, "FUNCTION_MEMORY_SIZE", "must be a positive number of megabytes"))
	}
	if c.FunctionTimeout <= 0 {
		errs = append(errs, newPlanError(KindParseError, "FUNCTION_TIMEOUT", "must be a positive number of seconds"))
	}

	return errs
}

// ImageSource describes where the function's Docker image comes from:
// either a local build or an existing registry image.
type ImageSource struct {
	BuildLocal bool   `json:"build_local,omitempty"`
	Repository string `json:"repository,omitempty"`
	Tag        string `json:"tag,omitempty"`
}

// parseImageRef resolves a Docker image reference. "local" selects a local
// build; anything else must split into exactly two non-empty parts on ":".
func parseImageRef(ref string) (ImageSource, error) {
	if ref == imageRefLocal {
		return ImageSource{BuildLocal: true}, nil
	}
	parts := strings.Split(ref, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ImageSource{}, &PlanError{
			Kind:    KindInvalidImageReference,
			Subject: "DOCKER_IMAGE",
			Message: fmt.Sprintf("%q is not %q or a repo:tag reference", ref, imageRefLocal),
			Hint:    "use the form myrepo/myimage:v1",
		}
	}
	return ImageSource{Repository: parts[0], Tag: parts[1]}, nil
}
