package lambdastack

import (
	"os"
	"reflect"
	"testing"
)

// setValidEnv populates every required environment variable with values
// matching testConfig.
func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACCOUNT_ID", "111122223333")
	t.Setenv("REGION", "us-east-1")
	t.Setenv("CONFIG_PATH", "/cfg")
	t.Setenv("INPUT_TYPE", "kinesis")
	t.Setenv("OUTPUT_TYPE", "kinesis")
	t.Setenv("APP_CONFIG_NAME", "orders")
	t.Setenv("APP_CONFIG_ENV_NAME", "dev")
	t.Setenv("APP_CONFIG_DEPLOYMENT_STRATEGY_NAME", "allatonce")
}

// unsetEnv clears a variable for the duration of the test. t.Setenv is
// called first so the original value is restored afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoad_Defaults(t *testing.T) {
	setValidEnv(t)
	for _, key := range []string{
		"FUNCTION_NAME", "FUNCTION_DESCRIPTION", "FUNCTION_MEMORY_SIZE",
		"FUNCTION_TIMEOUT", "FUNCTION_VPC", "FUNCTION_ENV", "DOCKER_IMAGE", "SECRETS",
	} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FunctionName != "LambdaFunctionKinesis" {
		t.Errorf("FunctionName = %q", cfg.FunctionName)
	}
	if cfg.FunctionDescription != "Lambda Function description" {
		t.Errorf("FunctionDescription = %q", cfg.FunctionDescription)
	}
	if cfg.FunctionMemorySize != 128 {
		t.Errorf("FunctionMemorySize = %d", cfg.FunctionMemorySize)
	}
	if cfg.FunctionTimeout != 60 {
		t.Errorf("FunctionTimeout = %d", cfg.FunctionTimeout)
	}
	if cfg.DockerImage != "local" {
		t.Errorf("DockerImage = %q", cfg.DockerImage)
	}
}

func TestLoad_MissingRequiredField(t *testing.T) {
	setValidEnv(t)
	unsetEnv(t, "ACCOUNT_ID")

	_, err := Load()
	if !HasKind(err, KindMissingField) {
		t.Fatalf("err = %v, want %s", err, KindMissingField)
	}
	if pe := IsPlanError(err); pe.Subject != "ACCOUNT_ID" {
		t.Errorf("subject = %q, want ACCOUNT_ID", pe.Subject)
	}
}

func TestLoad_InvalidEnums(t *testing.T) {
	tests := []struct {
		key, value, subject string
	}{
		{"INPUT_TYPE", "sqs", "INPUT_TYPE"},
		{"OUTPUT_TYPE", "dynamodb", "OUTPUT_TYPE"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if !HasKind(err, KindInvalidEnum) {
				t.Fatalf("err = %v, want %s", err, KindInvalidEnum)
			}
			if pe := IsPlanError(err); pe.Subject != tt.subject {
				t.Errorf("subject = %q, want %q", pe.Subject, tt.subject)
			}
		})
	}
}

func TestLoad_FunctionEnvJSON(t *testing.T) {
	setValidEnv(t)
	t.Setenv("FUNCTION_ENV", `{"LOG_LEVEL":"debug","FEATURE":"on"}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FunctionEnv{"LOG_LEVEL": "debug", "FEATURE": "on"}
	if !reflect.DeepEqual(cfg.FunctionEnv, want) {
		t.Errorf("FunctionEnv = %v, want %v", cfg.FunctionEnv, want)
	}
}

func TestLoad_FunctionEnvMalformed(t *testing.T) {
	setValidEnv(t)
	t.Setenv("FUNCTION_ENV", `not-json`)

	_, err := Load()
	if !HasKind(err, KindParseError) {
		t.Fatalf("err = %v, want %s", err, KindParseError)
	}
}

func TestLoad_SecretsList(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SECRETS", "arn:aws:secretsmanager:us-east-1:111122223333:secret:a,arn:aws:secretsmanager:us-east-1:111122223333:secret:b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Secrets) != 2 {
		t.Fatalf("got %d secrets, want 2", len(cfg.Secrets))
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{DockerImage: "local", FunctionMemorySize: 128, FunctionTimeout: 60}
	errs := cfg.Validate()
	if len(errs) != 8 {
		t.Fatalf("got %d errors, want 8 (one per required field): %v", len(errs), errs)
	}
	for _, err := range errs {
		if !HasKind(err, KindMissingField) {
			t.Errorf("err = %v, want %s", err, KindMissingField)
		}
	}
}

func TestValidate_NonPositiveNumbers(t *testing.T) {
	cfg := testConfig()
	cfg.FunctionMemorySize = 0
	cfg.FunctionTimeout = -5

	errs := cfg.Validate()
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	for _, err := range errs {
		if !HasKind(err, KindParseError) {
			t.Errorf("err = %v, want %s", err, KindParseError)
		}
	}
}

func TestParseImageRef(t *testing.T) {
	tests := []struct {
		ref  string
		want ImageSource
		kind ErrorKind
	}{
		{ref: "local", want: ImageSource{BuildLocal: true}},
		{ref: "myrepo/img:v1", want: ImageSource{Repository: "myrepo/img", Tag: "v1"}},
		{ref: "myrepo/img", kind: KindInvalidImageReference},
		{ref: "myrepo/img:", kind: KindInvalidImageReference},
		{ref: ":v1", kind: KindInvalidImageReference},
		{ref: "a:b:c", kind: KindInvalidImageReference},
		{ref: "", kind: KindInvalidImageReference},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := parseImageRef(tt.ref)
			if tt.kind != "" {
				if !HasKind(err, tt.kind) {
					t.Fatalf("err = %v, want %s", err, tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseImageRef(%q) = %+v, want %+v", tt.ref, got, tt.want)
			}
		})
	}
}
