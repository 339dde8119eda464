package lambdastack

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeChecker answers existence checks from fixed sets. Secrets and streams
// exist unless listed in missing; log groups do not exist unless
// logGroupExists is set. err, if set, fails every lookup.
type fakeChecker struct {
	missing        map[string]bool
	logGroupExists bool
	err            error
}

func (c fakeChecker) SecretExists(_ context.Context, arn string) (bool, error) {
	return !c.missing[arn], c.err
}

func (c fakeChecker) StreamExists(_ context.Context, arn string) (bool, error) {
	return !c.missing[arn], c.err
}

func (c fakeChecker) LogGroupExists(_ context.Context, _ string) (bool, error) {
	return c.logGroupExists, c.err
}

func TestDiagnoseConfig_Clean(t *testing.T) {
	if warnings := DiagnoseConfig(testConfig()); len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestDiagnoseConfig_PlaceholderAccount(t *testing.T) {
	cfg := testConfig()
	cfg.AccountID = "123456789012"

	warnings := DiagnoseConfig(cfg)
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "placeholder") {
		t.Errorf("warnings = %v, want one placeholder warning", warnings)
	}
	if warnings[0].Category != CategoryConfiguration {
		t.Errorf("category = %q", warnings[0].Category)
	}
}

func TestDiagnoseConfig_LambdaLimits(t *testing.T) {
	cfg := testConfig()
	cfg.FunctionMemorySize = 64 // below the 128 MB floor
	cfg.FunctionTimeout = 1200  // above the 900s ceiling

	warnings := DiagnoseConfig(cfg)
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
}

func TestDiagnoseConfig_ShadowedEnvKeys(t *testing.T) {
	cfg := testConfig()
	cfg.FunctionEnv = FunctionEnv{EnvProfileInput: "custom"}

	warnings := DiagnoseConfig(cfg)
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, EnvProfileInput) {
		t.Errorf("warnings = %v, want one shadowed-key warning", warnings)
	}
}

func TestDiagnoseFiles_SecretDrift(t *testing.T) {
	cfg := testConfig()
	cfg.Secrets = []string{testSecretARN, "arn:aws:secretsmanager:us-east-1:111122223333:secret:stale"}
	files := testFileSet()
	files.Secrets = SecretsMap{
		"db":    testSecretARN,
		"extra": "arn:aws:secretsmanager:us-east-1:111122223333:secret:extra",
	}

	warnings := DiagnoseFiles(cfg, files)
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0].Message, "secret:stale") || !strings.Contains(warnings[0].Message, "missing from secret.json") {
		t.Errorf("warning[0] = %v", warnings[0])
	}
	if !strings.Contains(warnings[1].Message, "secret:extra") || !strings.Contains(warnings[1].Message, "not listed in SECRETS") {
		t.Errorf("warning[1] = %v", warnings[1])
	}
}

func TestDiagnoseFiles_EmptySecretsListIsQuiet(t *testing.T) {
	// An unset SECRETS list means the operator opted out of the
	// cross-check; grants from secret.json alone are not drift.
	cfg := testConfig()
	files := testFileSet()

	if warnings := DiagnoseFiles(cfg, files); len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestCheckResources_AllPresent(t *testing.T) {
	cfg := testConfig()
	result := mustPlan(t, cfg, testFileSet(), testLoader())

	warnings, err := CheckResources(context.Background(), fakeChecker{}, cfg, result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestCheckResources_MissingResources(t *testing.T) {
	cfg := testConfig()
	result := mustPlan(t, cfg, testFileSet(), testLoader())

	checker := fakeChecker{missing: map[string]bool{
		testSecretARN: true,
		testInputARN:  true,
	}}
	warnings, err := CheckResources(context.Background(), checker, cfg, result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
	for _, w := range warnings {
		if w.Category != CategoryResource {
			t.Errorf("category = %q, want %q", w.Category, CategoryResource)
		}
	}
}

func TestCheckResources_ExistingLogGroup(t *testing.T) {
	cfg := testConfig()
	result := mustPlan(t, cfg, testFileSet(), testLoader())

	warnings, err := CheckResources(context.Background(), fakeChecker{logGroupExists: true}, cfg, result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	w := warnings[0]
	if !strings.Contains(w.Message, "/aws/lambda/OrdersFunction_dev") || !strings.Contains(w.Message, "reused") {
		t.Errorf("expected a log-group reuse warning, got %v", w)
	}
}

func TestCheckResources_LookupError(t *testing.T) {
	cfg := testConfig()
	result := mustPlan(t, cfg, testFileSet(), testLoader())

	lookupErr := errors.New("throttled")
	_, err := CheckResources(context.Background(), fakeChecker{err: lookupErr}, cfg, result)
	if !errors.Is(err, lookupErr) {
		t.Fatalf("err = %v, want wrapped %v", err, lookupErr)
	}
}

func TestDiagnosticWarning_String(t *testing.T) {
	w := DiagnosticWarning{Category: CategoryResource, Message: "secret x does not exist", Hint: "create it"}
	if got, want := w.String(), "[resource] secret x does not exist (hint: create it)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	w.Hint = ""
	if got, want := w.String(), "[resource] secret x does not exist"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
