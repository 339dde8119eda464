package lambdastack

import (
	"errors"
	"fmt"
	"testing"
)

func TestPlanError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PlanError
		want string
	}{
		{
			name: "kind and subject",
			err:  newPlanError(KindMissingField, "ACCOUNT_ID", "required field is not set"),
			want: `missing_field "ACCOUNT_ID": required field is not set`,
		},
		{
			name: "with hint",
			err: &PlanError{
				Kind:    KindInvalidEnum,
				Subject: "INPUT_TYPE",
				Message: `unrecognized value "sqs"`,
				Hint:    `supported: "kinesis"`,
			},
			want: `invalid_enum "INPUT_TYPE": unrecognized value "sqs" [hint: supported: "kinesis"]`,
		},
		{
			name: "with cause",
			err:  wrapPlanError(KindParseError, "secret.json", errors.New("unexpected end of JSON input")),
			want: `parse_error "secret.json" (cause: unexpected end of JSON input)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlanError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := wrapPlanError(KindFileNotFound, "/cfg/input.json", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestIsPlanError_ThroughWrapping(t *testing.T) {
	inner := newPlanError(KindMissingKey, "input.json", `key "arn" is required`)
	wrapped := fmt.Errorf("planning failed: %w", inner)

	pe := IsPlanError(wrapped)
	if pe == nil {
		t.Fatal("IsPlanError returned nil for a wrapped PlanError")
	}
	if pe.Kind != KindMissingKey {
		t.Errorf("kind = %s, want %s", pe.Kind, KindMissingKey)
	}
	if !HasKind(wrapped, KindMissingKey) {
		t.Error("HasKind should match through wrapping")
	}
	if HasKind(wrapped, KindInvalidEnum) {
		t.Error("HasKind matched the wrong kind")
	}
}

func TestIsPlanError_PlainError(t *testing.T) {
	if pe := IsPlanError(errors.New("plain")); pe != nil {
		t.Errorf("IsPlanError = %v, want nil", pe)
	}
	if HasKind(nil, KindParseError) {
		t.Error("HasKind(nil) should be false")
	}
}
