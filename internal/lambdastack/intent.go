package lambdastack

import "fmt"

// IntentType tags the resource-intent variants the planner can emit.
type IntentType string

// Resource intent types, in no particular order. The planner decides
// emission order; intents reference earlier intents by logical id.
const (
	IntentApplication        IntentType = "application"
	IntentEnvironment        IntentType = "environment"
	IntentDeploymentStrategy IntentType = "deployment_strategy"
	IntentConfigProfile      IntentType = "config_profile"
	IntentConfigDeployment   IntentType = "config_deployment"
	IntentIamRole            IntentType = "iam_role"
	IntentIamPolicyStatement IntentType = "iam_policy_statement"
	IntentFunction           IntentType = "function"
	IntentEventSource        IntentType = "event_source"
	IntentOutputGrant        IntentType = "output_grant"
)

// ResourceIntent is one abstract resource in the ordered plan. Exactly one
// of the payload fields is non-nil, matching Type. The external
// provisioning engine translates intents into cloud API calls.
type ResourceIntent struct {
	Type IntentType `json:"type"`
	// ID is the logical id other intents use to reference this one.
	ID   string `json:"id"`
	Name string `json:"name"`
	// Parent is the logical id of the owning intent, if any.
	Parent string `json:"parent,omitempty"`

	Role        *RoleSpec        `json:"role,omitempty"`
	Policy      *PolicyStatement `json:"policy,omitempty"`
	Strategy    *StrategySpec    `json:"strategy,omitempty"`
	Profile     *ProfileSpec     `json:"profile,omitempty"`
	Deployment  *DeploymentSpec  `json:"deployment,omitempty"`
	Function    *FunctionSpec    `json:"function,omitempty"`
	EventSource *EventSourceSpec `json:"event_source,omitempty"`
	Grant       *GrantSpec       `json:"grant,omitempty"`
}

// RoleSpec describes an IAM role intent.
type RoleSpec struct {
	// AssumedBy is the service principal allowed to assume the role.
	AssumedBy string `json:"assumed_by"`
}

// PolicyStatement describes an IAM policy statement attached to a role.
type PolicyStatement struct {
	Effect    string   `json:"effect"`
	Actions   []string `json:"actions"`
	Resources []string `json:"resources"`
}

// effectAllow is the only statement effect the planner emits.
const effectAllow = "Allow"

// StrategySpec describes an AppConfig deployment strategy.
type StrategySpec struct {
	DeploymentDurationMinutes int     `json:"deployment_duration_minutes"`
	GrowthFactor              float64 `json:"growth_factor"`
	ReplicateTo               string  `json:"replicate_to"`
}

// ProfileSpec describes a hosted AppConfig configuration profile together
// with the configuration content deployed into it.
type ProfileSpec struct {
	LocationURI string         `json:"location_uri"`
	ContentType string         `json:"content_type"`
	Content     map[string]any `json:"content"`
}

// DeploymentSpec wires a configuration profile to an environment using a
// deployment strategy, all referenced by logical id.
type DeploymentSpec struct {
	ProfileID     string `json:"profile_id"`
	StrategyID    string `json:"strategy_id"`
	EnvironmentID string `json:"environment_id"`
}

// FunctionSpec describes the Lambda function intent.
type FunctionSpec struct {
	Description    string            `json:"description"`
	MemorySize     int               `json:"memory_size"`
	TimeoutSeconds int               `json:"timeout_seconds"`
	Architecture   string            `json:"architecture"`
	VPC            string            `json:"vpc,omitempty"`
	Environment    map[string]string `json:"environment"`
	RoleID         string            `json:"role_id"`
	Image          ImageSource       `json:"image"`
}

// EventSourceSpec describes a stream event-source mapping for the function.
type EventSourceSpec struct {
	StreamARN        string `json:"stream_arn"`
	StartingPosition string `json:"starting_position"`
	FunctionID       string `json:"function_id"`
}

// GrantSpec describes an output permission grant on the function's role.
type GrantSpec struct {
	Actions     []string `json:"actions"`
	ResourceARN string   `json:"resource_arn"`
	RoleID      string   `json:"role_id"`
}

// PlanResult is the ordered intent sequence produced by one planning run,
// plus a human-readable summary line.
type PlanResult struct {
	Intents []ResourceIntent `json:"intents"`
	Summary string           `json:"summary"`
}

// buildSummary produces a summary line such as
// "Plan: 14 resources to create (7 config profiles)".
func buildSummary(intents []ResourceIntent) string {
	profiles := 0
	for _, in := range intents {
		if in.Type == IntentConfigProfile {
			profiles++
		}
	}
	return fmt.Sprintf("Plan: %d resources to create (%d config profiles)", len(intents), profiles)
}
