// Package lambdastack plans the AWS resources for a Kinesis-triggered
// Lambda function: the function itself, its execution role and policy
// statements, the AppConfig application with one hosted configuration
// profile per config file, and the Secrets Manager read grants. Planning
// is a pure function of the resolved Config and the local config files;
// applying the resulting intents is the provisioning engine's job.
package lambdastack

import "fmt"

// Fixed attributes of the emitted resources, matching what the deployed
// stack has always used.
const (
	lambdaServicePrincipal = "lambda.amazonaws.com"

	// AppConfig deployment strategy: deploy everything at once, no
	// replication.
	strategyDurationMinutes = 0
	strategyGrowthFactor    = 1.0
	strategyReplicateTo     = "NONE"

	// Profiles are hosted in AppConfig itself.
	profileLocationHosted = "hosted"
	profileContentType    = "application/json"

	functionArchitecture = "x86_64"

	// New event-source mappings start at the stream tip.
	startingPositionLatest = "LATEST"

	// arnKey is the JSON key carrying the stream ARN in input.json and
	// output.json.
	arnKey = "arn"
)

// Planner turns a resolved Config and FileSet into an ordered sequence of
// resource intents. The zero value is not usable; use NewPlanner.
type Planner struct {
	loader JSONLoader
}

// NewPlanner creates a Planner backed by the local filesystem.
func NewPlanner() *Planner {
	return &Planner{loader: osJSONLoader{}}
}

// newPlannerWithLoader is used by tests to plan against fake files.
func newPlannerWithLoader(loader JSONLoader) *Planner {
	return &Planner{loader: loader}
}

// Plan produces the ordered intent sequence for the stack. Any failure
// aborts planning; no partial sequence is returned. Later intents
// reference earlier ones by logical id, so emission order is fixed:
// role and log policies, AppConfig application/environment/strategy,
// the AppConfig read policy, one profile+deployment per config file,
// per-secret read grants, the function, and finally its input and
// output wiring.
func (p *Planner) Plan(cfg *Config, files *FileSet) (*PlanResult, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}

	var intents []ResourceIntent

	roleID := logicalID(IntentIamRole, cfg.RoleName())
	intents = append(intents, roleIntents(cfg, roleID)...)
	intents = append(intents, appConfigIntents(cfg, roleID)...)

	// Profile documents double as lookup sources for the input/output
	// wiring below, so each file is read exactly once per run.
	docs := make(map[string]map[string]any, len(files.SchemaPaths)+4)
	profiles, err := p.profileIntents(cfg, files, docs)
	if err != nil {
		return nil, err
	}
	intents = append(intents, profiles...)

	intents = append(intents, secretGrantIntents(files.Secrets, roleID)...)

	function, functionID, err := functionIntent(cfg, roleID)
	if err != nil {
		return nil, err
	}
	intents = append(intents, function)

	wiring, err := wiringIntents(cfg, files, docs, roleID, functionID)
	if err != nil {
		return nil, err
	}
	intents = append(intents, wiring...)

	return &PlanResult{Intents: intents, Summary: buildSummary(intents)}, nil
}

// roleIntents emits the execution role plus its two logging statements.
func roleIntents(cfg *Config, roleID string) []ResourceIntent {
	return []ResourceIntent{
		{
			Type: IntentIamRole,
			ID:   roleID,
			Name: cfg.RoleName(),
			Role: &RoleSpec{AssumedBy: lambdaServicePrincipal},
		},
		{
			Type:   IntentIamPolicyStatement,
			ID:     logicalID(IntentIamPolicyStatement, "log_group_create"),
			Name:   "log_group_create",
			Parent: roleID,
			Policy: &PolicyStatement{
				Effect:    effectAllow,
				Actions:   []string{"logs:CreateLogGroup"},
				Resources: []string{logRegionARN(cfg.Region, cfg.AccountID)},
			},
		},
		{
			Type:   IntentIamPolicyStatement,
			ID:     logicalID(IntentIamPolicyStatement, "log_stream_write"),
			Name:   "log_stream_write",
			Parent: roleID,
			Policy: &PolicyStatement{
				Effect:    effectAllow,
				Actions:   []string{"logs:CreateLogStream", "logs:PutLogEvents"},
				Resources: []string{logGroupARN(cfg.Region, cfg.AccountID, cfg.DeployedFunctionName())},
			},
		},
	}
}

// appConfigIntents emits the application, environment, deployment
// strategy, and the role's AppConfig read statement.
func appConfigIntents(cfg *Config, roleID string) []ResourceIntent {
	appID := logicalID(IntentApplication, cfg.ApplicationName())
	return []ResourceIntent{
		{
			Type: IntentApplication,
			ID:   appID,
			Name: cfg.ApplicationName(),
		},
		{
			Type:   IntentEnvironment,
			ID:     logicalID(IntentEnvironment, cfg.AppConfigEnvName),
			Name:   cfg.AppConfigEnvName,
			Parent: appID,
		},
		{
			Type: IntentDeploymentStrategy,
			ID:   logicalID(IntentDeploymentStrategy, cfg.StrategyName()),
			Name: cfg.StrategyName(),
			Strategy: &StrategySpec{
				DeploymentDurationMinutes: strategyDurationMinutes,
				GrowthFactor:              strategyGrowthFactor,
				ReplicateTo:               strategyReplicateTo,
			},
		},
		{
			Type:   IntentIamPolicyStatement,
			ID:     logicalID(IntentIamPolicyStatement, "appconfig_read"),
			Name:   "appconfig_read",
			Parent: roleID,
			Policy: &PolicyStatement{
				Effect: effectAllow,
				Actions: []string{
					"appconfig:GetConfiguration",
					"appconfig:GetApplication",
					"appconfig:GetLatestConfiguration",
					"appconfig:StartConfigurationSession",
				},
				Resources: []string{appConfigApplicationARN(cfg.AccountID)},
			},
		},
	}
}

// profileIntents loads every config file (schemas first, then the four
// fixed files) and emits a configuration profile plus a deployment for
// each. Loaded documents are memoized into docs for later wiring steps.
func (p *Planner) profileIntents(
	cfg *Config, files *FileSet, docs map[string]map[string]any,
) ([]ResourceIntent, error) {
	appID := logicalID(IntentApplication, cfg.ApplicationName())
	envID := logicalID(IntentEnvironment, cfg.AppConfigEnvName)
	strategyID := logicalID(IntentDeploymentStrategy, cfg.StrategyName())

	var intents []ResourceIntent
	for _, path := range files.ProfilePaths() {
		doc, err := p.loader.LoadJSON(path)
		if err != nil {
			return nil, classifyLoadError(path, err, KindInvalidJSON)
		}
		docs[path] = doc

		stem := profileName(path)
		profileID := logicalID(IntentConfigProfile, stem)
		intents = append(intents,
			ResourceIntent{
				Type:   IntentConfigProfile,
				ID:     profileID,
				Name:   stem,
				Parent: appID,
				Profile: &ProfileSpec{
					LocationURI: profileLocationHosted,
					ContentType: profileContentType,
					Content:     doc,
				},
			},
			ResourceIntent{
				Type:   IntentConfigDeployment,
				ID:     logicalID(IntentConfigDeployment, "deployment_"+stem),
				Name:   "deployment_" + stem,
				Parent: envID,
				Deployment: &DeploymentSpec{
					ProfileID:     profileID,
					StrategyID:    strategyID,
					EnvironmentID: envID,
				},
			},
		)
	}
	return intents, nil
}

// secretGrantIntents emits one GetSecretValue statement per secret, in
// sorted logical-name order. Whether the secret actually exists is an
// advisory concern handled by diagnostics, not a planning precondition.
func secretGrantIntents(secrets SecretsMap, roleID string) []ResourceIntent {
	var intents []ResourceIntent
	for _, name := range secrets.SortedNames() {
		stmtName := "secret_read_" + name
		intents = append(intents, ResourceIntent{
			Type:   IntentIamPolicyStatement,
			ID:     logicalID(IntentIamPolicyStatement, stmtName),
			Name:   stmtName,
			Parent: roleID,
			Policy: &PolicyStatement{
				Effect:    effectAllow,
				Actions:   []string{"secretsmanager:GetSecretValue"},
				Resources: []string{secrets[name]},
			},
		})
	}
	return intents
}

// functionIntent resolves the Docker image and emits the function.
func functionIntent(cfg *Config, roleID string) (ResourceIntent, string, error) {
	image, err := parseImageRef(cfg.DockerImage)
	if err != nil {
		return ResourceIntent{}, "", err
	}

	name := cfg.DeployedFunctionName()
	functionID := logicalID(IntentFunction, name)
	return ResourceIntent{
		Type: IntentFunction,
		ID:   functionID,
		Name: name,
		Function: &FunctionSpec{
			Description:    cfg.FunctionDescription,
			MemorySize:     cfg.FunctionMemorySize,
			TimeoutSeconds: cfg.FunctionTimeout,
			Architecture:   functionArchitecture,
			VPC:            cfg.FunctionVPC,
			Environment:    buildFunctionEnv(cfg),
			RoleID:         roleID,
			Image:          image,
		},
	}, functionID, nil
}

// wiringIntents emits the input event source and, for a Kinesis output,
// the PutRecord grant. A PostgreSQL output needs no grant: access is
// credential-based and assumed pre-provisioned.
func wiringIntents(
	cfg *Config, files *FileSet, docs map[string]map[string]any,
	roleID, functionID string,
) ([]ResourceIntent, error) {
	var intents []ResourceIntent

	if cfg.InputType == InputKinesis {
		streamARN, err := lookupARN(docs, files.InputPath)
		if err != nil {
			return nil, err
		}
		intents = append(intents, ResourceIntent{
			Type:   IntentEventSource,
			ID:     logicalID(IntentEventSource, "kinesis_input"),
			Name:   "kinesis_input",
			Parent: functionID,
			EventSource: &EventSourceSpec{
				StreamARN:        streamARN,
				StartingPosition: startingPositionLatest,
				FunctionID:       functionID,
			},
		})
	}

	if cfg.OutputType == OutputKinesis {
		streamARN, err := lookupARN(docs, files.OutputPath)
		if err != nil {
			return nil, err
		}
		intents = append(intents, ResourceIntent{
			Type:   IntentOutputGrant,
			ID:     logicalID(IntentOutputGrant, "kinesis_output"),
			Name:   "kinesis_output",
			Parent: roleID,
			Grant: &GrantSpec{
				Actions:     []string{"kinesis:PutRecord", "kinesis:PutRecords"},
				ResourceARN: streamARN,
				RoleID:      roleID,
			},
		})
	}

	return intents, nil
}

// lookupARN reads the "arn" key from an already-loaded config document.
func lookupARN(docs map[string]map[string]any, path string) (string, error) {
	doc, ok := docs[path]
	if !ok {
		return "", newPlanError(KindFileNotFound, path, "config file was not loaded")
	}
	v, ok := doc[arnKey]
	if !ok {
		return "", &PlanError{
			Kind:    KindMissingKey,
			Subject: path,
			Message: fmt.Sprintf("key %q is required", arnKey),
			Hint:    `add an "arn" entry pointing at the stream`,
		}
	}
	s, ok := v.(string)
	if !ok {
		return "", newPlanError(KindMissingKey, path,
			fmt.Sprintf("key %q must be a string", arnKey))
	}
	return s, nil
}
