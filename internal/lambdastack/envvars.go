package lambdastack

import "sort"

// Environment variable keys injected into the deployed function. The
// function's runtime code uses them to locate its AppConfig profiles.
const (
	EnvAppConfigAppName = "app_config_app_name"
	EnvAppConfigEnvName = "app_config_environment_name"
	EnvProfileInput     = "app_config_profile_input"
	EnvProfileOutput    = "app_config_profile_output"
	EnvProfileSecrets   = "app_config_secrets"
	EnvProfileTransform = "app_config_transform"
)

// Injected profile pointer values. These are fixed names, not derived from
// the profile file stems.
const (
	profileInputValue     = "input"
	profileOutputValue    = "output"
	profileSecretsValue   = "secrets"
	profileTransformValue = "transform"
)

// buildFunctionEnv merges the user-supplied FUNCTION_ENV map with the six
// injected app_config_* keys. On a key collision the injected value wins;
// shadowedEnvKeys reports collisions so diagnostics can warn about them.
func buildFunctionEnv(cfg *Config) map[string]string {
	env := make(map[string]string, len(cfg.FunctionEnv)+6)
	for k, v := range cfg.FunctionEnv {
		env[k] = v
	}

	env[EnvAppConfigAppName] = cfg.ApplicationName()
	env[EnvAppConfigEnvName] = cfg.AppConfigEnvName
	env[EnvProfileInput] = profileInputValue
	env[EnvProfileOutput] = profileOutputValue
	env[EnvProfileSecrets] = profileSecretsValue
	env[EnvProfileTransform] = profileTransformValue

	return env
}

// injectedEnvKeys lists the keys buildFunctionEnv always sets.
var injectedEnvKeys = []string{
	EnvAppConfigAppName,
	EnvAppConfigEnvName,
	EnvProfileInput,
	EnvProfileOutput,
	EnvProfileSecrets,
	EnvProfileTransform,
}

// shadowedEnvKeys returns the user-supplied keys that buildFunctionEnv
// overwrites, sorted for stable output.
func shadowedEnvKeys(cfg *Config) []string {
	var shadowed []string
	for _, key := range injectedEnvKeys {
		if _, ok := cfg.FunctionEnv[key]; ok {
			shadowed = append(shadowed, key)
		}
	}
	sort.Strings(shadowed)
	return shadowed
}
