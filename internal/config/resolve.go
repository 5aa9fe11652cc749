package config

import (
	"os"
)

// Environment variable overrides. These mirror the flag/file/env priority
// chain used for every other setting: explicit flag first, then the
// environment, then the settings file.
const (
	EnvCloudName = "MEDIALENS_CLOUD"
	EnvAPIKey    = "MEDIALENS_API_KEY"
	EnvAPISecret = "MEDIALENS_API_SECRET"
)

// ResolveActiveName returns the cloud name that should be active, checking
// sources in priority order:
//
//  1. Provided flagName (e.g. from --environment)
//  2. MEDIALENS_CLOUD environment variable
//  3. The persisted selection in settings
//  4. The only configured environment, when exactly one exists
//
// Returns empty string if no source yields a name.
func ResolveActiveName(flagName string, settings *Settings, envs Environments) string {
	if flagName != "" {
		return flagName
	}

	if name := os.Getenv(EnvCloudName); name != "" {
		return name
	}

	if settings != nil && settings.ActiveEnvironment != "" {
		return settings.ActiveEnvironment
	}

	if len(envs) == 1 {
		for name := range envs {
			return name
		}
	}

	return ""
}

// ResolveActiveNameSource returns the active cloud name and where it came
// from ("flag", "environment", "settings", "single", or ""). Used by
// --verbose output to show why a given cloud is active.
func ResolveActiveNameSource(flagName string, settings *Settings, envs Environments) (string, string) {
	if flagName != "" {
		return flagName, "flag"
	}
	if name := os.Getenv(EnvCloudName); name != "" {
		return name, "environment"
	}
	if settings != nil && settings.ActiveEnvironment != "" {
		return settings.ActiveEnvironment, "settings"
	}
	if len(envs) == 1 {
		for name := range envs {
			return name, "single"
		}
	}
	return "", ""
}

// OverlayEnvCredentials merges MEDIALENS_API_KEY / MEDIALENS_API_SECRET over
// the named environment when both variables are set. This lets CI jobs run
// against a cloud without a credentials file on disk.
func OverlayEnvCredentials(envs Environments) Environments {
	name := os.Getenv(EnvCloudName)
	key := os.Getenv(EnvAPIKey)
	secret := os.Getenv(EnvAPISecret)
	if name == "" || key == "" || secret == "" {
		return envs
	}

	out := make(Environments, len(envs)+1)
	for n, e := range envs {
		out[n] = e
	}
	base := out[name]
	base.CloudName = name
	base.APIKey = key
	base.APISecret = secret
	out[name] = base
	return out
}
