package config

// Deployment environment names, matched against ServerConfig.Environment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// IsProductionLike reports whether an environment should be held to
// production configuration requirements.
func IsProductionLike(environment string) bool {
	return environment == EnvStaging || environment == EnvProduction
}
