// Package config loads program configuration from a YAML file, a .env file
// and the environment.
//
// Viper reads the file, godotenv loads the .env file into the process
// environment, and variables carrying the program's prefix override file
// values:
//
//	cfg, err := config.Load("mytool")
//	// MYTOOL_PROCESS_GRACE_PERIOD=10s overrides process.grace_period
//
// Setup turns a loaded Config into a ready Runtime with the global logger,
// optional OpenTelemetry providers, and a process.Spawner built from the
// process defaults.
package config
