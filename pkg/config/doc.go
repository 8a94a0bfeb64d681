// Package config loads and validates camkeep configuration.
//
// Configuration is a YAML file decoded on top of DefaultConfig. Fields left
// empty are filled by ApplyDefaults and the result is checked by Validate,
// which reports every problem at once as a ValidationError.
//
//	cfg, err := config.LoadConfig("camkeep.yaml")
//
// # Environment Variable Overrides
//
// LoadConfigWithEnvOverrides additionally reads CAMKEEP_SECTION_FIELD
// variables, which win over the file:
//
//   - CAMKEEP_ARCHIVE_ROOT overrides archive.root
//   - CAMKEEP_RETENTION_RECENT_BUDGET_GB overrides retention.recent_budget_gb
//   - CAMKEEP_RETENTION_DRY_RUN overrides retention.dry_run
//   - CAMKEEP_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// List values (extensions, target objects) are comma separated. Values that
// fail to parse are ignored.
//
// # Minimal File
//
//	archive:
//	  root: /srv/footage
//	retention:
//	  recent_budget_gb: 500
//	  historical_budget_gb: 400
//	  target_objects: [person]
//
// # Process-wide Configuration
//
// The daemon keeps one configuration for the process and swaps it when the
// file changes:
//
//	if err := config.Initialize(path); err != nil {
//	    return err
//	}
//	cfg := config.GetConfig()
//	...
//	_ = config.ReloadConfig("")
//
// One-shot commands load a Config explicitly and pass it down.
package config
