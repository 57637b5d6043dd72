// Package config provides centralized configuration for the LogView tools.
//
// # Configuration Sources
//
// Configuration is assembled in this order, later sources winning:
//
//  1. Default values
//  2. A YAML file (LOGVIEW_CONFIG, logview.yaml, config.yaml, configs/config.yaml)
//  3. Environment variables
//
// # Environment Variables
//
// Environment variables follow the pattern LOGVIEW_<SECTION>_<FIELD>:
//
//	LOGVIEW_SERVER_PORT=8080
//	LOGVIEW_LOGGING_LEVEL=debug
//	LOGVIEW_PATHS_REFERENCE_FILE=/srv/ref/frames.xlsx
//	LOGVIEW_PIPELINE_WORKERS=4
//
// The lead-frame override and process tables are data, not switches, and are
// only read from YAML.
//
// # Path Management
//
// Relative paths resolve against the base directory, which defaults to the
// directory of the executable:
//
//	paths, _ := config.NewPaths(cfg.Paths)
//	out := paths.OutputDirFor("LOGVIEW")
package config
