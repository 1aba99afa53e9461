// Package config holds the settings for loading and exporting a delimited
// table. A Config is built from Default, overlaid with a YAML or TOML file
// through Load, and checked with Validate before use.
//
//	cfg := config.Default()
//	if err := config.Load("delimtab.yaml", cfg); err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// A YAML file for the CLI looks like:
//
//	source: s3://reports/2024/q1.csv.gz
//	delimiter: ";"
//	kind: float
//	compression: auto
//	log:
//	  level: debug
//	  encoding: console
//	export:
//	  format: arrow
//	  output: q1.arrow
//
// The same keys work in TOML. Values may reference environment variables
// as ${NAME}; unset variables expand to the empty string.
package config
