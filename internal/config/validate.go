package config

import "fmt"

// ValidationIssue describes one problem found in the configuration.
type ValidationIssue struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult aggregates validation output. Warnings do not prevent
// startup; errors do.
type ValidationResult struct {
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// HasErrors reports whether any fatal issue was found.
func (r ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

func (r *ValidationResult) addError(field, message, hint string) {
	r.Errors = append(r.Errors, ValidationIssue{Field: field, Message: message, Hint: hint})
}

func (r *ValidationResult) addWarning(field, message, hint string) {
	r.Warnings = append(r.Warnings, ValidationIssue{Field: field, Message: message, Hint: hint})
}

// Validate checks the configuration for fatal and suspicious settings.
func (c *Config) Validate() ValidationResult {
	var result ValidationResult

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		result.addError("server.port",
			fmt.Sprintf("invalid port %d", c.Server.Port),
			"use a port between 1 and 65535")
	}
	if c.Server.GraphQLPath == "" || c.Server.GraphQLPath[0] != '/' {
		result.addError("server.graphql_path",
			fmt.Sprintf("invalid path %q", c.Server.GraphQLPath),
			"paths must start with /")
	}
	if c.Server.MetricsPath == c.Server.GraphQLPath {
		result.addError("server.metrics_path",
			"metrics path collides with the GraphQL path",
			"pick distinct paths")
	}

	if c.Database.Host == "" {
		result.addError("database.host", "database host is empty", "set database.host")
	}
	if c.Database.Database == "" {
		result.addError("database.database", "database name is empty", "set database.database")
	}
	if c.Database.Password == "" {
		result.addWarning("database.password", "connecting without a password", "set a password outside local development")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		result.addWarning("database.max_idle_conns",
			"idle connection limit exceeds open connection limit",
			"idle connections above the open limit are never kept")
	}

	if c.Project.ID == "" {
		result.addError("project.id", "project id is empty", "set project.id")
	}
	if c.Project.SchemaFile == "" {
		result.addError("project.schema_file", "schema file is not set", "point project.schema_file at a schema definition")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		result.addError("logging.level",
			fmt.Sprintf("unknown level %q", c.Logging.Level),
			"use debug, info, warn, or error")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		result.addError("logging.format",
			fmt.Sprintf("unknown format %q", c.Logging.Format),
			"use json or text")
	}

	if c.Observability.Enabled {
		if c.Observability.OTLPEndpoint == "" {
			result.addError("observability.otlp_endpoint", "OTLP endpoint is empty", "set the collector endpoint")
		}
		if c.Observability.TraceSampleRatio < 0 || c.Observability.TraceSampleRatio > 1 {
			result.addError("observability.trace_sample_ratio",
				fmt.Sprintf("ratio %v outside [0, 1]", c.Observability.TraceSampleRatio),
				"use a value between 0 and 1")
		}
	}

	return result
}
