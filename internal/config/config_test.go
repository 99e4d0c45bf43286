package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/spf13/viper"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return &cfg
}

func TestDefaults(t *testing.T) {
	cfg := defaultConfig(t)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/graphql", cfg.Server.GraphQLPath)
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 4000, cfg.Database.Port)
	assert.Equal(t, "default", cfg.Project.ID)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Observability.Enabled)
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     4000,
		User:     "root",
		Password: "secret",
		Database: "datalayer",
	}
	assert.Equal(t, "root:secret@tcp(db.internal:4000)/datalayer?parseTime=true", cfg.DSN())
}

func TestValidate_DefaultsPass(t *testing.T) {
	cfg := defaultConfig(t)
	result := cfg.Validate()
	assert.False(t, result.HasErrors())
	// Empty password only warns.
	assert.NotEmpty(t, result.Warnings)
}

func TestValidate_BadPort(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Server.Port = 0
	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Equal(t, "server.port", result.Errors[0].Field)
}

func TestValidate_PathCollision(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Server.MetricsPath = cfg.Server.GraphQLPath
	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Equal(t, "server.metrics_path", result.Errors[0].Field)
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Logging.Level = "verbose"
	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Equal(t, "logging.level", result.Errors[0].Field)
}

func TestValidate_MissingProject(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Project.ID = ""
	cfg.Project.SchemaFile = ""
	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Len(t, result.Errors, 2)
}

func TestValidate_ObservabilityRatio(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Observability.Enabled = true
	cfg.Observability.TraceSampleRatio = 2
	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Equal(t, "observability.trace_sample_ratio", result.Errors[0].Field)
}
