// Package config loads and validates server configuration from defaults,
// config file, environment variables, and command-line flags, in ascending
// precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "GRAPHQL_DATALAYER"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	GraphQLPath     string        `mapstructure:"graphql_path"`
	MetricsPath     string        `mapstructure:"metrics_path"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds the MySQL-protocol connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN renders the go-sql-driver connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", d.User, d.Password, d.Host, d.Port, d.Database)
}

// ProjectConfig locates the project schema the planner serves.
type ProjectConfig struct {
	ID         string `mapstructure:"id"`
	SchemaFile string `mapstructure:"schema_file"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds OpenTelemetry settings.
type ObservabilityConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	ServiceName      string        `mapstructure:"service_name"`
	ServiceVersion   string        `mapstructure:"service_version"`
	Environment      string        `mapstructure:"environment"`
	TraceSampleRatio float64       `mapstructure:"trace_sample_ratio"`
	ExportLogs       bool          `mapstructure:"export_logs"`
	OTLPEndpoint     string        `mapstructure:"otlp_endpoint"`
	OTLPProtocol     string        `mapstructure:"otlp_protocol"`
	OTLPInsecure     bool          `mapstructure:"otlp_insecure"`
	OTLPTimeout      time.Duration `mapstructure:"otlp_timeout"`
}

// Config is the root configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Project       ProjectConfig       `mapstructure:"project"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.graphql_path", "/graphql")
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 4000)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "datalayer")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("project.id", "default")
	v.SetDefault("project.schema_file", "schema.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.service_name", "graphql-datalayer")
	v.SetDefault("observability.service_version", "")
	v.SetDefault("observability.environment", "development")
	v.SetDefault("observability.trace_sample_ratio", 1.0)
	v.SetDefault("observability.export_logs", false)
	v.SetDefault("observability.otlp_endpoint", "localhost:4317")
	v.SetDefault("observability.otlp_protocol", "grpc")
	v.SetDefault("observability.otlp_insecure", true)
	v.SetDefault("observability.otlp_timeout", 10*time.Second)
}

func registerFlags() {
	if pflag.CommandLine.Lookup("config") == nil {
		pflag.String("config", "", "Path to config file")
		pflag.String("server.port", "", "HTTP listen port")
		pflag.String("project.schema-file", "", "Path to the project schema file")
		pflag.String("logging.level", "", "Log level (debug, info, warn, error)")
	}
}

// Load builds the configuration from all sources.
func Load() (*Config, error) {
	registerFlags()
	if !pflag.Parsed() {
		pflag.Parse()
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile, _ := pflag.CommandLine.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindFlag(v, "server.port", "server.port")
	bindFlag(v, "project.schema_file", "project.schema-file")
	bindFlag(v, "logging.level", "logging.level")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return &cfg, nil
}

func bindFlag(v *viper.Viper, key, flag string) {
	if f := pflag.CommandLine.Lookup(flag); f != nil && f.Changed {
		v.Set(key, f.Value.String())
	}
}
