// Package serverapp wires configuration, logging, observability, the
// project schema, the mutation planner, and the HTTP surface into one
// application lifecycle: New -> Init -> Start -> WaitForStop -> Shutdown.
package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"graphql-datalayer/internal/config"
	"graphql-datalayer/internal/cuid"
	"graphql-datalayer/internal/dbexec"
	"graphql-datalayer/internal/logging"
	"graphql-datalayer/internal/mutaction"
	"graphql-datalayer/internal/observability"
	"graphql-datalayer/internal/resolver"
	"graphql-datalayer/internal/schema"
	"graphql-datalayer/internal/sqlgen"
)

// App is the assembled server.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	project        *schema.Project
	db             *sql.DB
	executor       *dbexec.Executor
	gqlSchema      graphql.Schema
	httpServer     *http.Server
	meterProvider  *observability.MeterProvider
	tracerProvider *observability.TracerProvider
	loggerProvider *observability.LoggerProvider
}

// New creates an App from validated configuration.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &App{cfg: cfg, logger: logger}, nil
}

// InitLogger builds the application logger, including the OTLP export
// bridge when log export is enabled.
func InitLogger(cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}

	var provider *observability.LoggerProvider
	if cfg.Observability.Enabled && cfg.Observability.ExportLogs {
		var err error
		provider, err = observability.InitLoggerProvider(observabilityConfig(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize log export: %w", err)
		}
		logCfg.LoggerProvider = provider.Provider()
	}

	return logging.NewLogger(logCfg), provider, nil
}

// AttachLoggerProvider hands the log export provider to the app for
// shutdown ordering.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.loggerProvider = provider
}

func observabilityConfig(cfg *config.Config) observability.Config {
	return observability.Config{
		ServiceName:      cfg.Observability.ServiceName,
		ServiceVersion:   cfg.Observability.ServiceVersion,
		Environment:      cfg.Observability.Environment,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
		OTLP: observability.OTLPConfig{
			Endpoint: cfg.Observability.OTLPEndpoint,
			Protocol: cfg.Observability.OTLPProtocol,
			Insecure: cfg.Observability.OTLPInsecure,
			Timeout:  cfg.Observability.OTLPTimeout,
		},
	}
}

// Init loads the project schema, connects observability and storage, and
// assembles the GraphQL surface.
func (a *App) Init(ctx context.Context) error {
	project, err := schema.LoadProjectFile(a.cfg.Project.ID, a.cfg.Project.SchemaFile)
	if err != nil {
		return fmt.Errorf("failed to load project schema: %w", err)
	}
	a.project = project
	a.logger.Info("project schema loaded",
		"project_id", project.ID,
		"models", len(project.Schema.Models),
	)

	var metrics *observability.PlannerMetrics
	if a.cfg.Observability.Enabled {
		a.meterProvider, err = observability.InitMeterProvider(observabilityConfig(a.cfg))
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		a.tracerProvider, err = observability.InitTracerProvider(observabilityConfig(a.cfg))
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		metrics, err = observability.InitMetrics(a.logger.Logger)
		if err != nil {
			return err
		}
	}

	if err := a.openDatabase(ctx); err != nil {
		return err
	}

	res, err := resolver.New(resolver.Options{
		Project: a.project,
		IDs:     cuid.UUIDGenerator{},
		Metrics: metrics,
		Logger:  a.logger,
		Run:     a.runPlan,
	})
	if err != nil {
		return err
	}
	a.gqlSchema, err = res.BuildSchema()
	if err != nil {
		return fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	a.httpServer = a.buildHTTPServer()
	return nil
}

func (a *App) openDatabase(ctx context.Context) error {
	db, err := otelsql.Open("mysql", a.cfg.Database.DSN(),
		otelsql.WithAttributes(semconv.DBSystemMySQL),
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(a.cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(a.cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(a.cfg.Database.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		a.logger.Warn("database not reachable at startup", "error", err.Error())
	}

	a.db = db
	a.executor = dbexec.New(db)
	return nil
}

// runPlan renders a mutaction plan to SQL and executes it transactionally.
func (a *App) runPlan(ctx context.Context, plan []mutaction.Mutaction) error {
	statements, err := sqlgen.RenderPlan(plan)
	if err != nil {
		return fmt.Errorf("failed to render plan: %w", err)
	}
	return a.executor.Run(ctx, statements)
}

func (a *App) buildHTTPServer() *http.Server {
	gqlHandler := handler.New(&handler.Config{
		Schema:     &a.gqlSchema,
		Pretty:     true,
		GraphiQL:   true,
		Playground: false,
	})

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Server.GraphQLPath, gqlHandler)
	mux.Handle(a.cfg.Server.MetricsPath, promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
}

// Start launches the HTTP server and returns its error channel.
func (a *App) Start() (<-chan error, error) {
	if a.httpServer == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("server listening",
			"addr", a.httpServer.Addr,
			"graphql_path", a.cfg.Server.GraphQLPath,
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	return serverErrors, nil
}

// WaitForStop blocks until a shutdown signal or server error arrives.
func (a *App) WaitForStop(stop <-chan os.Signal, serverErrors <-chan error) (os.Signal, error) {
	select {
	case sig := <-stop:
		a.logger.Info("received shutdown signal", "signal", sig.String())
		return sig, nil
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	}
}

// Shutdown stops the HTTP server and flushes observability providers, in
// reverse startup order.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("http shutdown: %w", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("database close: %w", err)
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx, a.logger.Logger); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx, a.logger.Logger); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.loggerProvider != nil {
		if err := a.loggerProvider.Shutdown(ctx, a.logger.Logger); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
