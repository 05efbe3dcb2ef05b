package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderlifecycle/cmd"
	"orderlifecycle/internal/adapters/out/postgres"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	if err := configs.Validate(); err != nil {
		log.Fatal(err)
	}

	level, err := configs.SlogLevel()
	if err != nil {
		log.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	gormDB, err := gorm.Open(pgdriver.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Error("Failed to close composition root", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobManager, err := app.CreateJobManager(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if err = jobManager.StartAll(); err != nil {
		log.Fatal("Failed to start jobs:", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, app, configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load(".env")

	return cmd.Config{
		HTTPPort:                     goDotEnvVariable("HTTP_PORT", cmd.DefaultHTTPPort),
		DBHost:                       goDotEnvVariable("DB_HOST", ""),
		DBPort:                       goDotEnvVariable("DB_PORT", "5432"),
		DBUser:                       goDotEnvVariable("DB_USER", ""),
		DBPassword:                   goDotEnvVariable("DB_PASSWORD", ""),
		DBName:                       goDotEnvVariable("DB_NAME", ""),
		DBSslMode:                    goDotEnvVariable("DB_SSLMODE", cmd.DefaultDBSslMode),
		LogLevel:                     goDotEnvVariable("LOG_LEVEL", cmd.DefaultLogLevel),
		PolicyFile:                   goDotEnvVariable("POLICY_FILE", ""),
		KafkaHost:                    goDotEnvVariable("KAFKA_HOST", ""),
		KafkaOrderStatusChangedTopic: goDotEnvVariable("KAFKA_ORDER_STATUS_CHANGED_TOPIC", cmd.DefaultKafkaOrderStatusChangedTopic),
		SystemOperatorID:             goDotEnvVariable("SYSTEM_OPERATOR_ID", cmd.DefaultSystemOperatorID),
		AutoCompleteSchedule:         goDotEnvVariable("AUTO_COMPLETE_SCHEDULE", ""),
	}
}

func goDotEnvVariable(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string, logger *slog.Logger) {
	e, err := app.CreateRouter()
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("Failed to shut down http server", "error", shutdownErr)
		}
	}()

	if err = e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}
