package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpadapter "orderlifecycle/internal/adapters/in/http"
	"orderlifecycle/internal/adapters/in/policyfile"
	"orderlifecycle/internal/adapters/out/eventbus"
	"orderlifecycle/internal/adapters/out/metrics"
	"orderlifecycle/internal/adapters/out/postgres"
	"orderlifecycle/internal/adapters/out/postgres/auditrepo"
	"orderlifecycle/internal/adapters/out/postgres/operatorrepo"
	"orderlifecycle/internal/adapters/out/postgres/orderrepo"
	"orderlifecycle/internal/core/application/usecases/commands"
	"orderlifecycle/internal/core/application/usecases/queries"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/services"
	"orderlifecycle/internal/jobs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived collaborators of the process. Policy
// derived services, metrics and the Kafka writer are built once; handlers are
// created on demand around them.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	policy    services.Policy
	validator *services.StatusValidator
	gate      *services.PermissionGate
	operators *operatorrepo.GormOperatorRepository

	registry    *prometheus.Registry
	metrics     *metrics.StatusMetrics
	kafkaWriter *kafka.Writer
	publisher   *eventbus.StatusChangePublisher
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	policy, err := policyfile.Load(config.PolicyFile)
	if err != nil {
		return nil, err
	}

	table, err := services.NewTransitionTable(policy)
	if err != nil {
		return nil, fmt.Errorf("build transition table: %w", err)
	}

	operators := operatorrepo.NewGormOperatorRepository(gormDB)
	gate, err := services.NewPermissionGate(policy, operators)
	if err != nil {
		return nil, fmt.Errorf("build permission gate: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	statusMetrics, err := metrics.NewStatusMetrics(registry)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		policy:     policy,
		validator:  services.NewStatusValidator(table, time.Now),
		gate:       gate,
		operators:  operators,
		registry:   registry,
		metrics:    statusMetrics,
	}

	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		c.kafkaWriter = eventbus.NewWriter(brokers, config.KafkaOrderStatusChangedTopic)
		if c.publisher, err = eventbus.NewStatusChangePublisher(c.kafkaWriter); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("KAFKA_HOST is not set, status changes will not be published")
	}

	return c, nil
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() (*commands.UpdateOrderStatusCommandHandler, error) {
	var f commands.StatusUoWFactory = FuncStatusUoWFactory(func() commands.StatusUoW {
		return c.uowFactory.Create()
	})

	opts := []commands.UpdateOption{commands.WithMetrics(c.metrics)}
	if c.publisher != nil {
		opts = append(opts, commands.WithPublisher(c.publisher))
	}
	return commands.NewUpdateOrderStatusCommandHandler(f, c.validator, c.gate, c.logger, opts...)
}

func (c *CompositionRoot) CreateBatchUpdateOrderStatusCommandHandler() (*commands.BatchUpdateOrderStatusCommandHandler, error) {
	updater, err := c.CreateUpdateOrderStatusCommandHandler()
	if err != nil {
		return nil, err
	}
	return commands.NewBatchUpdateOrderStatusCommandHandler(updater, commands.BatchSettings{
		MaxBatchSize: c.policy.MaxBatchSize,
		Concurrency:  c.policy.BatchConcurrency,
		ItemTimeout:  c.policy.ItemTimeout,
	}, c.logger, c.metrics)
}

func (c *CompositionRoot) CreateGetStatusHistoryQueryHandler() queries.GetStatusHistoryQueryHandler {
	return queries.NewGetStatusHistoryQueryHandler(auditrepo.NewGormAuditTrail(c.gormDB))
}

func (c *CompositionRoot) CreateCheckPermissionQueryHandler() queries.CheckPermissionQueryHandler {
	return queries.NewCheckPermissionQueryHandler(orderrepo.NewGormOrderRepository(c.gormDB), c.gate)
}

func (c *CompositionRoot) CreateGetCompletableOrdersQueryHandler() queries.GetCompletableOrdersQueryHandler {
	return queries.NewGetCompletableOrdersQueryHandler(c.gormDB)
}

// CreateRouter builds the echo instance serving the API, /health, /metrics
// and /swagger/*.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	update, err := c.CreateUpdateOrderStatusCommandHandler()
	if err != nil {
		return nil, err
	}
	batch, err := c.CreateBatchUpdateOrderStatusCommandHandler()
	if err != nil {
		return nil, err
	}

	server := httpadapter.NewServer(
		update,
		batch,
		c.CreateGetStatusHistoryQueryHandler(),
		c.CreateCheckPermissionQueryHandler(),
		c.logger,
	)
	return httpadapter.NewRouter(server, c.registry)
}

// CreateJobManager registers the system operator and builds the scheduled
// jobs. The system operator only needs the staff role to complete orders.
func (c *CompositionRoot) CreateJobManager(ctx context.Context) (*jobs.JobManager, error) {
	system, err := operator.NewOperator(c.config.SystemOperatorID)
	if err != nil {
		return nil, fmt.Errorf("SYSTEM_OPERATOR_ID: %w", err)
	}
	if err = c.operators.Save(ctx, system, operator.Staff); err != nil {
		return nil, fmt.Errorf("register system operator: %w", err)
	}

	batch, err := c.CreateBatchUpdateOrderStatusCommandHandler()
	if err != nil {
		return nil, err
	}

	autoComplete, err := jobs.NewAutoCompleteOrdersJob(
		c.CreateGetCompletableOrdersQueryHandler(),
		batch,
		system,
		c.policy.MaxBatchSize,
		c.config.AutoCompleteSchedule,
		c.logger,
	)
	if err != nil {
		return nil, err
	}

	return jobs.NewJobManager(autoComplete), nil
}

// Close releases the Kafka writer, flushing buffered messages.
func (c *CompositionRoot) Close() error {
	if c.kafkaWriter == nil {
		return nil
	}
	return c.kafkaWriter.Close()
}

type FuncStatusUoWFactory func() commands.StatusUoW

func (f FuncStatusUoWFactory) Create() commands.StatusUoW {
	return f()
}
