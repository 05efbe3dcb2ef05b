package jobs

import (
	"context"
	"log/slog"
	"sync"

	"orderlifecycle/internal/core/application/usecases/commands"
	"orderlifecycle/internal/core/application/usecases/queries"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// DefaultAutoCompleteSchedule runs the job at the start of every minute.
const DefaultAutoCompleteSchedule = "0 * * * * *"

type CompletableOrdersFinder interface {
	Handle(ctx context.Context, query queries.GetCompletableOrdersQuery) ([]queries.GetCompletableOrdersQueryResponse, error)
}

type BatchStatusUpdater interface {
	Handle(ctx context.Context, command commands.BatchUpdateOrderStatusCommand) (commands.BatchUpdateResult, error)
}

// AutoCompleteOrdersJob moves delivered and paid orders to Completed on
// behalf of the system operator. Each run handles at most batchSize orders;
// the rest are picked up by later runs.
type AutoCompleteOrdersJob struct {
	finder    CompletableOrdersFinder
	updater   BatchStatusUpdater
	system    operator.Operator
	batchSize int
	schedule  string

	cron   *cron.Cron
	logger *slog.Logger
	// running skips a tick while the previous run is still in progress.
	running sync.Mutex
}

func NewAutoCompleteOrdersJob(
	finder CompletableOrdersFinder,
	updater BatchStatusUpdater,
	system operator.Operator,
	batchSize int,
	schedule string,
	logger *slog.Logger,
) (*AutoCompleteOrdersJob, error) {
	if finder == nil {
		return nil, errs.NewValueIsRequiredError("finder")
	}
	if updater == nil {
		return nil, errs.NewValueIsRequiredError("updater")
	}
	if err := system.Validate(); err != nil {
		return nil, err
	}
	if batchSize < 1 {
		return nil, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	if schedule == "" {
		schedule = DefaultAutoCompleteSchedule
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &AutoCompleteOrdersJob{
		finder:    finder,
		updater:   updater,
		system:    system,
		batchSize: batchSize,
		schedule:  schedule,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "auto_complete_orders_job"),
	}, nil
}

func (j *AutoCompleteOrdersJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Auto complete job started", "schedule", j.schedule)
	return nil
}

// Stop waits for a run in progress to finish.
func (j *AutoCompleteOrdersJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Auto complete job stopped")
}

// Run performs one pass. It returns without work when a pass is already in
// progress.
func (j *AutoCompleteOrdersJob) Run(ctx context.Context) {
	if !j.running.TryLock() {
		j.logger.DebugContext(ctx, "Previous run still in progress, skipping")
		return
	}
	defer j.running.Unlock()

	query, err := queries.NewGetCompletableOrdersQuery(j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Auto complete job failed", "error", err)
		return
	}

	candidates, err := j.finder.Handle(ctx, query)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to find completable orders", "error", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	ids := make([]kernel.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}

	cmd, err := commands.NewBatchUpdateOrderStatusCommand(ids, order.Completed, j.system, "completed automatically")
	if err != nil {
		j.logger.ErrorContext(ctx, "Auto complete job failed", "error", err)
		return
	}

	result, err := j.updater.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Auto complete batch failed", "error", err)
		return
	}

	// Failures here are usually orders changed by an operator since the
	// candidate query ran.
	j.logger.InfoContext(ctx, "Orders completed automatically",
		"total", result.TotalCount,
		"succeeded", result.SuccessCount,
		"failed", result.FailureCount,
	)
}
