package ports

import (
	"time"

	"orderlifecycle/internal/core/domain/model/order"
)

// OutcomeSuccess labels successful transitions and batch items. Failures are
// labelled with their order.Code.
const OutcomeSuccess = "success"

// StatusMetrics records status change outcomes.
type StatusMetrics interface {
	TransitionObserved(from, to order.Status, outcome string)
	BatchItemObserved(outcome string)
	BatchObserved(size int, elapsed time.Duration)
}
