package alerting

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/veritrack/veritrack-go/internal/conf"
	"github.com/veritrack/veritrack-go/internal/datastore/entities"
	"github.com/veritrack/veritrack-go/internal/datastore/repository"
	"github.com/veritrack/veritrack-go/internal/errors"
	"github.com/veritrack/veritrack-go/internal/logger"
	"github.com/veritrack/veritrack-go/internal/observability/metrics"
)

const (
	// saveExecutionTimeout is the context deadline for persisting the
	// execution record after the cycle deadline has passed.
	saveExecutionTimeout = 3 * time.Second
	// defaultLookback bounds the first cycle's window when the configuration
	// does not say otherwise.
	defaultLookback = 1 * time.Hour
)

// Engine drives one evaluation cycle: compute window, evaluate, deduplicate
// through the ledger, batch-notify, record execution. A cycle is idempotent:
// concurrent or repeated runs over the same window cannot double-notify
// because the ledger insert is the sole serialization point.
type Engine struct {
	alerts    repository.AlertRepository
	evaluator *Evaluator
	notifier  *Notifier
	log       logger.Logger
	metrics   *metrics.AlertingMetrics

	lookback     time.Duration
	cycleTimeout time.Duration
}

// NewEngine creates the orchestrator. Metrics may be nil.
func NewEngine(
	alerts repository.AlertRepository,
	evaluator *Evaluator,
	notifier *Notifier,
	settings *conf.AlertingSettings,
	log logger.Logger,
	m *metrics.AlertingMetrics,
) *Engine {
	lookback := settings.DefaultLookback.Std()
	if lookback <= 0 {
		lookback = defaultLookback
	}
	return &Engine{
		alerts:       alerts,
		evaluator:    evaluator,
		notifier:     notifier,
		log:          log,
		metrics:      m,
		lookback:     lookback,
		cycleTimeout: settings.CycleTimeout.Std(),
	}
}

// executionMetadata is serialized into the execution record.
type executionMetadata struct {
	CycleID     string    `json:"cycle_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Pending     int       `json:"pending"`
	EmailsSent  int       `json:"emails_sent"`
	DurationMS  int64     `json:"duration_ms"`
}

// ProcessAlerts runs one full evaluation cycle and returns its execution
// record. Evaluator failures and send failures degrade the counts but the
// cycle still completes; only a failed execution-record write is returned as
// an error, because then the audit trail did not advance.
func (e *Engine) ProcessAlerts(ctx context.Context) (*entities.AlertExecution, error) {
	cycleID := uuid.NewString()
	log := e.log.With(logger.String("cycle_id", cycleID))
	started := time.Now()
	cycleStart := started.UTC()

	if e.cycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cycleTimeout)
		defer cancel()
	}

	windowStart := e.windowStart(ctx, cycleStart, log)
	log.Info("alert cycle started", logger.Time("window_start", windowStart))

	rules, err := e.alerts.GetEnabledRules(ctx)
	if err != nil {
		// Nothing can be evaluated, but the cycle is still recorded so the
		// operator sees the gap in the audit trail.
		log.Error("failed to load enabled rules", logger.Error(err))
	}

	result := e.evaluator.Evaluate(ctx, rules, &windowStart)

	triggeredAt := time.Now().UTC()
	var newly []entities.AlertTrigger
	for i := range result.Candidates {
		candidate := result.Candidates[i]
		trigger := &entities.AlertTrigger{
			RuleID:        candidate.Rule.ID,
			NarrativeID:   candidate.NarrativeID,
			DedupKey:      candidate.DedupKey,
			ObservedValue: candidate.ObservedValue,
			TriggeredAt:   triggeredAt,
		}
		recorded, err := e.alerts.RecordTrigger(ctx, trigger)
		if err != nil {
			log.Error("failed to record trigger",
				logger.Uint64("rule_id", uint64(candidate.Rule.ID)),
				logger.Uint64("narrative_id", uint64(candidate.NarrativeID)),
				logger.Error(err))
			continue
		}
		if recorded == nil {
			e.recordDedup(candidate.Rule.Kind)
			continue
		}
		recorded.Rule = candidate.Rule
		newly = append(newly, *recorded)
		e.recordTriggered(candidate.Rule.Kind)
	}

	// Unsent ledger rows from earlier cycles ride along in this cycle's
	// batching; the cutoff keeps this cycle's own rows out of the query.
	pending, err := e.alerts.ListPendingNotifications(ctx, triggeredAt)
	if err != nil {
		log.Error("failed to load pending notifications", logger.Error(err))
		pending = nil
	}
	if e.metrics != nil {
		e.metrics.SetPendingTriggers(len(pending))
	}

	batch := make([]entities.AlertTrigger, 0, len(pending)+len(newly))
	batch = append(batch, pending...)
	batch = append(batch, newly...)
	notified, emails := e.notifier.Notify(ctx, batch)

	metadata, _ := json.Marshal(executionMetadata{
		CycleID:     cycleID,
		WindowStart: windowStart,
		WindowEnd:   cycleStart,
		Pending:     len(pending),
		EmailsSent:  emails,
		DurationMS:  time.Since(started).Milliseconds(),
	})
	execution := &entities.AlertExecution{
		ExecutedAt: cycleStart,
		Checked:    result.Checked,
		Triggered:  len(newly),
		Notified:   notified,
		Metadata:   string(metadata),
	}

	// The record is written even when the cycle deadline has passed, on a
	// short detached context, so partial counts still reach the audit trail.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveExecutionTimeout)
	defer cancel()
	if err := e.alerts.RecordExecution(recordCtx, execution); err != nil {
		e.recordCycle("error", time.Since(started))
		return nil, errors.New(err).
			Component("alerting").
			Category(errors.CategoryDatabase).
			Priority(errors.PriorityCritical).
			Context("cycle_id", cycleID).
			Build()
	}

	e.recordCycle("ok", time.Since(started))
	log.Info("alert cycle completed",
		logger.Int("checked", execution.Checked),
		logger.Int("triggered", execution.Triggered),
		logger.Int("notified", execution.Notified),
		logger.Duration("duration", time.Since(started)))
	return execution, nil
}

// windowStart derives the evaluation window's lower bound: the last recorded
// execution, or the configured lookback when no cycle has run yet. A failed
// lookup degrades to the lookback so the window is never unbounded.
func (e *Engine) windowStart(ctx context.Context, cycleStart time.Time, log logger.Logger) time.Time {
	last, err := e.alerts.LastExecution(ctx)
	if err != nil {
		log.Warn("failed to read last execution, using default lookback", logger.Error(err))
		return cycleStart.Add(-e.lookback)
	}
	if last == nil {
		return cycleStart.Add(-e.lookback)
	}
	return last.ExecutedAt
}

func (e *Engine) recordCycle(status string, elapsed time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordCycle(status, elapsed.Seconds())
	}
}

func (e *Engine) recordTriggered(kind string) {
	if e.metrics != nil {
		e.metrics.RecordTriggerRecorded(kind)
	}
}

func (e *Engine) recordDedup(kind string) {
	if e.metrics != nil {
		e.metrics.RecordTriggerDeduped(kind)
	}
}
