package repository

import (
	"context"
	"time"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
)

// AlertRepository handles alert rule reads, the trigger ledger, and the
// execution audit trail.
type AlertRepository interface {
	// Rule CRUD. Kind and scope are immutable: UpdateRule only accepts the
	// mutable field set.
	ListRules(ctx context.Context, filter AlertRuleFilter) ([]entities.AlertRule, error)
	GetRule(ctx context.Context, id uint) (*entities.AlertRule, error)
	CreateRule(ctx context.Context, rule *entities.AlertRule) error
	UpdateRule(ctx context.Context, id uint, update AlertRuleUpdate) (*entities.AlertRule, error)
	DeleteRule(ctx context.Context, id uint) error
	GetEnabledRules(ctx context.Context) ([]entities.AlertRule, error)

	// Trigger ledger. RecordTrigger is an atomic insert-if-absent on
	// (rule_id, narrative_id, dedup_key); it returns nil when the key was
	// already recorded.
	RecordTrigger(ctx context.Context, trigger *entities.AlertTrigger) (*entities.AlertTrigger, error)
	MarkNotificationSent(ctx context.Context, triggerID uint) error
	ListPendingNotifications(ctx context.Context, before time.Time) ([]entities.AlertTrigger, error)

	// Execution audit trail, append-only, ordered by executed_at.
	RecordExecution(ctx context.Context, execution *entities.AlertExecution) error
	LastExecution(ctx context.Context) (*entities.AlertExecution, error)
	ListExecutions(ctx context.Context, limit, offset int) ([]entities.AlertExecution, int64, error)
}

// AlertRuleFilter controls rule listing queries.
type AlertRuleFilter struct {
	UserID         uint
	OrganisationID uint
	Kind           string
	Enabled        *bool
}

// AlertRuleUpdate carries the mutable fields of a rule. Nil pointers leave
// the stored value unchanged.
type AlertRuleUpdate struct {
	Name      *string
	Enabled   *bool
	Threshold *int64
	Keyword   *string
}
