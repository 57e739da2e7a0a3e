package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
	"github.com/veritrack/veritrack-go/internal/errors"
)

// alertRepository implements AlertRepository.
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

// ListRules returns alert rules matching the given filter.
func (r *alertRepository) ListRules(ctx context.Context, filter AlertRuleFilter) ([]entities.AlertRule, error) {
	var rules []entities.AlertRule
	query := r.db.WithContext(ctx)

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrganisationID > 0 {
		query = query.Where("organisation_id = ?", filter.OrganisationID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}

	if err := query.Order("id ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list alert rules: %w", err)
	}
	return rules, nil
}

// GetRule returns a single alert rule by ID.
// Returns ErrAlertRuleNotFound if the rule does not exist.
func (r *alertRepository) GetRule(ctx context.Context, id uint) (*entities.AlertRule, error) {
	var rule entities.AlertRule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertRuleNotFound
		}
		return nil, fmt.Errorf("failed to get alert rule %d: %w", id, err)
	}
	return &rule, nil
}

// CreateRule validates and creates a new alert rule.
func (r *alertRepository) CreateRule(ctx context.Context, rule *entities.AlertRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create alert rule: %w", err)
	}
	return nil
}

// UpdateRule applies the mutable field set to an existing rule and returns
// the updated row. Kind, scope and bindings stay as created.
func (r *alertRepository) UpdateRule(ctx context.Context, id uint, update AlertRuleUpdate) (*entities.AlertRule, error) {
	rule, err := r.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	values := map[string]any{}
	if update.Name != nil {
		rule.Name = *update.Name
		values["name"] = *update.Name
	}
	if update.Enabled != nil {
		rule.Enabled = *update.Enabled
		values["enabled"] = *update.Enabled
	}
	if update.Threshold != nil {
		rule.Threshold = update.Threshold
		values["threshold"] = *update.Threshold
	}
	if update.Keyword != nil {
		rule.Keyword = *update.Keyword
		values["keyword"] = *update.Keyword
	}
	if len(values) == 0 {
		return rule, nil
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Model(&entities.AlertRule{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update alert rule %d: %w", id, result.Error)
	}
	return rule, nil
}

// DeleteRule deletes an alert rule; its ledger rows cascade.
func (r *alertRepository) DeleteRule(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.AlertRule{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete alert rule %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlertRuleNotFound
	}
	return nil
}

// GetEnabledRules returns all enabled alert rules.
func (r *alertRepository) GetEnabledRules(ctx context.Context) ([]entities.AlertRule, error) {
	enabled := true
	return r.ListRules(ctx, AlertRuleFilter{Enabled: &enabled})
}

// RecordTrigger inserts a ledger row keyed by (rule_id, narrative_id,
// dedup_key). The insert-if-absent is a single conditional write, so
// concurrent cycles observing the same candidate cannot both record it.
// Returns nil (no error) when the key already exists.
func (r *alertRepository) RecordTrigger(ctx context.Context, trigger *entities.AlertTrigger) (*entities.AlertTrigger, error) {
	if trigger.TriggeredAt.IsZero() {
		trigger.TriggeredAt = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "rule_id"},
				{Name: "narrative_id"},
				{Name: "dedup_key"},
			},
			DoNothing: true,
		}).
		Create(trigger)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to record alert trigger: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil // already recorded for this key
	}
	return trigger, nil
}

// MarkNotificationSent flips the sent flag after a successful delivery.
func (r *alertRepository) MarkNotificationSent(ctx context.Context, triggerID uint) error {
	result := r.db.WithContext(ctx).Model(&entities.AlertTrigger{}).
		Where("id = ?", triggerID).
		Update("notification_sent", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark trigger %d notified: %w", triggerID, result.Error)
	}
	return nil
}

// ListPendingNotifications returns unsent ledger rows triggered before the
// given time, with their rules preloaded. The cutoff keeps rows recorded by
// the current cycle out of the leftover set.
func (r *alertRepository) ListPendingNotifications(ctx context.Context, before time.Time) ([]entities.AlertTrigger, error) {
	var triggers []entities.AlertTrigger
	err := r.db.WithContext(ctx).Preload("Rule").
		Where("notification_sent = ? AND triggered_at < ?", false, before).
		Order("triggered_at ASC").
		Find(&triggers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	return triggers, nil
}

// RecordExecution appends one audit row for a completed cycle.
func (r *alertRepository) RecordExecution(ctx context.Context, execution *entities.AlertExecution) error {
	if execution.ExecutedAt.IsZero() {
		execution.ExecutedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(execution).Error; err != nil {
		return fmt.Errorf("failed to record alert execution: %w", err)
	}
	return nil
}

// LastExecution returns the most recent execution record, or nil if no
// cycle has run yet.
func (r *alertRepository) LastExecution(ctx context.Context) (*entities.AlertExecution, error) {
	var execution entities.AlertExecution
	err := r.db.WithContext(ctx).Order("executed_at DESC").First(&execution).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last execution: %w", err)
	}
	return &execution, nil
}

// ListExecutions returns execution records newest-first with pagination.
func (r *alertRepository) ListExecutions(ctx context.Context, limit, offset int) ([]entities.AlertExecution, int64, error) {
	var items []entities.AlertExecution
	var total int64

	if err := r.db.WithContext(ctx).Model(&entities.AlertExecution{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count executions: %w", err)
	}

	query := r.db.WithContext(ctx).Order("executed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list executions: %w", err)
	}
	return items, total, nil
}
