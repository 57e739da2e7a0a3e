package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
	"github.com/veritrack/veritrack-go/internal/errors"
)

// createViewsRule persists a general-scope views rule and returns it.
func createViewsRule(t *testing.T, repo AlertRepository, threshold int64) *entities.AlertRule {
	t.Helper()
	rule := &entities.AlertRule{
		UserID:         1,
		OrganisationID: 1,
		Name:           "views threshold",
		Kind:           entities.KindNarrativeViews,
		Scope:          entities.ScopeGeneral,
		Threshold:      int64Ptr(threshold),
		Enabled:        true,
	}
	require.NoError(t, repo.CreateRule(t.Context(), rule))
	return rule
}

func TestAlertRepository_CreateAndGetRule(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	ctx := t.Context()

	rule := createViewsRule(t, repo, 1000)
	require.NotZero(t, rule.ID)

	got, err := repo.GetRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.Name, got.Name)
	assert.Equal(t, entities.KindNarrativeViews, got.Kind)
	require.NotNil(t, got.Threshold)
	assert.Equal(t, int64(1000), *got.Threshold)
}

func TestAlertRepository_GetRule_NotFound(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))

	_, err := repo.GetRule(t.Context(), 12345)
	assert.ErrorIs(t, err, ErrAlertRuleNotFound)
}

func TestAlertRepository_CreateRule_RejectsInvalid(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	ctx := t.Context()

	tests := []struct {
		name string
		rule entities.AlertRule
	}{
		{
			name: "metric rule without threshold",
			rule: entities.AlertRule{
				UserID: 1, OrganisationID: 1, Name: "r",
				Kind: entities.KindNarrativeViews, Scope: entities.ScopeGeneral,
			},
		},
		{
			name: "topic rule with specific scope",
			rule: entities.AlertRule{
				UserID: 1, OrganisationID: 1, Name: "r",
				Kind: entities.KindNarrativeWithTopic, Scope: entities.ScopeSpecific,
				NarrativeID: uintPtr(1), TopicID: uintPtr(2),
			},
		},
		{
			name: "keyword rule without keyword",
			rule: entities.AlertRule{
				UserID: 1, OrganisationID: 1, Name: "r",
				Kind: entities.KindKeyword, Scope: entities.ScopeGeneral,
			},
		},
		{
			name: "general scope with bound narrative",
			rule: entities.AlertRule{
				UserID: 1, OrganisationID: 1, Name: "r",
				Kind: entities.KindNarrativeViews, Scope: entities.ScopeGeneral,
				Threshold: int64Ptr(10), NarrativeID: uintPtr(3),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := tt.rule
			err := repo.CreateRule(ctx, &rule)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
		})
	}
}

func TestAlertRepository_UpdateRule_MutableFieldsOnly(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	ctx := t.Context()
	rule := createViewsRule(t, repo, 1000)

	name := "renamed"
	enabled := false
	updated, err := repo.UpdateRule(ctx, rule.ID, AlertRuleUpdate{
		Name:      &name,
		Enabled:   &enabled,
		Threshold: int64Ptr(2000),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.False(t, updated.Enabled)
	require.NotNil(t, updated.Threshold)
	assert.Equal(t, int64(2000), *updated.Threshold)
	// Kind and scope stay as created.
	assert.Equal(t, entities.KindNarrativeViews, updated.Kind)
	assert.Equal(t, entities.ScopeGeneral, updated.Scope)
}

func TestAlertRepository_UpdateRule_RejectsInvalidMerge(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	rule := createViewsRule(t, repo, 1000)

	keyword := "hoax"
	_, err := repo.UpdateRule(t.Context(), rule.ID, AlertRuleUpdate{Keyword: &keyword})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	// The stored rule is untouched.
	got, err := repo.GetRule(t.Context(), rule.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Keyword)
}

func TestAlertRepository_GetEnabledRules(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	ctx := t.Context()

	createViewsRule(t, repo, 100)
	createViewsRule(t, repo, 200)
	disabled := &entities.AlertRule{
		UserID: 1, OrganisationID: 1, Name: "off",
		Kind: entities.KindNarrativeViews, Scope: entities.ScopeGeneral,
		Threshold: int64Ptr(300), Enabled: false,
	}
	require.NoError(t, repo.CreateRule(ctx, disabled))

	rules, err := repo.GetEnabledRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
	for _, rule := range rules {
		assert.True(t, rule.Enabled)
	}
}

func TestAlertRepository_DeleteRule(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	ctx := t.Context()
	rule := createViewsRule(t, repo, 1000)

	require.NoError(t, repo.DeleteRule(ctx, rule.ID))
	_, err := repo.GetRule(ctx, rule.ID)
	assert.ErrorIs(t, err, ErrAlertRuleNotFound)

	assert.ErrorIs(t, repo.DeleteRule(ctx, rule.ID), ErrAlertRuleNotFound)
}

func TestAlertRepository_RecordTrigger_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)
	ctx := t.Context()
	rule := createViewsRule(t, repo, 1000)

	first, err := repo.RecordTrigger(ctx, &entities.AlertTrigger{
		RuleID:        rule.ID,
		NarrativeID:   7,
		DedupKey:      "1000",
		ObservedValue: int64Ptr(1500),
	})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.NotZero(t, first.ID)
	assert.False(t, first.TriggeredAt.IsZero())

	second, err := repo.RecordTrigger(ctx, &entities.AlertTrigger{
		RuleID:      rule.ID,
		NarrativeID: 7,
		DedupKey:    "1000",
	})
	require.NoError(t, err)
	assert.Nil(t, second, "duplicate key must report already recorded")

	var count int64
	require.NoError(t, db.Model(&entities.AlertTrigger{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAlertRepository_RecordTrigger_DistinctKeysInsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)
	ctx := t.Context()
	rule := createViewsRule(t, repo, 1000)

	for _, key := range []string{"1000", "2000"} {
		recorded, err := repo.RecordTrigger(ctx, &entities.AlertTrigger{
			RuleID:      rule.ID,
			NarrativeID: 7,
			DedupKey:    key,
		})
		require.NoError(t, err)
		require.NotNil(t, recorded, "dedup key %s should insert", key)
	}

	var count int64
	require.NoError(t, db.Model(&entities.AlertTrigger{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestAlertRepository_PendingNotifications(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	ctx := t.Context()
	rule := createViewsRule(t, repo, 1000)

	old := time.Now().UTC().Add(-10 * time.Minute)
	recent := time.Now().UTC().Add(-1 * time.Minute)
	cutoff := time.Now().UTC().Add(-5 * time.Minute)

	oldTrigger, err := repo.RecordTrigger(ctx, &entities.AlertTrigger{
		RuleID: rule.ID, NarrativeID: 1, DedupKey: "1000", TriggeredAt: old,
	})
	require.NoError(t, err)
	sentTrigger, err := repo.RecordTrigger(ctx, &entities.AlertTrigger{
		RuleID: rule.ID, NarrativeID: 2, DedupKey: "1000", TriggeredAt: old,
	})
	require.NoError(t, err)
	_, err = repo.RecordTrigger(ctx, &entities.AlertTrigger{
		RuleID: rule.ID, NarrativeID: 3, DedupKey: "1000", TriggeredAt: recent,
	})
	require.NoError(t, err)

	require.NoError(t, repo.MarkNotificationSent(ctx, sentTrigger.ID))

	pending, err := repo.ListPendingNotifications(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, oldTrigger.ID, pending[0].ID)
	assert.Equal(t, rule.ID, pending[0].Rule.ID, "pending triggers carry their rule")
}

func TestAlertRepository_Executions(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	ctx := t.Context()

	last, err := repo.LastExecution(ctx)
	require.NoError(t, err)
	assert.Nil(t, last, "no executions recorded yet")

	older := time.Now().UTC().Add(-2 * time.Hour)
	newer := time.Now().UTC().Add(-1 * time.Hour)
	require.NoError(t, repo.RecordExecution(ctx, &entities.AlertExecution{
		ExecutedAt: older, Checked: 5, Triggered: 2, Notified: 2,
	}))
	require.NoError(t, repo.RecordExecution(ctx, &entities.AlertExecution{
		ExecutedAt: newer, Checked: 3, Triggered: 0, Notified: 0,
	}))

	last, err = repo.LastExecution(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, newer.Unix(), last.ExecutedAt.Unix())

	executions, total, err := repo.ListExecutions(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, executions, 1)
	assert.Equal(t, newer.Unix(), executions[0].ExecutedAt.Unix(), "newest first")
}
