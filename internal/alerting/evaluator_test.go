package alerting

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
	"github.com/veritrack/veritrack-go/internal/datastore/repository"
	"github.com/veritrack/veritrack-go/internal/logger"
)

// mockCorpus implements repository.CorpusRepository with function fields.
type mockCorpus struct {
	statsFn   func(ctx context.Context, narrativeID *uint) ([]repository.NarrativeStats, error)
	topicFn   func(ctx context.Context, topicID uint, since *time.Time) ([]uint, error)
	keywordFn func(ctx context.Context, keyword string, since *time.Time) ([]uint, error)
	getFn     func(ctx context.Context, id uint) (*entities.Narrative, error)
}

func (m *mockCorpus) Stats(ctx context.Context, narrativeID *uint) ([]repository.NarrativeStats, error) {
	if m.statsFn == nil {
		return nil, nil
	}
	return m.statsFn(ctx, narrativeID)
}

func (m *mockCorpus) NarrativesWithTopicSince(ctx context.Context, topicID uint, since *time.Time) ([]uint, error) {
	if m.topicFn == nil {
		return nil, nil
	}
	return m.topicFn(ctx, topicID, since)
}

func (m *mockCorpus) NarrativesMatchingKeywordSince(ctx context.Context, keyword string, since *time.Time) ([]uint, error) {
	if m.keywordFn == nil {
		return nil, nil
	}
	return m.keywordFn(ctx, keyword, since)
}

func (m *mockCorpus) GetNarrative(ctx context.Context, id uint) (*entities.Narrative, error) {
	if m.getFn == nil {
		return nil, repository.ErrNarrativeNotFound
	}
	return m.getFn(ctx, id)
}

func testLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError)
}

func int64Ptr(v int64) *int64 { return &v }
func uintPtr(v uint) *uint    { return &v }

func viewsRule(id uint, threshold int64) entities.AlertRule {
	return entities.AlertRule{
		ID: id, UserID: 1, OrganisationID: 1, Name: "views",
		Kind: entities.KindNarrativeViews, Scope: entities.ScopeGeneral,
		Threshold: int64Ptr(threshold), Enabled: true,
	}
}

func TestEvaluator_Threshold_General(t *testing.T) {
	corpus := &mockCorpus{
		statsFn: func(context.Context, *uint) ([]repository.NarrativeStats, error) {
			return []repository.NarrativeStats{
				{NarrativeID: 1, TotalViews: 1500},
				{NarrativeID: 2, TotalViews: 500},
				{NarrativeID: 3, TotalViews: 1000},
			}, nil
		},
	}
	evaluator := NewEvaluator(corpus, testLogger(), nil)

	result := evaluator.Evaluate(t.Context(), []entities.AlertRule{viewsRule(1, 1000)}, nil)

	assert.Equal(t, 3, result.Checked)
	require.Len(t, result.Candidates, 2)
	for _, candidate := range result.Candidates {
		assert.Equal(t, "1000", candidate.DedupKey, "dedup key is the configured threshold")
		require.NotNil(t, candidate.ObservedValue)
		assert.GreaterOrEqual(t, *candidate.ObservedValue, int64(1000))
	}
}

func TestEvaluator_Threshold_ScopeIsolation(t *testing.T) {
	corpus := &mockCorpus{
		statsFn: func(context.Context, *uint) ([]repository.NarrativeStats, error) {
			return []repository.NarrativeStats{
				{NarrativeID: 1, TotalViews: 2000},
				{NarrativeID: 2, TotalViews: 2000},
			}, nil
		},
	}
	evaluator := NewEvaluator(corpus, testLogger(), nil)

	rule := viewsRule(1, 1000)
	rule.Scope = entities.ScopeSpecific
	rule.NarrativeID = uintPtr(1)

	result := evaluator.Evaluate(t.Context(), []entities.AlertRule{rule}, nil)

	assert.Equal(t, 1, result.Checked)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, uint(1), result.Candidates[0].NarrativeID,
		"a specific rule never fires for another narrative")
}

func TestEvaluator_Threshold_MetricSelection(t *testing.T) {
	corpus := &mockCorpus{
		statsFn: func(context.Context, *uint) ([]repository.NarrativeStats, error) {
			return []repository.NarrativeStats{
				{NarrativeID: 1, TotalViews: 0, ClaimsCount: 10, VideosCount: 2},
			}, nil
		},
	}
	evaluator := NewEvaluator(corpus, testLogger(), nil)

	claimsRule := entities.AlertRule{
		ID: 1, UserID: 1, OrganisationID: 1, Name: "claims",
		Kind: entities.KindNarrativeClaimsCount, Scope: entities.ScopeGeneral,
		Threshold: int64Ptr(5), Enabled: true,
	}
	videosRule := entities.AlertRule{
		ID: 2, UserID: 1, OrganisationID: 1, Name: "videos",
		Kind: entities.KindNarrativeVideosCount, Scope: entities.ScopeGeneral,
		Threshold: int64Ptr(5), Enabled: true,
	}

	result := evaluator.Evaluate(t.Context(), []entities.AlertRule{claimsRule, videosRule}, nil)

	require.Len(t, result.Candidates, 1)
	assert.Equal(t, uint(1), result.Candidates[0].Rule.ID, "only the claims rule crosses its threshold")
	assert.Equal(t, int64(10), *result.Candidates[0].ObservedValue)
}

func TestEvaluator_Appearance(t *testing.T) {
	var gotTopic uint
	var gotSince *time.Time
	corpus := &mockCorpus{
		topicFn: func(_ context.Context, topicID uint, since *time.Time) ([]uint, error) {
			gotTopic = topicID
			gotSince = since
			return []uint{4, 5}, nil
		},
	}
	evaluator := NewEvaluator(corpus, testLogger(), nil)

	rule := entities.AlertRule{
		ID: 1, UserID: 1, OrganisationID: 1, Name: "topic watch",
		Kind: entities.KindNarrativeWithTopic, Scope: entities.ScopeGeneral,
		TopicID: uintPtr(9), Enabled: true,
	}
	windowStart := time.Now().Add(-time.Hour)

	result := evaluator.Evaluate(t.Context(), []entities.AlertRule{rule}, &windowStart)

	assert.Equal(t, uint(9), gotTopic)
	require.NotNil(t, gotSince)
	assert.Equal(t, windowStart, *gotSince, "window start bounds the appearance query")
	assert.Equal(t, 2, result.Checked)
	require.Len(t, result.Candidates, 2)
	for _, candidate := range result.Candidates {
		assert.Equal(t, entities.DedupKeyTopic, candidate.DedupKey)
		assert.Nil(t, candidate.ObservedValue)
	}
}

func TestEvaluator_Keyword(t *testing.T) {
	corpus := &mockCorpus{
		keywordFn: func(_ context.Context, keyword string, _ *time.Time) ([]uint, error) {
			assert.Equal(t, "hoax", keyword)
			return []uint{7}, nil
		},
	}
	evaluator := NewEvaluator(corpus, testLogger(), nil)

	rule := entities.AlertRule{
		ID: 1, UserID: 1, OrganisationID: 1, Name: "keyword watch",
		Kind: entities.KindKeyword, Scope: entities.ScopeGeneral,
		Keyword: "hoax", Enabled: true,
	}

	result := evaluator.Evaluate(t.Context(), []entities.AlertRule{rule}, nil)

	require.Len(t, result.Candidates, 1)
	assert.Equal(t, uint(7), result.Candidates[0].NarrativeID)
	assert.Equal(t, entities.DedupKeyKeyword, result.Candidates[0].DedupKey)
}

func TestEvaluator_DisabledRulesSkipped(t *testing.T) {
	corpus := &mockCorpus{
		statsFn: func(context.Context, *uint) ([]repository.NarrativeStats, error) {
			return []repository.NarrativeStats{{NarrativeID: 1, TotalViews: 9999}}, nil
		},
	}
	evaluator := NewEvaluator(corpus, testLogger(), nil)

	rule := viewsRule(1, 1)
	rule.Enabled = false

	result := evaluator.Evaluate(t.Context(), []entities.AlertRule{rule}, nil)
	assert.Zero(t, result.Checked)
	assert.Empty(t, result.Candidates)
}

func TestEvaluator_FailureDegradesNotAborts(t *testing.T) {
	corpus := &mockCorpus{
		statsFn: func(context.Context, *uint) ([]repository.NarrativeStats, error) {
			return nil, errors.New("db down")
		},
		keywordFn: func(context.Context, string, *time.Time) ([]uint, error) {
			return []uint{3}, nil
		},
	}
	evaluator := NewEvaluator(corpus, testLogger(), nil)

	keywordRule := entities.AlertRule{
		ID: 2, UserID: 1, OrganisationID: 1, Name: "keyword watch",
		Kind: entities.KindKeyword, Scope: entities.ScopeGeneral,
		Keyword: "hoax", Enabled: true,
	}

	result := evaluator.Evaluate(t.Context(), []entities.AlertRule{viewsRule(1, 100), keywordRule}, nil)

	require.Len(t, result.Candidates, 1, "keyword evaluator still runs when the metric one fails")
	assert.Equal(t, entities.KindKeyword, result.Candidates[0].Rule.Kind)
	assert.Equal(t, 1, result.Checked)
}
