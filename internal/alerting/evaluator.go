// Package alerting implements the alert evaluation engine: condition
// evaluators over the narrative corpus, trigger deduplication through the
// ledger, per-recipient notification batching and the execution audit trail.
package alerting

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
	"github.com/veritrack/veritrack-go/internal/datastore/repository"
	"github.com/veritrack/veritrack-go/internal/logger"
	"github.com/veritrack/veritrack-go/internal/observability/metrics"
)

// CandidateTrigger is a (rule, narrative, value) tuple an evaluator believes
// currently satisfies its rule, prior to deduplication.
type CandidateTrigger struct {
	Rule          entities.AlertRule
	NarrativeID   uint
	ObservedValue *int64
	DedupKey      string
}

// EvaluationResult aggregates one cycle's evaluator output. Checked counts
// candidate evaluations: every (rule, narrative) pair examined, match or not.
type EvaluationResult struct {
	Candidates []CandidateTrigger
	Checked    int
}

// Evaluator runs the condition evaluators against the corpus. Evaluators
// never consult the ledger; re-proposing already-recorded triggers is
// expected and resolved downstream.
type Evaluator struct {
	corpus  repository.CorpusRepository
	log     logger.Logger
	metrics *metrics.AlertingMetrics
}

// NewEvaluator creates an Evaluator. Metrics may be nil.
func NewEvaluator(corpus repository.CorpusRepository, log logger.Logger, m *metrics.AlertingMetrics) *Evaluator {
	return &Evaluator{corpus: corpus, log: log, metrics: m}
}

// Evaluate runs the three evaluator kinds concurrently over the given rules.
// windowStart bounds the appearance and keyword evaluators; nil means no
// lower bound. An evaluator failure is logged and degrades counts; it never
// aborts the cycle.
func (e *Evaluator) Evaluate(ctx context.Context, rules []entities.AlertRule, windowStart *time.Time) EvaluationResult {
	var metricRules, topicRules, keywordRules []entities.AlertRule
	for i := range rules {
		rule := rules[i]
		if !rule.Enabled {
			continue
		}
		switch {
		case entities.IsMetricKind(rule.Kind):
			metricRules = append(metricRules, rule)
		case rule.Kind == entities.KindNarrativeWithTopic:
			topicRules = append(topicRules, rule)
		case rule.Kind == entities.KindKeyword:
			keywordRules = append(keywordRules, rule)
		}
	}

	var metricResult, topicResult, keywordResult EvaluationResult

	// The evaluators share no mutable state; only the ledger write that
	// follows is order-sensitive, and it is atomic on its own.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metricResult = e.evaluateThresholds(gctx, metricRules)
		return nil
	})
	g.Go(func() error {
		topicResult = e.evaluateAppearances(gctx, topicRules, windowStart)
		return nil
	})
	g.Go(func() error {
		keywordResult = e.evaluateKeywords(gctx, keywordRules, windowStart)
		return nil
	})
	_ = g.Wait() // goroutines log their own failures and return nil

	result := EvaluationResult{
		Checked: metricResult.Checked + topicResult.Checked + keywordResult.Checked,
	}
	result.Candidates = append(result.Candidates, metricResult.Candidates...)
	result.Candidates = append(result.Candidates, topicResult.Candidates...)
	result.Candidates = append(result.Candidates, keywordResult.Candidates...)
	return result
}

// evaluateThresholds compares the per-narrative aggregates against every
// metric rule. The dedup key is the configured threshold, so a rule refires
// when its threshold changes but not while the value merely holds above it.
func (e *Evaluator) evaluateThresholds(ctx context.Context, rules []entities.AlertRule) EvaluationResult {
	var result EvaluationResult
	if len(rules) == 0 {
		return result
	}

	stats, err := e.corpus.Stats(ctx, nil)
	if err != nil {
		e.log.Error("failed to load narrative stats, skipping metric rules", logger.Error(err))
		e.recordEvaluatorError("metric")
		return result
	}

	for i := range rules {
		rule := rules[i]
		if rule.Threshold == nil {
			continue
		}
		for _, row := range stats {
			if rule.Scope == entities.ScopeSpecific && (rule.NarrativeID == nil || *rule.NarrativeID != row.NarrativeID) {
				continue
			}
			observed := metricValue(rule.Kind, row)
			result.Checked++
			e.recordChecked(rule.Kind, 1)
			if observed >= *rule.Threshold {
				value := observed
				result.Candidates = append(result.Candidates, CandidateTrigger{
					Rule:          rule,
					NarrativeID:   row.NarrativeID,
					ObservedValue: &value,
					DedupKey:      strconv.FormatInt(*rule.Threshold, 10),
				})
			}
		}
	}
	return result
}

// evaluateAppearances emits one candidate per (rule, narrative) for
// narratives created since the window start that carry the rule's topic.
func (e *Evaluator) evaluateAppearances(ctx context.Context, rules []entities.AlertRule, windowStart *time.Time) EvaluationResult {
	var result EvaluationResult
	for i := range rules {
		rule := rules[i]
		if rule.TopicID == nil {
			continue
		}
		ids, err := e.corpus.NarrativesWithTopicSince(ctx, *rule.TopicID, windowStart)
		if err != nil {
			e.log.Error("topic evaluator failed, skipping rule",
				logger.Uint64("rule_id", uint64(rule.ID)),
				logger.Error(err))
			e.recordEvaluatorError(entities.KindNarrativeWithTopic)
			continue
		}
		result.Checked += len(ids)
		e.recordChecked(rule.Kind, len(ids))
		for _, id := range ids {
			result.Candidates = append(result.Candidates, CandidateTrigger{
				Rule:        rule,
				NarrativeID: id,
				DedupKey:    entities.DedupKeyTopic,
			})
		}
	}
	return result
}

// evaluateKeywords emits one candidate per (rule, narrative) for narratives
// created since the window start whose text contains the rule's keyword.
func (e *Evaluator) evaluateKeywords(ctx context.Context, rules []entities.AlertRule, windowStart *time.Time) EvaluationResult {
	var result EvaluationResult
	for i := range rules {
		rule := rules[i]
		if rule.Keyword == "" {
			continue
		}
		ids, err := e.corpus.NarrativesMatchingKeywordSince(ctx, rule.Keyword, windowStart)
		if err != nil {
			e.log.Error("keyword evaluator failed, skipping rule",
				logger.Uint64("rule_id", uint64(rule.ID)),
				logger.Error(err))
			e.recordEvaluatorError(entities.KindKeyword)
			continue
		}
		result.Checked += len(ids)
		e.recordChecked(rule.Kind, len(ids))
		for _, id := range ids {
			result.Candidates = append(result.Candidates, CandidateTrigger{
				Rule:        rule,
				NarrativeID: id,
				DedupKey:    entities.DedupKeyKeyword,
			})
		}
	}
	return result
}

func metricValue(kind string, row repository.NarrativeStats) int64 {
	switch kind {
	case entities.KindNarrativeViews:
		return row.TotalViews
	case entities.KindNarrativeClaimsCount:
		return row.ClaimsCount
	case entities.KindNarrativeVideosCount:
		return row.VideosCount
	default:
		return 0
	}
}

func (e *Evaluator) recordChecked(kind string, n int) {
	if e.metrics != nil && n > 0 {
		e.metrics.RecordCandidatesChecked(kind, n)
	}
}

func (e *Evaluator) recordEvaluatorError(kind string) {
	if e.metrics != nil {
		e.metrics.RecordEvaluatorError(kind)
	}
}
