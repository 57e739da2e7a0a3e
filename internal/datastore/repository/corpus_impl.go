package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
	"github.com/veritrack/veritrack-go/internal/errors"
)

// corpusRepository implements CorpusRepository.
type corpusRepository struct {
	db *gorm.DB
}

// NewCorpusRepository creates a new CorpusRepository.
func NewCorpusRepository(db *gorm.DB) CorpusRepository {
	return &corpusRepository{db: db}
}

// statsQuery aggregates views, claim counts and video counts per narrative
// by walking narrative -> claim links -> claims -> videos.
const statsQuery = `
SELECT
    n.id AS narrative_id,
    COALESCE(SUM(v.views), 0) AS total_views,
    COUNT(DISTINCT cn.claim_id) AS claims_count,
    COUNT(DISTINCT v.id) AS videos_count
FROM narratives n
LEFT JOIN claim_narratives cn ON cn.narrative_id = n.id
LEFT JOIN video_claims c ON c.id = cn.claim_id
LEFT JOIN videos v ON v.id = c.video_id
`

// Stats computes the aggregate metrics for narratives. Narratives with no
// linked content report zero on every metric.
func (r *corpusRepository) Stats(ctx context.Context, narrativeID *uint) ([]NarrativeStats, error) {
	var stats []NarrativeStats
	query := statsQuery
	args := []any{}
	if narrativeID != nil {
		query += "WHERE n.id = ?\n"
		args = append(args, *narrativeID)
	}
	query += "GROUP BY n.id"

	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to compute narrative stats: %w", err)
	}
	return stats, nil
}

// NarrativesWithTopicSince returns narratives carrying the topic, created
// at or after since when a lower bound is given.
func (r *corpusRepository) NarrativesWithTopicSince(ctx context.Context, topicID uint, since *time.Time) ([]uint, error) {
	var ids []uint
	query := r.db.WithContext(ctx).
		Table("narrative_topics").
		Joins("JOIN narratives ON narratives.id = narrative_topics.narrative_id").
		Where("narrative_topics.topic_id = ?", topicID)
	if since != nil {
		query = query.Where("narratives.created_at >= ?", *since)
	}
	if err := query.Distinct("narrative_topics.narrative_id").
		Pluck("narrative_topics.narrative_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query narratives by topic %d: %w", topicID, err)
	}
	return ids, nil
}

// NarrativesMatchingKeywordSince returns narratives whose searchable text
// contains the keyword. Matching is a case-insensitive substring check over
// title and description.
func (r *corpusRepository) NarrativesMatchingKeywordSince(ctx context.Context, keyword string, since *time.Time) ([]uint, error) {
	var ids []uint
	pattern := "%" + strings.ToLower(keyword) + "%"
	query := r.db.WithContext(ctx).
		Model(&entities.Narrative{}).
		Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query narratives by keyword: %w", err)
	}
	return ids, nil
}

// GetNarrative resolves a narrative by ID.
func (r *corpusRepository) GetNarrative(ctx context.Context, id uint) (*entities.Narrative, error) {
	var narrative entities.Narrative
	if err := r.db.WithContext(ctx).First(&narrative, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNarrativeNotFound
		}
		return nil, fmt.Errorf("failed to get narrative %d: %w", id, err)
	}
	return &narrative, nil
}
