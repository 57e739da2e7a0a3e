package repository

import (
	"context"
	"time"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
)

// NarrativeStats holds the per-narrative aggregates the threshold
// evaluators compare against.
type NarrativeStats struct {
	NarrativeID uint  `json:"narrative_id"`
	TotalViews  int64 `json:"total_views"`
	ClaimsCount int64 `json:"claims_count"`
	VideosCount int64 `json:"videos_count"`
}

// CorpusRepository exposes the read queries the evaluators need against the
// narrative corpus. The corpus itself is owned and mutated by the
// surrounding CRUD layer.
type CorpusRepository interface {
	// Stats returns aggregates for every narrative, or for exactly one when
	// narrativeID is non-nil.
	Stats(ctx context.Context, narrativeID *uint) ([]NarrativeStats, error)
	// NarrativesWithTopicSince returns IDs of narratives carrying the topic,
	// restricted to narratives created at or after since when non-nil.
	NarrativesWithTopicSince(ctx context.Context, topicID uint, since *time.Time) ([]uint, error)
	// NarrativesMatchingKeywordSince returns IDs of narratives whose title or
	// description contains the keyword, case-insensitively.
	NarrativesMatchingKeywordSince(ctx context.Context, keyword string, since *time.Time) ([]uint, error)
	// GetNarrative resolves a narrative for display purposes.
	// Returns ErrNarrativeNotFound when it no longer exists.
	GetNarrative(ctx context.Context, id uint) (*entities.Narrative, error)
}
