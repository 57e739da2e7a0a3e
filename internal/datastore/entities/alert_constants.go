package entities

// Alert rule kinds. Metric kinds compare an aggregate against a threshold;
// the other kinds watch for newly appearing narratives.
const (
	KindNarrativeViews       = "narrative_views"
	KindNarrativeClaimsCount = "narrative_claims_count"
	KindNarrativeVideosCount = "narrative_videos_count"
	KindNarrativeWithTopic   = "narrative_with_topic"
	KindKeyword              = "keyword"
)

// Alert rule scopes.
const (
	ScopeGeneral  = "general"
	ScopeSpecific = "specific"
)

// Dedup key sentinels for non-metric kinds. Metric kinds use the threshold
// value rendered as a decimal string, so a changed threshold re-fires while
// a held threshold does not.
const (
	DedupKeyTopic   = "topic"
	DedupKeyKeyword = "keyword"
)

// MetricKinds lists the threshold-based rule kinds.
var MetricKinds = []string{
	KindNarrativeViews,
	KindNarrativeClaimsCount,
	KindNarrativeVideosCount,
}

// IsMetricKind reports whether kind is threshold-based.
func IsMetricKind(kind string) bool {
	switch kind {
	case KindNarrativeViews, KindNarrativeClaimsCount, KindNarrativeVideosCount:
		return true
	default:
		return false
	}
}

// IsValidKind reports whether kind is one of the known rule kinds.
func IsValidKind(kind string) bool {
	return IsMetricKind(kind) || kind == KindNarrativeWithTopic || kind == KindKeyword
}
