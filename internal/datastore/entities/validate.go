package entities

import (
	"github.com/veritrack/veritrack-go/internal/errors"
)

// Validate enforces the rule invariants at creation and update time. The
// evaluation engine assumes stored rules passed this check.
func (r *AlertRule) Validate() error {
	if !IsValidKind(r.Kind) {
		return validationError("unknown alert rule kind %q", r.Kind)
	}

	switch r.Scope {
	case ScopeGeneral:
		if r.NarrativeID != nil {
			return validationError("general-scope rules must not bind a narrative")
		}
	case ScopeSpecific:
		if r.NarrativeID == nil {
			return validationError("specific-scope rules require a narrative")
		}
	default:
		return validationError("unknown alert rule scope %q", r.Scope)
	}

	switch {
	case IsMetricKind(r.Kind):
		if r.Threshold == nil {
			return validationError("%s rules require a threshold", r.Kind)
		}
		if r.TopicID != nil || r.Keyword != "" {
			return validationError("%s rules must not set a topic or keyword", r.Kind)
		}
	case r.Kind == KindNarrativeWithTopic:
		if r.TopicID == nil {
			return validationError("topic rules require a topic")
		}
		if r.Threshold != nil || r.Keyword != "" {
			return validationError("topic rules must not set a threshold or keyword")
		}
		if r.Scope != ScopeGeneral {
			return validationError("topic rules must be general scope")
		}
	case r.Kind == KindKeyword:
		if r.Keyword == "" {
			return validationError("keyword rules require a keyword")
		}
		if r.Threshold != nil || r.TopicID != nil {
			return validationError("keyword rules must not set a threshold or topic")
		}
		if r.Scope != ScopeGeneral {
			return validationError("keyword rules must be general scope")
		}
	}
	return nil
}

func validationError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("alerting").
		Category(errors.CategoryValidation).
		Build()
}
