package repository

import "github.com/veritrack/veritrack-go/internal/errors"

// Sentinel errors returned by repository lookups. Compare with errors.Is.
var (
	ErrAlertRuleNotFound    = errors.NewStd("alert rule not found")
	ErrNarrativeNotFound    = errors.NewStd("narrative not found")
	ErrUserNotFound         = errors.NewStd("user not found")
	ErrOrganisationNotFound = errors.NewStd("organisation not found")
)
