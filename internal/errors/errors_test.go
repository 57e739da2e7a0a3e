package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder_Build(t *testing.T) {
	base := NewStd("connection refused")
	err := New(base).
		Component("email").
		Category(CategoryNetwork).
		Priority(PriorityHigh).
		Context("operation", "send").
		Build()

	assert.Equal(t, "connection refused", err.Error())
	assert.Equal(t, "email", err.Component)
	assert.Equal(t, CategoryNetwork, err.Category)
	assert.Equal(t, PriorityHigh, err.Priority)
	assert.Equal(t, "send", err.Context["operation"])
	assert.False(t, err.Timestamp.IsZero())
	assert.ErrorIs(t, err, base)
}

func TestErrorBuilder_DefaultsToGeneric(t *testing.T) {
	err := Newf("something %s", "odd").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
}

func TestErrorBuilder_InvalidPriorityIgnored(t *testing.T) {
	err := Newf("x").Priority("urgent-ish").Build()
	assert.Empty(t, err.Priority)
}

func TestIsCategory(t *testing.T) {
	err := Newf("missing row").Category(CategoryNotFound).Build()

	assert.True(t, IsCategory(err, CategoryNotFound))
	assert.False(t, IsCategory(err, CategoryDatabase))
	assert.True(t, IsNotFound(err))

	wrapped := fmt.Errorf("lookup failed: %w", err)
	assert.True(t, IsNotFound(wrapped), "category survives wrapping")
	assert.False(t, IsNotFound(NewStd("plain")))
}

type recordingReporter struct {
	reported []*EnhancedError
}

func (r *recordingReporter) Report(ee *EnhancedError) {
	r.reported = append(r.reported, ee)
}

func TestReporterReceivesBuiltErrors(t *testing.T) {
	reporter := &recordingReporter{}
	SetReporter(reporter)
	t.Cleanup(func() { SetReporter(nil) })

	Newf("boom").Component("alerting").Category(CategoryDatabase).Build()

	require.Len(t, reporter.reported, 1)
	assert.Equal(t, "alerting", reporter.reported[0].Component)
	assert.Equal(t, CategoryDatabase, reporter.reported[0].Category)
}
