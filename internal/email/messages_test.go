package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
)

func int64Ptr(v int64) *int64 { return &v }

func TestComposeAlertDigest_English(t *testing.T) {
	t.Parallel()

	items := []TriggerLine{
		{
			RuleName:       "views watch",
			Kind:           entities.KindNarrativeViews,
			NarrativeTitle: "Vaccine microchip hoax",
			ObservedValue:  int64Ptr(1500),
			Threshold:      int64Ptr(1000),
		},
		{
			RuleName:       "topic watch",
			Kind:           entities.KindNarrativeWithTopic,
			NarrativeTitle: "Election fraud claims",
		},
		{
			RuleName:       "keyword watch",
			Kind:           entities.KindKeyword,
			NarrativeTitle: "Chemtrail coverage",
			Keyword:        "chemtrail",
		},
	}

	subject, body := ComposeAlertDigest("Fact Lab", "en", items)

	assert.Equal(t, "VeriTrack: 3 alert(s) triggered", subject)
	assert.Contains(t, body, "Fact Lab")
	assert.Contains(t, body, "views watch")
	assert.Contains(t, body, "total views reached 1500")
	assert.Contains(t, body, "(threshold: 1000)")
	assert.Contains(t, body, "new narrative mentions a tracked topic")
	assert.Contains(t, body, "contains keyword")
	assert.Contains(t, body, "chemtrail")
	assert.Contains(t, body, "Vaccine microchip hoax")
}

func TestComposeAlertDigest_Spanish(t *testing.T) {
	t.Parallel()

	items := []TriggerLine{
		{
			RuleName:      "views watch",
			Kind:          entities.KindNarrativeViews,
			ObservedValue: int64Ptr(1500),
			Threshold:     int64Ptr(1000),
		},
	}

	subject, body := ComposeAlertDigest("Fact Lab", "es-MX", items)

	assert.Equal(t, "VeriTrack: 1 alerta(s) activada(s)", subject)
	assert.Contains(t, body, "las vistas totales alcanzaron 1500")
	assert.Contains(t, body, "(umbral: 1000)")
}

func TestComposeAlertDigest_FallsBackToEnglish(t *testing.T) {
	t.Parallel()

	items := []TriggerLine{{RuleName: "r", Kind: entities.KindNarrativeWithTopic}}

	for _, locale := range []string{"", "fr", "zz-nonsense"} {
		subject, _ := ComposeAlertDigest("Fact Lab", locale, items)
		assert.Equal(t, "VeriTrack: 1 alert(s) triggered", subject, "locale %q", locale)
	}
}

func TestComposeAlertDigest_EscapesHTML(t *testing.T) {
	t.Parallel()

	items := []TriggerLine{{
		RuleName:       "<script>alert(1)</script>",
		Kind:           entities.KindNarrativeWithTopic,
		NarrativeTitle: "a < b",
	}}

	_, body := ComposeAlertDigest("Org & Co", "en", items)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "a &lt; b")
	assert.Contains(t, body, "Org &amp; Co")
}

func TestComposeAlertDigest_MissingObservedValue(t *testing.T) {
	t.Parallel()

	items := []TriggerLine{{
		RuleName:  "views watch",
		Kind:      entities.KindNarrativeViews,
		Threshold: int64Ptr(1000),
	}}

	_, body := ComposeAlertDigest("Fact Lab", "en", items)
	require.Contains(t, body, "total views reached 0")
}
