package email

import (
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/language"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
)

// Inline styles keep the digest readable in clients that strip stylesheets.
const (
	containerStyle = "background: #f1f1f1; color: #333; border-radius: 16px; padding: 24px; font-family: Helvetica, Arial, sans-serif;"
	headingStyle   = "font-size: 18px; margin: 0 0 16px 0;"
	itemStyle      = "background: #ffffff; border-radius: 8px; padding: 12px 16px; margin: 0 0 8px 0;"
	ruleNameStyle  = "font-weight: bold;"
	footerStyle    = "font-size: 12px; color: #888; margin: 16px 0 0 0;"
)

// TriggerLine is one fired alert rendered into the digest.
type TriggerLine struct {
	RuleName       string
	Kind           string
	NarrativeTitle string
	Keyword        string
	ObservedValue  *int64
	Threshold      *int64
}

// digestStrings holds the localized digest text.
type digestStrings struct {
	subject       string // fmt: count
	heading       string // fmt: count, org name
	metricLine    map[string]string
	topicLine     string
	keywordLine   string // fmt: keyword
	thresholdNote string // fmt: threshold
	footer        string
}

var digestLocales = map[language.Tag]digestStrings{
	language.English: {
		subject: "VeriTrack: %d alert(s) triggered",
		heading: "%d alert(s) triggered for %s",
		metricLine: map[string]string{
			entities.KindNarrativeViews:       "total views reached %d",
			entities.KindNarrativeClaimsCount: "claims count reached %d",
			entities.KindNarrativeVideosCount: "videos count reached %d",
		},
		topicLine:     "new narrative mentions a tracked topic",
		keywordLine:   "new narrative contains keyword %q",
		thresholdNote: " (threshold: %d)",
		footer:        "You receive this message because alert rules are configured for your organisation.",
	},
	language.Spanish: {
		subject: "VeriTrack: %d alerta(s) activada(s)",
		heading: "%d alerta(s) activada(s) para %s",
		metricLine: map[string]string{
			entities.KindNarrativeViews:       "las vistas totales alcanzaron %d",
			entities.KindNarrativeClaimsCount: "el número de afirmaciones alcanzó %d",
			entities.KindNarrativeVideosCount: "el número de videos alcanzó %d",
		},
		topicLine:     "una nueva narrativa menciona un tema seguido",
		keywordLine:   "una nueva narrativa contiene la palabra clave %q",
		thresholdNote: " (umbral: %d)",
		footer:        "Recibe este mensaje porque hay reglas de alerta configuradas para su organización.",
	},
}

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
})

// localize picks the closest supported locale for a BCP 47 tag, falling back
// to English.
func localize(locale string) digestStrings {
	tag, _ := language.MatchStrings(localeMatcher, locale)
	base, _ := tag.Base()
	for supported, strs := range digestLocales {
		if b, _ := supported.Base(); b == base {
			return strs
		}
	}
	return digestLocales[language.English]
}

// ComposeAlertDigest renders the per-recipient digest email for one batch of
// fired alerts. The locale comes from the recipient's organisation.
func ComposeAlertDigest(orgName, locale string, items []TriggerLine) (subject, htmlBody string) {
	strs := localize(locale)
	subject = fmt.Sprintf(strs.subject, len(items))

	var b strings.Builder
	fmt.Fprintf(&b, `<div style=%q>`, containerStyle)
	fmt.Fprintf(&b, `<p style=%q>%s</p>`, headingStyle,
		html.EscapeString(fmt.Sprintf(strs.heading, len(items), orgName)))

	for _, item := range items {
		fmt.Fprintf(&b, `<div style=%q><span style=%q>%s</span>: %s`,
			itemStyle, ruleNameStyle,
			html.EscapeString(item.RuleName),
			html.EscapeString(describeTrigger(strs, item)))
		if item.NarrativeTitle != "" {
			fmt.Fprintf(&b, `<br/>%s`, html.EscapeString(item.NarrativeTitle))
		}
		b.WriteString(`</div>`)
	}

	fmt.Fprintf(&b, `<p style=%q>%s</p>`, footerStyle, html.EscapeString(strs.footer))
	b.WriteString(`</div>`)
	return subject, b.String()
}

// describeTrigger builds the kind-specific line for one fired alert.
func describeTrigger(strs digestStrings, item TriggerLine) string {
	switch {
	case entities.IsMetricKind(item.Kind):
		var observed int64
		if item.ObservedValue != nil {
			observed = *item.ObservedValue
		}
		line := fmt.Sprintf(strs.metricLine[item.Kind], observed)
		if item.Threshold != nil {
			line += fmt.Sprintf(strs.thresholdNote, *item.Threshold)
		}
		return line
	case item.Kind == entities.KindNarrativeWithTopic:
		return strs.topicLine
	case item.Kind == entities.KindKeyword:
		return fmt.Sprintf(strs.keywordLine, item.Keyword)
	default:
		return item.Kind
	}
}
