package alerting

import (
	"context"
	"fmt"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
	"github.com/veritrack/veritrack-go/internal/datastore/repository"
	"github.com/veritrack/veritrack-go/internal/email"
	"github.com/veritrack/veritrack-go/internal/logger"
	"github.com/veritrack/veritrack-go/internal/observability/metrics"
)

// Notifier batches newly recorded triggers per recipient and sends one
// digest email per (user, organisation) group. Send failures are logged and
// left for the next cycle; the ledger rows stay unsent.
type Notifier struct {
	alerts  repository.AlertRepository
	corpus  repository.CorpusRepository
	auth    repository.AuthRepository
	mailer  email.Mailer
	log     logger.Logger
	metrics *metrics.AlertingMetrics

	// recipients caches user/organisation lookups across groups and cycles.
	recipients *gocache.Cache
	limiter    *rate.Limiter
}

// NotifierConfig tunes recipient caching and outbound rate limiting.
type NotifierConfig struct {
	RecipientCacheTTL time.Duration
	EmailsPerMinute   int
}

// NewNotifier creates a Notifier. Metrics may be nil.
func NewNotifier(
	alerts repository.AlertRepository,
	corpus repository.CorpusRepository,
	auth repository.AuthRepository,
	mailer email.Mailer,
	cfg NotifierConfig,
	log logger.Logger,
	m *metrics.AlertingMetrics,
) *Notifier {
	ttl := cfg.RecipientCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	limit := rate.Inf
	if cfg.EmailsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.EmailsPerMinute) / 60.0)
	}
	return &Notifier{
		alerts:     alerts,
		corpus:     corpus,
		auth:       auth,
		mailer:     mailer,
		log:        log,
		metrics:    m,
		// No janitor goroutine: expired entries are dropped lazily on Get.
		recipients: gocache.New(ttl, 0),
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// recipientGroup keys one outbound digest.
type recipientGroup struct {
	userID         uint
	organisationID uint
}

// Notify sends one digest per recipient group and flips notification_sent on
// every trigger that made it into a delivered digest. It returns the number
// of triggers notified and the number of digest emails delivered. Triggers
// must carry their Rule.
func (n *Notifier) Notify(ctx context.Context, triggers []entities.AlertTrigger) (notified, emails int) {
	if len(triggers) == 0 {
		return 0, 0
	}

	groups := make(map[recipientGroup][]entities.AlertTrigger)
	for i := range triggers {
		key := recipientGroup{
			userID:         triggers[i].Rule.UserID,
			organisationID: triggers[i].Rule.OrganisationID,
		}
		groups[key] = append(groups[key], triggers[i])
	}

	keys := make([]recipientGroup, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].userID != keys[j].userID {
			return keys[i].userID < keys[j].userID
		}
		return keys[i].organisationID < keys[j].organisationID
	})

	for _, key := range keys {
		if ctx.Err() != nil {
			n.log.Warn("notification pass cut short", logger.Error(ctx.Err()))
			break
		}
		// One digest per group, so a non-zero result means one delivery.
		if sent := n.notifyGroup(ctx, key, groups[key]); sent > 0 {
			notified += sent
			emails++
		}
	}
	return notified, emails
}

// notifyGroup composes and sends one digest. A missing user or organisation
// skips the whole group; a missing narrative skips only that trigger.
func (n *Notifier) notifyGroup(ctx context.Context, key recipientGroup, triggers []entities.AlertTrigger) int {
	user, org, err := n.resolveRecipient(ctx, key)
	if err != nil {
		n.log.Warn("skipping recipient group",
			logger.Uint64("user_id", uint64(key.userID)),
			logger.Uint64("organisation_id", uint64(key.organisationID)),
			logger.Error(err))
		return 0
	}

	var lines []email.TriggerLine
	var included []entities.AlertTrigger
	for i := range triggers {
		trigger := triggers[i]
		narrative, err := n.corpus.GetNarrative(ctx, trigger.NarrativeID)
		if err != nil {
			n.log.Warn("skipping trigger with unresolvable narrative",
				logger.Uint64("trigger_id", uint64(trigger.ID)),
				logger.Uint64("narrative_id", uint64(trigger.NarrativeID)),
				logger.Error(err))
			continue
		}
		lines = append(lines, email.TriggerLine{
			RuleName:       trigger.Rule.Name,
			Kind:           trigger.Rule.Kind,
			NarrativeTitle: narrative.Title,
			Keyword:        trigger.Rule.Keyword,
			ObservedValue:  trigger.ObservedValue,
			Threshold:      trigger.Rule.Threshold,
		})
		included = append(included, trigger)
	}
	if len(included) == 0 {
		return 0
	}

	subject, body := email.ComposeAlertDigest(org.DisplayName, org.Language, lines)

	if err := n.limiter.Wait(ctx); err != nil {
		n.log.Warn("rate limiter interrupted", logger.Error(err))
		return 0
	}
	if err := n.mailer.Send(ctx, user.Email, subject, body); err != nil {
		n.log.Error("failed to send alert digest",
			logger.String("to", user.Email),
			logger.Int("triggers", len(included)),
			logger.Error(err))
		n.recordNotification("failed")
		return 0
	}
	n.recordNotification("sent")

	sent := 0
	for i := range included {
		if err := n.alerts.MarkNotificationSent(ctx, included[i].ID); err != nil {
			// The email went out; a failed flag write means this trigger may
			// be re-sent next cycle. Log and keep counting it as notified.
			n.log.Error("failed to mark trigger notified",
				logger.Uint64("trigger_id", uint64(included[i].ID)),
				logger.Error(err))
		}
		sent++
	}
	n.log.Info("alert digest sent",
		logger.String("to", user.Email),
		logger.Int("triggers", sent))
	return sent
}

// resolveRecipient looks up the user and organisation, serving repeats from
// the cache.
func (n *Notifier) resolveRecipient(ctx context.Context, key recipientGroup) (*entities.User, *entities.Organisation, error) {
	userKey := fmt.Sprintf("user:%d", key.userID)
	orgKey := fmt.Sprintf("org:%d", key.organisationID)

	var user *entities.User
	if cached, found := n.recipients.Get(userKey); found {
		user = cached.(*entities.User)
	} else {
		fetched, err := n.auth.GetUser(ctx, key.userID)
		if err != nil {
			return nil, nil, err
		}
		n.recipients.SetDefault(userKey, fetched)
		user = fetched
	}

	var org *entities.Organisation
	if cached, found := n.recipients.Get(orgKey); found {
		org = cached.(*entities.Organisation)
	} else {
		fetched, err := n.auth.GetOrganisation(ctx, key.organisationID)
		if err != nil {
			return nil, nil, err
		}
		n.recipients.SetDefault(orgKey, fetched)
		org = fetched
	}
	return user, org, nil
}

func (n *Notifier) recordNotification(status string) {
	if n.metrics != nil {
		n.metrics.RecordNotification(status)
	}
}
