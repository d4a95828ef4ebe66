package finetract

import (
	"time"

	"github.com/rs/zerolog"
)

// Tracker wires the pipeline together: classifier in front, the ledger
// gate behind it, and the derived views (insights, ghosts, report card)
// exposed as pull-style queries. Construct one per application session and
// hand it to every caller; no component reaches for ambient global state.
type Tracker struct {
	cls    *Classifier
	ledger *Ledger
	log    zerolog.Logger
	now    func() time.Time
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithLogger routes pipeline logging to log instead of discarding it.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New builds the pipeline on top of store with the given configuration.
func New(store Store, cfg Config, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	weekend, err := cfg.weekendSet()
	if err != nil {
		return nil, err
	}
	cls, err := NewClassifier(cfg, t.log)
	if err != nil {
		return nil, err
	}
	t.cls = cls
	t.ledger = &Ledger{
		store:            store,
		insights:         newInsights(store, weekend, t.log),
		log:              t.log,
		defaultLimit:     cfg.DailyLimit,
		defaultThreshold: cfg.LargePaymentThreshold,
		window:           cfg.debounceWindow(),
		debounce:         make(map[string]time.Time),
		now:              t.now,
	}
	return t, nil
}

// Ingest is the inbound event interface: raw notification or SMS text plus
// the delivery timestamp. Rejections are logged and returned; they are
// expected outcomes, not failures to retry.
func (t *Tracker) Ingest(channelID, title, body string, eventTime time.Time) error {
	c, err := t.cls.Classify(channelID, title, body, eventTime)
	if err != nil {
		t.log.Debug().Str("channel", channelID).Err(err).Msg("event rejected by classifier")
		return err
	}
	res, err := t.ledger.Admit(c)
	if err != nil {
		t.log.Debug().
			Str("channel", channelID).
			Float64("amount", c.Amount).
			Err(err).
			Msg("candidate rejected by gate")
		return err
	}
	t.log.Info().
		Str("merchant", c.Merchant).
		Str("category", string(c.Category)).
		Float64("amount", c.Amount).
		Bool("excluded", res.Excluded).
		Bool("big_spend", res.BigSpend).
		Msg("transaction recorded")
	return nil
}

// Ledger exposes the underlying ledger service for direct admission of
// pre-classified candidates.
func (t *Tracker) Ledger() *Ledger {
	return t.ledger
}

// TodaySpend returns the current day's discretionary spend.
func (t *Tracker) TodaySpend() (float64, error) {
	return t.ledger.TodaySpend()
}

// DailyLimit returns the active daily budget.
func (t *Tracker) DailyLimit() (float64, error) {
	return t.ledger.DailyLimit()
}

// SetDailyLimit updates the daily budget.
func (t *Tracker) SetDailyLimit(limit float64) error {
	return t.ledger.SetDailyLimit(limit)
}

// SetLargePaymentThreshold updates the large-payment exclusion cutoff.
func (t *Tracker) SetLargePaymentThreshold(threshold float64) error {
	return t.ledger.SetLargePaymentThreshold(threshold)
}

// LimitExceeded is the outbound signal read by the alerting collaborator.
func (t *Tracker) LimitExceeded() (bool, error) {
	return t.ledger.LimitExceeded()
}

// Message returns the single prioritized behavioral insight.
func (t *Tracker) Message() (Message, error) {
	return t.ledger.PrioritizedMessage()
}

// Transactions returns the append-only transaction log.
func (t *Tracker) Transactions() ([]TransactionRecord, error) {
	return t.ledger.Transactions()
}

// History returns the archived daily records.
func (t *Tracker) History() ([]DailyRecord, error) {
	return t.ledger.History()
}

// Ghosts scans the ledger for recurring merchant/amount cycles.
func (t *Tracker) Ghosts() ([]GhostSubscription, error) {
	txns, err := t.ledger.Transactions()
	if err != nil {
		return nil, err
	}
	return ScanGhosts(txns), nil
}

// ReportCard generates the previous month's report card. ok is false when
// that month has no archived days.
func (t *Tracker) ReportCard() (*ReportCard, bool, error) {
	history, err := t.ledger.History()
	if err != nil {
		return nil, false, err
	}
	txns, err := t.ledger.Transactions()
	if err != nil {
		return nil, false, err
	}
	card, ok := GenerateReportCard(history, txns, t.now())
	return card, ok, nil
}

// ReportAvailable reports whether this month's report cycle is still
// unshown.
func (t *Tracker) ReportAvailable() (bool, error) {
	return t.ledger.ReportAvailable()
}

// MarkReportShown records that this month's report was displayed.
func (t *Tracker) MarkReportShown() error {
	return t.ledger.MarkReportShown()
}
