package finetract

import (
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Gate rejections. Like classifier rejections these are expected outcomes.
var (
	ErrDuplicate     = errors.New("event already processed")
	ErrNearDuplicate = errors.New("event within debounce window of an accepted one")
	ErrStaleEvent    = errors.New("event timestamp is not on the current day")
)

const (
	keyDailyLimit      = "daily_limit"
	keyTodaySpend      = "today_spend"
	keyLastResetDate   = "last_reset_date"
	keyProcessedTxns   = "processed_txns"
	keyLargeThreshold  = "large_payment_threshold"
	keyLastReportMonth = "last_report_month"
)

// AdmitResult describes what happened to an accepted candidate.
type AdmitResult struct {
	// Excluded: recorded and marked processed, but not counted against the
	// daily budget (large non-discretionary payment).
	Excluded bool
	// BigSpend: the amount is anomalously large next to the running average.
	BigSpend bool
}

// Ledger owns all mutable pipeline state behind a single mutex: the day
// accumulator, the persisted duplicate set, the volatile debounce map and
// the rollover transition. Every entry point re-checks the calendar day
// before touching state, so a transaction is never admitted against a
// stale day's accumulator.
type Ledger struct {
	mu       sync.Mutex
	store    Store
	insights *Insights
	log      zerolog.Logger

	defaultLimit     float64
	defaultThreshold float64
	window           time.Duration
	debounce         map[string]time.Time
	now              func() time.Time
}

// eventKey identifies a real-world event for exact-duplicate suppression.
func eventKey(c Candidate) string {
	return c.ChannelID + "|" + formatAmount(c.Amount) + "|" + strconv.FormatInt(c.Time.UnixMilli(), 10)
}

// debounceKey deliberately drops the timestamp: redelivery often perturbs
// it by a few seconds, which defeats the exact key.
func debounceKey(c Candidate) string {
	return c.ChannelID + "|" + formatAmount(c.Amount)
}

// Admit runs the candidate through the dedup/debounce gate and, on
// acceptance, folds it into the ledger and the behavioral engine.
func (l *Ledger) Admit(c Candidate) (AdmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res AdmitResult
	if err := l.rolloverLocked(); err != nil {
		return res, err
	}

	if c.Time.Format(dayStamp) != l.now().Format(dayStamp) {
		return res, ErrStaleEvent
	}

	processed, err := l.store.GetStringSet(keyProcessedTxns)
	if err != nil {
		return res, err
	}
	key := eventKey(c)
	if processed[key] {
		return res, ErrDuplicate
	}

	dk := debounceKey(c)
	if last, ok := l.debounce[dk]; ok {
		d := c.Time.Sub(last)
		if d < 0 {
			d = -d
		}
		if d < l.window {
			// Not updating the map: a burst of redeliveries must all be
			// measured against the accepted event.
			return res, ErrNearDuplicate
		}
	}
	l.debounce[dk] = c.Time

	rec := TransactionRecord{Time: c.Time, Merchant: c.Merchant, Amount: c.Amount, Category: c.Category}
	if err := l.store.AppendTransaction(rec); err != nil {
		return res, err
	}
	processed[key] = true
	if err := l.store.SetStringSet(keyProcessedTxns, processed); err != nil {
		return res, err
	}

	threshold, err := l.largeThresholdLocked()
	if err != nil {
		return res, err
	}
	res.Excluded = threshold > 0 && c.Amount > threshold
	if !res.Excluded {
		spend, err := l.store.GetFloat(keyTodaySpend, 0)
		if err != nil {
			return res, err
		}
		if err := l.store.SetFloat(keyTodaySpend, spend+c.Amount); err != nil {
			return res, err
		}
	}

	if err := l.insights.observeWeekpart(c.Amount, c.Time); err != nil {
		return res, err
	}
	if !res.Excluded {
		big, err := l.insights.checkBigSpend(c.Amount, c.Time, threshold)
		if err != nil {
			return res, err
		}
		res.BigSpend = big
	}
	return res, nil
}

// rolloverLocked archives the prior day and resets the accumulators when
// the wall-clock day has changed since the last access. Callers hold l.mu.
func (l *Ledger) rolloverLocked() error {
	today := l.now().Format(dayStamp)
	last, err := l.store.GetString(keyLastResetDate, "")
	if err != nil {
		return err
	}
	if last == today {
		return nil
	}
	if last != "" {
		spend, err := l.store.GetFloat(keyTodaySpend, 0)
		if err != nil {
			return err
		}
		limit, err := l.dailyLimitLocked()
		if err != nil {
			return err
		}
		if err := l.store.AppendDay(DailyRecord{Date: last, Spend: spend, Limit: limit}); err != nil {
			return err
		}
		if err := l.insights.onDailyReset(spend, limit); err != nil {
			return err
		}
		l.log.Info().Str("date", last).Float64("spend", spend).Float64("limit", limit).
			Msg("archived day")
	}
	if err := l.store.SetString(keyLastResetDate, today); err != nil {
		return err
	}
	if err := l.store.SetFloat(keyTodaySpend, 0); err != nil {
		return err
	}
	return l.store.SetStringSet(keyProcessedTxns, nil)
}

func (l *Ledger) dailyLimitLocked() (float64, error) {
	return l.store.GetFloat(keyDailyLimit, l.defaultLimit)
}

func (l *Ledger) largeThresholdLocked() (float64, error) {
	return l.store.GetFloat(keyLargeThreshold, l.defaultThreshold)
}

// TodaySpend returns the current day's discretionary spend.
func (l *Ledger) TodaySpend() (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rolloverLocked(); err != nil {
		return 0, err
	}
	return l.store.GetFloat(keyTodaySpend, 0)
}

// DailyLimit returns the configured daily budget.
func (l *Ledger) DailyLimit() (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rolloverLocked(); err != nil {
		return 0, err
	}
	return l.dailyLimitLocked()
}

// SetDailyLimit updates the daily budget.
func (l *Ledger) SetDailyLimit(limit float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rolloverLocked(); err != nil {
		return err
	}
	return l.store.SetFloat(keyDailyLimit, limit)
}

// SetLargePaymentThreshold updates the cutoff above which payments are
// recorded but excluded from the daily budget. Zero disables it.
func (l *Ledger) SetLargePaymentThreshold(threshold float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rolloverLocked(); err != nil {
		return err
	}
	return l.store.SetFloat(keyLargeThreshold, threshold)
}

// LimitExceeded is the outbound alerting signal. Throttling alerts to once
// per day is the alerting collaborator's job, not the ledger's.
func (l *Ledger) LimitExceeded() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rolloverLocked(); err != nil {
		return false, err
	}
	spend, err := l.store.GetFloat(keyTodaySpend, 0)
	if err != nil {
		return false, err
	}
	limit, err := l.dailyLimitLocked()
	if err != nil {
		return false, err
	}
	return spend > limit, nil
}

// Transactions returns the full append-only transaction log.
func (l *Ledger) Transactions() ([]TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rolloverLocked(); err != nil {
		return nil, err
	}
	return l.store.Transactions()
}

// History returns the archived daily records.
func (l *Ledger) History() ([]DailyRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rolloverLocked(); err != nil {
		return nil, err
	}
	return l.store.Days()
}

// PrioritizedMessage evaluates the behavioral engine's single message
// against the current day's spend and limit.
func (l *Ledger) PrioritizedMessage() (Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rolloverLocked(); err != nil {
		return Message{}, err
	}
	spend, err := l.store.GetFloat(keyTodaySpend, 0)
	if err != nil {
		return Message{}, err
	}
	limit, err := l.dailyLimitLocked()
	if err != nil {
		return Message{}, err
	}
	return l.insights.message(spend, limit, l.now())
}

// ReportAvailable reports whether this month's report cycle has not been
// shown yet. The caller decides whether a report actually exists.
func (l *Ledger) ReportAvailable() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	shown, err := l.store.GetString(keyLastReportMonth, "")
	if err != nil {
		return false, err
	}
	return shown != l.now().Format("2006-01"), nil
}

// MarkReportShown records that this month's report cycle was displayed.
func (l *Ledger) MarkReportShown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.SetString(keyLastReportMonth, l.now().Format("2006-01"))
}
