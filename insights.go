package finetract

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

const (
	keyStreak       = "streak_days"
	keyWeeklySaved  = "weekly_saved"
	keyWeekdaySum   = "weekday_sum"
	keyWeekdayCount = "weekday_count"
	keyWeekendSum   = "weekend_sum"
	keyWeekendCount = "weekend_count"
	keyTxnSum       = "txn_total_sum"
	keyTxnCount     = "txn_total_count"
	keyLastBigAlert = "last_big_alert_date"
	keyValidDays    = "valid_days_limit_calc"
	keyLimitCalcSum = "total_spend_limit_calc"
)

// Tier is the severity of a behavioral message.
type Tier int

const (
	TierGood Tier = iota
	TierInfo
	TierCaution
	TierAlert
)

func (t Tier) String() string {
	switch t {
	case TierAlert:
		return "alert"
	case TierCaution:
		return "caution"
	case TierInfo:
		return "info"
	default:
		return "good"
	}
}

// Message is the single prioritized behavioral insight.
type Message struct {
	Text string
	Tier Tier
}

var (
	alertMoods   = []string{"Today went out of control.", "You crossed your comfort zone today."}
	cautionMoods = []string{"Spending is slightly high today.", "Be mindful for the rest of the day."}
	goodMoods    = []string{"You were disciplined today.", "Nice control today."}
	weekendWarns = []string{"You usually spend more on weekends.", "Weekends tend to increase your spending."}
)

// pickMood varies the phrasing by calendar day so repeated queries within a
// day stay stable.
func pickMood(msgs []string, at time.Time) string {
	return msgs[at.Day()%len(msgs)]
}

// Insights derives streaks, savings, weekend patterns, anomaly flags and a
// prioritized message from incrementally maintained counters. All state
// lives in the store; callers serialize access (the Ledger's mutex).
type Insights struct {
	store   Store
	weekend map[time.Weekday]bool
	log     zerolog.Logger
}

func newInsights(store Store, weekend map[time.Weekday]bool, log zerolog.Logger) *Insights {
	return &Insights{store: store, weekend: weekend, log: log}
}

// observeWeekpart folds an accepted transaction into the weekday/weekend
// accumulators, classified by the transaction's own calendar weekday.
func (x *Insights) observeWeekpart(amount float64, at time.Time) error {
	sumKey, countKey := keyWeekdaySum, keyWeekdayCount
	if x.weekend[at.Weekday()] {
		sumKey, countKey = keyWeekendSum, keyWeekendCount
	}
	sum, err := x.store.GetFloat(sumKey, 0)
	if err != nil {
		return err
	}
	count, err := x.store.GetInt(countKey, 0)
	if err != nil {
		return err
	}
	if err := x.store.SetFloat(sumKey, sum+amount); err != nil {
		return err
	}
	return x.store.SetInt(countKey, count+1)
}

// checkBigSpend updates the all-time running counters and reports whether
// this amount is anomalous: past a 5-transaction warmup, at least 2.5x the
// average of the prior transactions, not already covered by the
// large-payment threshold, and at most one flag per calendar day.
func (x *Insights) checkBigSpend(amount float64, at time.Time, threshold float64) (bool, error) {
	count, err := x.store.GetInt(keyTxnCount, 0)
	if err != nil {
		return false, err
	}
	sum, err := x.store.GetFloat(keyTxnSum, 0)
	if err != nil {
		return false, err
	}
	if err := x.store.SetInt(keyTxnCount, count+1); err != nil {
		return false, err
	}
	if err := x.store.SetFloat(keyTxnSum, sum+amount); err != nil {
		return false, err
	}
	if count < 5 {
		return false, nil
	}
	avg := sum / float64(count)
	if amount < avg*2.5 {
		return false, nil
	}
	if threshold > 0 && amount >= threshold {
		return false, nil
	}
	today := at.Format(dayStamp)
	lastAlert, err := x.store.GetString(keyLastBigAlert, "")
	if err != nil {
		return false, err
	}
	if lastAlert == today {
		return false, nil
	}
	if err := x.store.SetString(keyLastBigAlert, today); err != nil {
		return false, err
	}
	x.log.Info().Float64("amount", amount).Float64("avg", avg).Msg("big spend flagged")
	return true, nil
}

// onDailyReset is the rollover hook: streak and savings bookkeeping for the
// day that just ended, plus the limit-suggestion accumulators.
func (x *Insights) onDailyReset(yesterdaySpend, yesterdayLimit float64) error {
	if yesterdaySpend <= yesterdayLimit {
		streak, err := x.store.GetInt(keyStreak, 0)
		if err != nil {
			return err
		}
		if err := x.store.SetInt(keyStreak, streak+1); err != nil {
			return err
		}
		// Savings only count when the day ended comfortably under limit.
		if yesterdaySpend <= yesterdayLimit*0.9 {
			saved, err := x.store.GetFloat(keyWeeklySaved, 0)
			if err != nil {
				return err
			}
			if err := x.store.SetFloat(keyWeeklySaved, saved+(yesterdayLimit-yesterdaySpend)); err != nil {
				return err
			}
		}
	} else if err := x.store.SetInt(keyStreak, 0); err != nil {
		return err
	}

	validDays, err := x.store.GetInt(keyValidDays, 0)
	if err != nil {
		return err
	}
	total, err := x.store.GetFloat(keyLimitCalcSum, 0)
	if err != nil {
		return err
	}
	if err := x.store.SetInt(keyValidDays, validDays+1); err != nil {
		return err
	}
	return x.store.SetFloat(keyLimitCalcSum, total+yesterdaySpend)
}

// message picks the single highest-priority insight for the current state:
// alert mood, weekend warning, smart-limit suggestion, streak, caution
// mood, savings, good mood.
func (x *Insights) message(todaySpend, limit float64, at time.Time) (Message, error) {
	ratio := 0.0
	if limit > 0 {
		ratio = todaySpend / limit
	}

	if ratio > 0.9 {
		return Message{Text: pickMood(alertMoods, at), Tier: TierAlert}, nil
	}

	warn, err := x.weekendWarning(at)
	if err != nil {
		return Message{}, err
	}
	if warn != "" {
		return Message{Text: warn, Tier: TierCaution}, nil
	}

	suggestion, err := x.smartLimitSuggestion(limit)
	if err != nil {
		return Message{}, err
	}
	if suggestion != "" {
		return Message{Text: suggestion, Tier: TierInfo}, nil
	}

	streak, err := x.store.GetInt(keyStreak, 0)
	if err != nil {
		return Message{}, err
	}
	if streak >= 3 && streak <= 7 {
		return Message{Text: fmt.Sprintf("%d disciplined days in a row.", streak), Tier: TierGood}, nil
	}

	if ratio > 0.6 {
		return Message{Text: pickMood(cautionMoods, at), Tier: TierCaution}, nil
	}

	saved, err := x.store.GetFloat(keyWeeklySaved, 0)
	if err != nil {
		return Message{}, err
	}
	if saved > 100 {
		return Message{Text: fmt.Sprintf("You avoided overspending ₹%d this week.", int(saved)), Tier: TierGood}, nil
	}

	if limit <= 0 {
		return Message{Text: "Set a daily limit to see insights.", Tier: TierInfo}, nil
	}
	return Message{Text: pickMood(goodMoods, at), Tier: TierGood}, nil
}

// weekendWarning fires only on configured weekend days, with enough samples
// on both sides, when weekend spending runs at least 30% hotter.
func (x *Insights) weekendWarning(at time.Time) (string, error) {
	if !x.weekend[at.Weekday()] {
		return "", nil
	}
	weekdayCount, err := x.store.GetInt(keyWeekdayCount, 0)
	if err != nil {
		return "", err
	}
	weekendCount, err := x.store.GetInt(keyWeekendCount, 0)
	if err != nil {
		return "", err
	}
	if weekdayCount < 5 || weekendCount < 2 {
		return "", nil
	}
	weekdaySum, err := x.store.GetFloat(keyWeekdaySum, 0)
	if err != nil {
		return "", err
	}
	weekendSum, err := x.store.GetFloat(keyWeekendSum, 0)
	if err != nil {
		return "", err
	}
	weekdayAvg := weekdaySum / float64(weekdayCount)
	weekendAvg := weekendSum / float64(weekendCount)
	if weekendAvg >= weekdayAvg*1.3 {
		return pickMood(weekendWarns, at), nil
	}
	return "", nil
}

// smartLimitSuggestion proposes a new daily limit once two weeks of full
// days have accumulated and the proposal moves the limit by at least 10%.
func (x *Insights) smartLimitSuggestion(limit float64) (string, error) {
	validDays, err := x.store.GetInt(keyValidDays, 0)
	if err != nil {
		return "", err
	}
	if validDays < 14 {
		return "", nil
	}
	total, err := x.store.GetFloat(keyLimitCalcSum, 0)
	if err != nil {
		return "", err
	}
	avg := total / float64(validDays)
	suggested := float64(int(avg * 1.05)) // +5% buffer, whole currency units
	if math.Abs(suggested-limit) >= limit*0.10 {
		return fmt.Sprintf("Based on habits, ₹%d/day may suit you better.", int(suggested)), nil
	}
	return "", nil
}
