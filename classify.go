package finetract

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Rejection reasons. Classification failure is an expected outcome: callers
// log and discard, never retry.
var (
	ErrUnknownSource   = errors.New("channel not on the recognized-source allowlist")
	ErrNotCompleted    = errors.New("not a completed payment")
	ErrNotATransaction = errors.New("no transaction keyword found")
	ErrNoAmount        = errors.New("no amount found")
)

// Amount with a currency prefix: ₹ 100, Rs. 100, INR 1,250.50.
var amountPattern = regexp.MustCompile(`(?i)(?:₹|INR|Rs\.?)\s*([\d,]+(?:\.\d{1,2})?)`)

var positiveKeywords = []string{"paid", "sent", "transfer", "debited", "successful", "completed"}

// "credite" is a literal substring so it also catches "credited": incoming
// money must never be counted as an expense.
var negativeKeywords = []string{"failed", "declined", "pending", "request", "reversed", "refund", "credite"}

// Candidate is a structured transaction proposal produced by the classifier
// and not yet admitted to the ledger.
type Candidate struct {
	ChannelID string
	Merchant  string
	Category  Category
	Amount    float64
	Time      time.Time
}

type categoryRule struct {
	cat Category
	re  *regexp.Regexp
}

// Classifier turns raw notification or SMS text into a Candidate, or
// rejects it with a reason.
type Classifier struct {
	channels   []string
	smsSenders []string
	rules      []categoryRule
	log        zerolog.Logger
}

// NewClassifier compiles the user category rules and builds the allowlist
// matcher from cfg.
func NewClassifier(cfg Config, log zerolog.Logger) (*Classifier, error) {
	c := &Classifier{
		channels:   cfg.Channels,
		smsSenders: cfg.SMSSenders,
		log:        log,
	}
	for cat, patterns := range cfg.Rules {
		for _, pat := range patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, errors.Wrapf(err, "bad category rule for %q: %q", cat, pat)
			}
			c.rules = append(c.rules, categoryRule{cat: Category(cat), re: re})
		}
	}
	return c, nil
}

// Classify validates the source channel, filters by keyword, and extracts
// amount, category and merchant. at is the event timestamp supplied by the
// delivery channel.
func (c *Classifier) Classify(channelID, title, body string, at time.Time) (Candidate, error) {
	if !c.allowed(channelID) {
		return Candidate{}, ErrUnknownSource
	}

	raw := strings.TrimSpace(title + " " + body)
	lower := strings.ToLower(raw)

	// Failure keywords first: a declined payment often still contains
	// "paid" somewhere in the text.
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			return Candidate{}, ErrNotCompleted
		}
	}
	var positive bool
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			positive = true
			break
		}
	}
	if !positive {
		return Candidate{}, ErrNotATransaction
	}

	m := amountPattern.FindStringSubmatch(raw)
	if m == nil {
		return Candidate{}, ErrNoAmount
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || amount <= 0 {
		return Candidate{}, ErrNoAmount
	}

	return Candidate{
		ChannelID: channelID,
		Merchant:  c.merchant(channelID, title, body),
		Category:  c.categorize(raw, lower),
		Amount:    amount,
		Time:      at,
	}, nil
}

func (c *Classifier) allowed(channelID string) bool {
	for _, ch := range c.channels {
		if ch == channelID {
			return true
		}
	}
	return c.isSMSSender(channelID)
}

func (c *Classifier) isSMSSender(channelID string) bool {
	for _, pat := range c.smsSenders {
		if ok, err := path.Match(pat, channelID); err == nil && ok {
			return true
		}
	}
	return false
}

// categorize applies user regex rules first, then the built-in keyword
// table. Rules match against the raw (original-case) text.
func (c *Classifier) categorize(raw, lower string) Category {
	for _, r := range c.rules {
		if r.re.MatchString(raw) {
			return r.cat
		}
	}
	return categorize(lower)
}

// merchant derives a display name: bank-SMS counterparty when the channel
// is an SMS sender, then the known-brand table, then the channel title.
func (c *Classifier) merchant(channelID, title, body string) string {
	if c.isSMSSender(channelID) {
		if sms, ok := ParseBankSMS(body); ok && sms.Counterparty != "" {
			return sms.Counterparty
		}
	}
	if b := brandName(title + " " + body); b != "" {
		return b
	}
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return "Unknown"
}

// IsReject reports whether err is an expected pipeline rejection rather
// than a storage or configuration failure.
func IsReject(err error) bool {
	switch errors.Cause(err) {
	case ErrUnknownSource, ErrNotCompleted, ErrNotATransaction, ErrNoAmount,
		ErrDuplicate, ErrNearDuplicate, ErrStaleEvent:
		return true
	}
	return false
}
