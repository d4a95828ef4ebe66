package finetract

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const dayStamp = "2006-01-02"

// TransactionRecord is one appended expense. Immutable once in the log.
// There is no stored primary key: duplicate suppression works off the
// derived event key, not the record.
type TransactionRecord struct {
	Time     time.Time
	Merchant string
	Amount   float64
	Category Category
}

// DailyRecord archives one elapsed calendar day at rollover.
type DailyRecord struct {
	Date  string // dayStamp format
	Spend float64
	Limit float64
}

// Store is the persistence contract the core needs: atomic scalar get/set
// plus append-only access to the two ordered record logs. Defaults are
// returned for absent keys. Implementations must make each call atomic;
// the Ledger serializes read-modify-write sequences itself.
type Store interface {
	GetFloat(key string, def float64) (float64, error)
	SetFloat(key string, val float64) error
	GetInt(key string, def int) (int, error)
	SetInt(key string, val int) error
	GetString(key, def string) (string, error)
	SetString(key, val string) error
	GetBool(key string, def bool) (bool, error)
	SetBool(key string, val bool) error
	GetStringSet(key string) (map[string]bool, error)
	SetStringSet(key string, set map[string]bool) error

	AppendTransaction(rec TransactionRecord) error
	Transactions() ([]TransactionRecord, error)
	AppendDay(rec DailyRecord) error
	Days() ([]DailyRecord, error)
}

// Log records use a versioned pipe-delimited text encoding carried over
// from existing installs. Readers skip records they cannot parse so a
// format change never poisons the whole log.
const fieldSep = "|"

func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, fieldSep, " ")
	return strings.ReplaceAll(s, ";", " ")
}

func formatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

func encodeTransaction(t TransactionRecord) string {
	return strings.Join([]string{
		strconv.FormatInt(t.Time.UnixMilli(), 10),
		sanitizeField(t.Merchant),
		formatAmount(t.Amount),
		sanitizeField(string(t.Category)),
	}, fieldSep)
}

func decodeTransaction(s string) (TransactionRecord, error) {
	parts := strings.Split(s, fieldSep)
	if len(parts) != 4 {
		return TransactionRecord{}, errors.Errorf("transaction record has %d fields, want 4: %q", len(parts), s)
	}
	ms, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return TransactionRecord{}, errors.Wrapf(err, "bad timestamp in record %q", s)
	}
	amount, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return TransactionRecord{}, errors.Wrapf(err, "bad amount in record %q", s)
	}
	return TransactionRecord{
		Time:     time.UnixMilli(ms),
		Merchant: parts[1],
		Amount:   amount,
		Category: Category(parts[3]),
	}, nil
}

func encodeDay(d DailyRecord) string {
	return strings.Join([]string{
		d.Date,
		formatAmount(d.Spend),
		formatAmount(d.Limit),
	}, fieldSep)
}

func decodeDay(s string) (DailyRecord, error) {
	parts := strings.Split(s, fieldSep)
	if len(parts) != 3 {
		return DailyRecord{}, errors.Errorf("daily record has %d fields, want 3: %q", len(parts), s)
	}
	if _, err := time.Parse(dayStamp, parts[0]); err != nil {
		return DailyRecord{}, errors.Wrapf(err, "bad date in record %q", s)
	}
	spend, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return DailyRecord{}, errors.Wrapf(err, "bad spend in record %q", s)
	}
	limit, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return DailyRecord{}, errors.Wrapf(err, "bad limit in record %q", s)
	}
	return DailyRecord{Date: parts[0], Spend: spend, Limit: limit}, nil
}
