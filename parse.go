package finetract

import (
	"regexp"
	"strconv"
	"strings"
)

// BankSMSKind distinguishes the transaction shapes found in bank SMS text.
type BankSMSKind int

const (
	BankSMSDebit BankSMSKind = iota
	BankSMSCredit
	BankSMSRequest
)

// BankSMS holds the fields extractable from a bank SMS body.
type BankSMS struct {
	Kind         BankSMSKind
	Amount       float64
	Counterparty string
}

var (
	debitPattern   = regexp.MustCompile(`(?i)debited by (?:Rs\.?\s?)?([\d,.]+)`)
	creditPattern  = regexp.MustCompile(`(?i)credited by (?:Rs\.?\s?)?([\d,.]+)`)
	requestPattern = regexp.MustCompile(`(?i)requested (?:Rs\.?\s?)?([\d,.]+)`)

	trfToPattern        = regexp.MustCompile(`(?i)trf to ([\s\w]+?)(?: on|\.|$)`)
	transferFromPattern = regexp.MustCompile(`(?i)transfer from ([\s\w]+?)(?: on|\.|$)`)
	requestedByPattern  = regexp.MustCompile(`(?i)requested by ([\s\w]+?)(?: on|\.|$)`)
)

// ParseBankSMS extracts amount and counterparty from a bank SMS body.
// Returns false when the body matches none of the known shapes. The amount
// is best effort; the classifier's currency-prefixed extraction remains
// authoritative for admission.
func ParseBankSMS(body string) (BankSMS, bool) {
	if m := debitPattern.FindStringSubmatch(body); m != nil {
		return BankSMS{
			Kind:         BankSMSDebit,
			Amount:       parseLooseAmount(m[1]),
			Counterparty: matchCounterparty(trfToPattern, body, "Unknown"),
		}, true
	}
	if m := creditPattern.FindStringSubmatch(body); m != nil {
		return BankSMS{
			Kind:         BankSMSCredit,
			Amount:       parseLooseAmount(m[1]),
			Counterparty: matchCounterparty(transferFromPattern, body, "Unknown"),
		}, true
	}
	if m := requestPattern.FindStringSubmatch(body); m != nil {
		return BankSMS{
			Kind:         BankSMSRequest,
			Amount:       parseLooseAmount(m[1]),
			Counterparty: matchCounterparty(requestedByPattern, body, "External Request"),
		}, true
	}
	return BankSMS{}, false
}

func parseLooseAmount(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimRight(s, ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func matchCounterparty(re *regexp.Regexp, body, fallback string) string {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return fallback
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return fallback
	}
	return name
}
