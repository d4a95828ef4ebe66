package finetract

import "testing"

func TestParseBankSMS(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantOK   bool
		wantKind BankSMSKind
		wantAmt  float64
		wantWho  string
	}{
		{
			"debitWithCounterparty",
			"Dear UPI user A/C X1234 debited by 35.0 trf to Sharma Tea Stall on 02Mar26 Refno 123456.",
			true, BankSMSDebit, 35, "Sharma Tea Stall",
		},
		{
			"debitRsPrefix",
			"A/c XX9876 debited by Rs.1,500 trf to Landlord on 01Mar26.",
			true, BankSMSDebit, 1500, "Landlord",
		},
		{
			"debitNoCounterparty",
			"A/c XX9876 debited by Rs.250 Refno 99.",
			true, BankSMSDebit, 250, "Unknown",
		},
		{
			"credit",
			"A/c XX9876 credited by Rs.5,000 transfer from Employer on 01Mar26.",
			true, BankSMSCredit, 5000, "Employer",
		},
		{
			"request",
			"You have requested Rs.300 requested by Rahul on 02Mar26.",
			true, BankSMSRequest, 300, "Rahul",
		},
		{
			"requestNoRequester",
			"Collect request: requested Rs.300 via UPI app.",
			true, BankSMSRequest, 300, "External Request",
		},
		{
			"notATransaction",
			"Your OTP for login is 482913. Do not share it.",
			false, 0, 0, "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sms, ok := ParseBankSMS(tc.body)
			if ok != tc.wantOK {
				t.Fatalf("ParseBankSMS ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if sms.Kind != tc.wantKind {
				t.Errorf("Kind = %v, want %v", sms.Kind, tc.wantKind)
			}
			if sms.Amount != tc.wantAmt {
				t.Errorf("Amount = %v, want %v", sms.Amount, tc.wantAmt)
			}
			if sms.Counterparty != tc.wantWho {
				t.Errorf("Counterparty = %q, want %q", sms.Counterparty, tc.wantWho)
			}
		})
	}
}

func TestParseLooseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"35.0", 35},
		{"1,500", 1500},
		{"250.", 250},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := parseLooseAmount(tc.in); got != tc.want {
			t.Errorf("parseLooseAmount(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
