package finetract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "finetract.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBoltStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltScalars(t *testing.T) {
	s := newTestStore(t)

	t.Run("absentKeysReturnDefaults", func(t *testing.T) {
		if f, err := s.GetFloat("missing", 42); err != nil || f != 42 {
			t.Errorf("GetFloat = (%v, %v), want (42, nil)", f, err)
		}
		if n, err := s.GetInt("missing", 7); err != nil || n != 7 {
			t.Errorf("GetInt = (%v, %v), want (7, nil)", n, err)
		}
		if v, err := s.GetString("missing", "def"); err != nil || v != "def" {
			t.Errorf("GetString = (%q, %v), want (def, nil)", v, err)
		}
		if b, err := s.GetBool("missing", true); err != nil || !b {
			t.Errorf("GetBool = (%v, %v), want (true, nil)", b, err)
		}
	})

	t.Run("roundTrip", func(t *testing.T) {
		if err := s.SetFloat("f", 1250.5); err != nil {
			t.Fatalf("SetFloat failed: %v", err)
		}
		if f, _ := s.GetFloat("f", 0); f != 1250.5 {
			t.Errorf("GetFloat = %v, want 1250.5", f)
		}
		if err := s.SetInt("n", -3); err != nil {
			t.Fatalf("SetInt failed: %v", err)
		}
		if n, _ := s.GetInt("n", 0); n != -3 {
			t.Errorf("GetInt = %v, want -3", n)
		}
		if err := s.SetBool("b", true); err != nil {
			t.Fatalf("SetBool failed: %v", err)
		}
		if b, _ := s.GetBool("b", false); !b {
			t.Errorf("GetBool = false, want true")
		}
	})
}

func TestBoltStringSet(t *testing.T) {
	s := newTestStore(t)

	set, err := s.GetStringSet("processed")
	if err != nil {
		t.Fatalf("GetStringSet failed: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("fresh set has %d entries, want 0", len(set))
	}

	set["a|100|1"] = true
	set["b|200|2"] = true
	if err := s.SetStringSet("processed", set); err != nil {
		t.Fatalf("SetStringSet failed: %v", err)
	}
	got, err := s.GetStringSet("processed")
	if err != nil {
		t.Fatalf("GetStringSet failed: %v", err)
	}
	if len(got) != 2 || !got["a|100|1"] || !got["b|200|2"] {
		t.Errorf("set after round trip = %v", got)
	}

	// Writing nil clears the set.
	if err := s.SetStringSet("processed", nil); err != nil {
		t.Fatalf("SetStringSet(nil) failed: %v", err)
	}
	got, _ = s.GetStringSet("processed")
	if len(got) != 0 {
		t.Errorf("cleared set has %d entries, want 0", len(got))
	}
}

func TestBoltLogsKeepOrder(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		rec := TransactionRecord{
			Time:     base.Add(time.Duration(i) * time.Hour),
			Merchant: "Zomato",
			Amount:   float64(100 + i),
			Category: CategoryFood,
		}
		if err := s.AppendTransaction(rec); err != nil {
			t.Fatalf("AppendTransaction failed: %v", err)
		}
	}
	txns, err := s.Transactions()
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txns))
	}
	for i, txn := range txns {
		if txn.Amount != float64(100+i) {
			t.Errorf("transaction %d out of order: amount %v", i, txn.Amount)
		}
	}
}

func TestBoltSkipsUnparseableRecords(t *testing.T) {
	s := newTestStore(t)

	if err := s.AppendTransaction(TransactionRecord{
		Time: time.UnixMilli(1000), Merchant: "Zomato", Amount: 100, Category: CategoryFood,
	}); err != nil {
		t.Fatalf("AppendTransaction failed: %v", err)
	}
	if err := s.appendLog(txnBucket, "not|a|record"); err != nil {
		t.Fatalf("appendLog failed: %v", err)
	}
	if err := s.appendLog(dayBucket, "garbage"); err != nil {
		t.Fatalf("appendLog failed: %v", err)
	}
	if err := s.AppendDay(DailyRecord{Date: "2026-03-02", Spend: 10, Limit: 100}); err != nil {
		t.Fatalf("AppendDay failed: %v", err)
	}

	txns, err := s.Transactions()
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(txns) != 1 || txns[0].Merchant != "Zomato" {
		t.Errorf("Transactions = %v, want the single valid record", txns)
	}
	days, err := s.Days()
	if err != nil {
		t.Fatalf("Days failed: %v", err)
	}
	if len(days) != 1 || days[0].Date != "2026-03-02" {
		t.Errorf("Days = %v, want the single valid record", days)
	}
}

func TestRecordCodec(t *testing.T) {
	t.Run("transactionRoundTrip", func(t *testing.T) {
		in := TransactionRecord{
			Time:     time.UnixMilli(1767340800000),
			Merchant: "Cafe | Corner; Shop",
			Amount:   1250.5,
			Category: CategoryFood,
		}
		out, err := decodeTransaction(encodeTransaction(in))
		if err != nil {
			t.Fatalf("decodeTransaction failed: %v", err)
		}
		if out.Merchant != "Cafe   Corner  Shop" {
			t.Errorf("Merchant = %q, want separators sanitized to spaces", out.Merchant)
		}
		if out.Amount != in.Amount || !out.Time.Equal(in.Time) || out.Category != in.Category {
			t.Errorf("round trip changed record: %+v", out)
		}
	})

	t.Run("dayRoundTrip", func(t *testing.T) {
		in := DailyRecord{Date: "2026-03-02", Spend: 430, Limit: 5000}
		out, err := decodeDay(encodeDay(in))
		if err != nil {
			t.Fatalf("decodeDay failed: %v", err)
		}
		if out != in {
			t.Errorf("round trip = %+v, want %+v", out, in)
		}
	})

	t.Run("badRecords", func(t *testing.T) {
		for _, s := range []string{"", "a|b", "x|Zomato|100|Food", "123|Zomato|abc|Food"} {
			if _, err := decodeTransaction(s); err == nil {
				t.Errorf("decodeTransaction(%q) succeeded, want error", s)
			}
		}
		for _, s := range []string{"", "2026-03-02|10", "02-03-2026|10|100", "2026-03-02|x|100"} {
			if _, err := decodeDay(s); err == nil {
				t.Errorf("decodeDay(%q) succeeded, want error", s)
			}
		}
	})
}
