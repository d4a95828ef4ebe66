package finetract

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// april15 makes March 2026 the graded month.
var april15 = time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

func marchDays(disciplined, total int) []DailyRecord {
	days := make([]DailyRecord, 0, total)
	for i := 0; i < total; i++ {
		spend := 100.0
		if i >= disciplined {
			spend = 900
		}
		days = append(days, DailyRecord{
			Date:  fmt.Sprintf("2026-03-%02d", i+1),
			Spend: spend,
			Limit: 500,
		})
	}
	return days
}

func marchTxn(amount float64, cat Category) TransactionRecord {
	return TransactionRecord{
		Time:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Merchant: "Test",
		Amount:   amount,
		Category: cat,
	}
}

func TestReportCardGrades(t *testing.T) {
	cases := []struct {
		disciplined, total int
		want               string
	}{
		{8, 10, "A"},
		{10, 10, "A"},
		{6, 10, "B"},
		{4, 10, "C"},
		{3, 10, "D"},
		{0, 10, "D"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%dOf%d", tc.disciplined, tc.total), func(t *testing.T) {
			card, ok := GenerateReportCard(marchDays(tc.disciplined, tc.total), nil, april15)
			if !ok {
				t.Fatalf("no card generated")
			}
			if card.Grade != tc.want {
				t.Errorf("Grade = %s, want %s", card.Grade, tc.want)
			}
			if card.DisciplinedDays != tc.disciplined || card.TotalDays != tc.total {
				t.Errorf("days = %d/%d, want %d/%d",
					card.DisciplinedDays, card.TotalDays, tc.disciplined, tc.total)
			}
			if card.Remark == "" {
				t.Errorf("Remark is empty")
			}
		})
	}
}

func TestReportCardNoData(t *testing.T) {
	t.Run("emptyHistory", func(t *testing.T) {
		if _, ok := GenerateReportCard(nil, nil, april15); ok {
			t.Errorf("card generated from empty history")
		}
	})
	t.Run("otherMonthsOnly", func(t *testing.T) {
		history := []DailyRecord{
			{Date: "2026-02-10", Spend: 100, Limit: 500},
			{Date: "2026-04-01", Spend: 100, Limit: 500},
		}
		if _, ok := GenerateReportCard(history, nil, april15); ok {
			t.Errorf("card generated without days in the graded month")
		}
	})
	t.Run("unparseableDatesSkipped", func(t *testing.T) {
		history := append(marchDays(5, 5), DailyRecord{Date: "bad-date", Spend: 1, Limit: 1})
		card, ok := GenerateReportCard(history, nil, april15)
		if !ok {
			t.Fatalf("no card generated")
		}
		if card.TotalDays != 5 {
			t.Errorf("TotalDays = %d, want 5", card.TotalDays)
		}
	})
}

func TestReportCardSubjects(t *testing.T) {
	t.Run("concentrationAboveThreshold", func(t *testing.T) {
		// Food at 41% of the month: flagged.
		txns := []TransactionRecord{
			marchTxn(410, CategoryFood),
			marchTxn(590, CategoryOther),
		}
		card, ok := GenerateReportCard(marchDays(10, 10), txns, april15)
		if !ok {
			t.Fatalf("no card generated")
		}
		if card.Subjects[CategoryFood] != StatusNeedsAttention {
			t.Errorf("Food = %q, want %q", card.Subjects[CategoryFood], StatusNeedsAttention)
		}
		if card.Subjects[CategoryOther] != StatusGood {
			t.Errorf("Other = %q, want %q", card.Subjects[CategoryOther], StatusGood)
		}
	})

	t.Run("concentrationAtThreshold", func(t *testing.T) {
		// Exactly 40% is not over the line.
		txns := []TransactionRecord{
			marchTxn(400, CategoryFood),
			marchTxn(600, CategoryOther),
		}
		card, _ := GenerateReportCard(marchDays(10, 10), txns, april15)
		if card.Subjects[CategoryFood] != StatusGood {
			t.Errorf("Food at exactly 40%% = %q, want %q", card.Subjects[CategoryFood], StatusGood)
		}
	})

	t.Run("noSpendMeansNoData", func(t *testing.T) {
		txns := []TransactionRecord{marchTxn(100, CategoryFood)}
		card, _ := GenerateReportCard(marchDays(10, 10), txns, april15)
		if card.Subjects[CategoryShopping] != StatusNoData {
			t.Errorf("Shopping = %q, want %q", card.Subjects[CategoryShopping], StatusNoData)
		}
	})

	t.Run("otherMonthTxnsIgnored", func(t *testing.T) {
		feb := TransactionRecord{
			Time: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC), Amount: 9000, Category: CategoryFood,
		}
		txns := []TransactionRecord{feb, marchTxn(100, CategoryOther)}
		card, _ := GenerateReportCard(marchDays(10, 10), txns, april15)
		if card.Subjects[CategoryFood] != StatusNoData {
			t.Errorf("Food = %q, want %q (February spend must not count)", card.Subjects[CategoryFood], StatusNoData)
		}
	})
}

func TestReportCardTips(t *testing.T) {
	t.Run("foodTipWinsOverEntertainment", func(t *testing.T) {
		txns := []TransactionRecord{
			marchTxn(500, CategoryFood),          // 50%
			marchTxn(300, CategoryEntertainment), // 30%
			marchTxn(200, CategoryOther),
		}
		card, _ := GenerateReportCard(marchDays(10, 10), txns, april15)
		if !strings.Contains(card.Tip, "Food") {
			t.Errorf("Tip = %q, want the food tip", card.Tip)
		}
	})

	t.Run("gradeATipWhenNothingFlagged", func(t *testing.T) {
		txns := []TransactionRecord{marchTxn(100, CategoryOther)}
		card, _ := GenerateReportCard(marchDays(10, 10), txns, april15)
		if !strings.Contains(card.Tip, "surplus") {
			t.Errorf("Tip = %q, want the grade-A surplus tip", card.Tip)
		}
	})

	t.Run("genericFallback", func(t *testing.T) {
		txns := []TransactionRecord{marchTxn(100, CategoryOther)}
		card, _ := GenerateReportCard(marchDays(2, 10), txns, april15)
		if !strings.Contains(card.Tip, "cash") {
			t.Errorf("Tip = %q, want the generic tip", card.Tip)
		}
	})
}
