package finetract

import (
	"time"
)

// SubjectStatus is a per-category verdict on the month's report card.
type SubjectStatus string

const (
	StatusGood           SubjectStatus = "Good"
	StatusNeedsAttention SubjectStatus = "Needs Attention"
	StatusNoData         SubjectStatus = "-"
)

// reportSubjects are the categories graded on the report card, with the
// concentration above which each one is flagged. A zero threshold means the
// subject is always "Good" when it has data.
var reportSubjects = []struct {
	cat       Category
	threshold float64
}{
	{CategoryFood, 0.4},
	{CategoryTravel, 0},
	{CategoryEntertainment, 0.2},
	{CategoryShopping, 0.3},
	{CategoryEducation, 0},
	{CategoryOther, 0},
}

// ReportCard summarizes the previous calendar month. Derived on demand,
// never persisted.
type ReportCard struct {
	Grade           string
	DisciplinedDays int
	TotalDays       int
	Subjects        map[Category]SubjectStatus
	Remark          string
	Tip             string
}

// GenerateReportCard grades the calendar month before now from the archived
// daily records and the transaction log. Returns false when the month has
// no daily records: no data is not an error.
func GenerateReportCard(history []DailyRecord, txns []TransactionRecord, now time.Time) (*ReportCard, bool) {
	target := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)

	var monthDays []DailyRecord
	for _, d := range history {
		day, err := time.Parse(dayStamp, d.Date)
		if err != nil {
			continue
		}
		if day.Year() == target.Year() && day.Month() == target.Month() {
			monthDays = append(monthDays, d)
		}
	}
	if len(monthDays) == 0 {
		return nil, false
	}

	totalDays := len(monthDays)
	disciplined := 0
	for _, d := range monthDays {
		if d.Spend <= d.Limit {
			disciplined++
		}
	}
	ratio := float64(disciplined) / float64(totalDays)
	grade := "D"
	switch {
	case ratio >= 0.8:
		grade = "A"
	case ratio >= 0.6:
		grade = "B"
	case ratio >= 0.4:
		grade = "C"
	}

	categorySpend := make(map[Category]float64)
	var monthTotal float64
	for _, t := range txns {
		if t.Time.Year() != target.Year() || t.Time.Month() != target.Month() {
			continue
		}
		categorySpend[t.Category] += t.Amount
		monthTotal += t.Amount
	}

	subjects := make(map[Category]SubjectStatus, len(reportSubjects))
	for _, s := range reportSubjects {
		spend := categorySpend[s.cat]
		if spend == 0 {
			subjects[s.cat] = StatusNoData
			continue
		}
		concentration := 0.0
		if monthTotal > 0 {
			concentration = spend / monthTotal
		}
		if s.threshold > 0 && concentration > s.threshold {
			subjects[s.cat] = StatusNeedsAttention
		} else {
			subjects[s.cat] = StatusGood
		}
	}

	return &ReportCard{
		Grade:           grade,
		DisciplinedDays: disciplined,
		TotalDays:       totalDays,
		Subjects:        subjects,
		Remark:          remarkForGrade(grade),
		Tip:             tipFor(subjects, grade),
	}, true
}

func remarkForGrade(grade string) string {
	switch grade {
	case "A":
		return "Excellent discipline! You are mastering your finances."
	case "B":
		return "Good work, but watch out for those few slip-ups."
	case "C":
		return "Spending was irregular. Try creating a daily routine."
	default:
		return "Action needed. Small daily savings will help you recover."
	}
}

// tipFor picks one improvement tip: flagged subjects in a fixed priority
// order, then the grade-A surplus tip, then a generic fallback.
func tipFor(subjects map[Category]SubjectStatus, grade string) string {
	switch {
	case subjects[CategoryFood] == StatusNeedsAttention:
		return "Food is your biggest expense. Try a weekly cap."
	case subjects[CategoryEntertainment] == StatusNeedsAttention:
		return "Entertainment costs add up fast. Limit movie nights."
	case subjects[CategoryShopping] == StatusNeedsAttention:
		return "Impulse buying detected. Wait 24h before buying."
	case grade == "A":
		return "You're doing great. Consider saving the surplus!"
	default:
		return "Try dealing specifically in cash for one week."
	}
}
