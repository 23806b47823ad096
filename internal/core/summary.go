package core

import (
	"math"
	"slices"
	"strings"
	"time"
)

// RecentActivityLimit caps MonthlySummary.RecentActivity.
const RecentActivityLimit = 5

// MonthlySummary aggregates the records of one YYYY-MM month.
type MonthlySummary struct {
	Month                  string
	EntryCount             int
	TotalExpense           Money
	TotalScripturePages    int64
	AverageSleepHours      float64
	PrayerAdherencePercent float64
	PrayerCounts           [PrayerCount]int
	RecentActivity         []DailyRecord
}

// DaysInMonth returns the number of days in a YYYY-MM month, or 0 when the
// label is malformed.
func DaysInMonth(month string) int {
	t, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return 0
	}
	// day 0 of the following month is the last day of this one
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FilterMonth returns the records whose date starts with month, in input
// order. The input slice is not modified.
func FilterMonth(records []DailyRecord, month string) []DailyRecord {
	month = strings.TrimSpace(month)
	out := make([]DailyRecord, 0, len(records))
	for _, r := range records {
		if strings.HasPrefix(dateKey(r.Date), month) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize computes the statistics of the records in month. It never
// fails; a month without records yields a zero summary.
func Summarize(records []DailyRecord, month string) MonthlySummary {
	month = strings.TrimSpace(month)
	matched := FilterMonth(records, month)

	s := MonthlySummary{
		Month:          month,
		EntryCount:     len(matched),
		RecentActivity: []DailyRecord{},
	}
	if len(matched) == 0 {
		return s
	}

	var (
		sleepTotal   float64
		sleepSamples int
		marked       int
	)
	for _, r := range matched {
		s.TotalExpense = s.TotalExpense.Add(ParseAmountOrZero(r.Expense))
		s.TotalScripturePages += ParsePagesOrZero(r.ScripturePages)

		if strings.TrimSpace(r.SleepTime) != "" || strings.TrimSpace(r.RiseTime) != "" {
			sleepTotal += SleepDuration(r.SleepTime, r.RiseTime)
			sleepSamples++
		}

		for _, p := range AllPrayers {
			if r.Prayers[p] {
				s.PrayerCounts[p]++
				marked++
			}
		}
	}

	if sleepSamples > 0 {
		s.AverageSleepHours = round1(sleepTotal / float64(sleepSamples))
	}
	if days := DaysInMonth(month); days > 0 {
		s.PrayerAdherencePercent = round1(float64(marked) / float64(PrayerCount*days) * 100)
	}

	recent := slices.Clone(matched)
	slices.SortStableFunc(recent, func(a, b DailyRecord) int {
		return strings.Compare(dateKey(b.Date), dateKey(a.Date))
	})
	if len(recent) > RecentActivityLimit {
		recent = recent[:RecentActivityLimit]
	}
	s.RecentActivity = recent

	return s
}

// TotalExpenseFloat returns TotalExpense rounded to two decimals.
func (s MonthlySummary) TotalExpenseFloat() float64 {
	return math.Round(s.TotalExpense.Float()*100) / 100
}
