package http

import (
	"encoding/json"
	"net/http"

	"daytrack/internal/core"
	"daytrack/internal/log"
)

// recordView is a record plus the values the front end displays
type recordView struct {
	core.DailyRecord
	RiseDisplay  string   `json:"riseDisplay"`
	SleepDisplay string   `json:"sleepDisplay"`
	SleepHours   float64  `json:"sleepHours"`
	PrayersDone  []string `json:"prayersDone"`
}

type summaryResponse struct {
	Month                  string         `json:"month"`
	DaysInMonth            int            `json:"daysInMonth"`
	EntryCount             int            `json:"entryCount"`
	TotalExpense           float64        `json:"totalExpense"`
	TotalExpenseText       string         `json:"totalExpenseText"`
	TotalScripturePages    int64          `json:"totalScripturePages"`
	AverageSleepHours      float64        `json:"averageSleepHours"`
	PrayerAdherencePercent float64        `json:"prayerAdherencePercent"`
	PrayerCounts           map[string]int `json:"prayerCounts"`
	RecentActivity         []recordView   `json:"recentActivity"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func newRecordView(r core.DailyRecord) recordView {
	done := r.Prayers.Completed()
	names := make([]string, len(done))
	for i, p := range done {
		names[i] = p.String()
	}
	return recordView{
		DailyRecord:  r,
		RiseDisplay:  core.To12Hour(r.RiseTime),
		SleepDisplay: core.To12Hour(r.SleepTime),
		SleepHours:   core.SleepDuration(r.SleepTime, r.RiseTime),
		PrayersDone:  names,
	}
}

func newRecordViews(records []core.DailyRecord) []recordView {
	out := make([]recordView, len(records))
	for i, r := range records {
		out[i] = newRecordView(r)
	}
	return out
}

func newSummaryResponse(s core.MonthlySummary) summaryResponse {
	counts := make(map[string]int, core.PrayerCount)
	for _, p := range core.AllPrayers {
		counts[p.String()] = s.PrayerCounts[p]
	}
	return summaryResponse{
		Month:                  s.Month,
		DaysInMonth:            core.DaysInMonth(s.Month),
		EntryCount:             s.EntryCount,
		TotalExpense:           s.TotalExpenseFloat(),
		TotalExpenseText:       s.TotalExpense.String(),
		TotalScripturePages:    s.TotalScripturePages,
		AverageSleepHours:      s.AverageSleepHours,
		PrayerAdherencePercent: s.PrayerAdherencePercent,
		PrayerCounts:           counts,
		RecentActivity:         newRecordViews(s.RecentActivity),
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Encode response failed", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Message: msg})
}
