package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"daytrack/internal/core"
	"daytrack/internal/log"
	"daytrack/internal/services"
)

type SummaryCmd struct {
	Month string `help:"Month to summarize (YYYY-MM). Defaults to the current month."`
	JSON  bool   `help:"Print the summary as JSON." name:"json"`
}

func (c *SummaryCmd) Run(app *App) error {
	month := strings.TrimSpace(c.Month)
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if core.DaysInMonth(month) == 0 {
		return fmt.Errorf("invalid month %q, use YYYY-MM", c.Month)
	}
	if err := app.requirePersistentBackend(); err != nil {
		return err
	}

	svc, err := openService(app)
	if err != nil {
		return err
	}
	defer svc.Close()

	s, err := svc.MonthSummary(cmdContext(), month)
	if err != nil {
		return err
	}
	app.Logger.WithComponent(log.ComponentCLI).Debug("Summary computed",
		log.FieldMonth, month, log.FieldEntries, s.EntryCount)

	if c.JSON {
		enc := json.NewEncoder(app.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(newSummaryJSON(s))
	}
	return printSummary(app, s)
}

type summaryJSON struct {
	Month                  string             `json:"month"`
	EntryCount             int                `json:"entryCount"`
	TotalExpense           float64            `json:"totalExpense"`
	TotalScripturePages    int64              `json:"totalScripturePages"`
	AverageSleepHours      float64            `json:"averageSleepHours"`
	PrayerAdherencePercent float64            `json:"prayerAdherencePercent"`
	PrayerCounts           map[string]int     `json:"prayerCounts"`
	RecentActivity         []core.DailyRecord `json:"recentActivity"`
}

func newSummaryJSON(s core.MonthlySummary) summaryJSON {
	counts := make(map[string]int, core.PrayerCount)
	for _, p := range core.AllPrayers {
		counts[p.String()] = s.PrayerCounts[p]
	}
	return summaryJSON{
		Month:                  s.Month,
		EntryCount:             s.EntryCount,
		TotalExpense:           s.TotalExpense.Float(),
		TotalScripturePages:    s.TotalScripturePages,
		AverageSleepHours:      s.AverageSleepHours,
		PrayerAdherencePercent: s.PrayerAdherencePercent,
		PrayerCounts:           counts,
		RecentActivity:         s.RecentActivity,
	}
}

func printSummary(app *App, s core.MonthlySummary) error {
	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Month:\t%s\n", s.Month)
	fmt.Fprintf(w, "Entries:\t%d\n", s.EntryCount)
	fmt.Fprintf(w, "Expense:\t%s\n", s.TotalExpense)
	fmt.Fprintf(w, "Quran pages:\t%d\n", s.TotalScripturePages)
	fmt.Fprintf(w, "Average sleep:\t%.1f h\n", s.AverageSleepHours)
	fmt.Fprintf(w, "Salat adherence:\t%.1f%%\n", s.PrayerAdherencePercent)
	if len(s.RecentActivity) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "DATE\tRISE\tSLEEP\tSALAT\tEXPENSE")
		for _, r := range s.RecentActivity {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
				r.Date, core.To12Hour(r.RiseTime), core.To12Hour(r.SleepTime),
				r.Prayers.Count(), core.PrayerCount, core.ParseAmountOrZero(r.Expense))
		}
	}
	return w.Flush()
}

func openService(app *App) (*services.RecordService, error) {
	store, err := app.OpenStore(cmdContext())
	if err != nil {
		return nil, err
	}
	return services.NewRecordService(store, nil, nil, app.Logger.WithComponent(log.ComponentCLI)), nil
}
