package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in, out string
		ok      bool
	}{
		{"2024-03-05", "2024-03-05", true},
		{" 2024-03-05 ", "2024-03-05", true},
		{"2024-3-5", "2024-03-05", true},
		{"2024-03-05T23:30:00.000Z", "2024-03-05", true},
		{"2024-02-30", "", false},
		{"05/03/2024", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeDate(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("NormalizeDate(%q) = %q, %v; want %q", tc.in, got, err, tc.out)
		}
		if !tc.ok && err == nil {
			t.Fatalf("NormalizeDate(%q) expected error, got %q", tc.in, got)
		}
	}
	if _, err := NormalizeDate(""); !errors.Is(err, ErrEmptyDate) {
		t.Fatalf("expected ErrEmptyDate, got %v", err)
	}
}

func TestPrayersJSON(t *testing.T) {
	var r DailyRecord
	body := `{"date":"2024-03-05","salat":{"fajr":true,"ISHA":true,"witr":true},"quran":12,"expense":"45.50"}`
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !r.Prayers[Fajr] || !r.Prayers[Isha] || r.Prayers[Dhuhr] {
		t.Fatalf("unexpected prayers %v", r.Prayers)
	}
	if r.Prayers.Count() != 2 {
		t.Fatalf("count = %d, want 2", r.Prayers.Count())
	}
	if r.ScripturePages != "12" || r.Expense != "45.50" {
		t.Fatalf("numbers = %q, %q", r.ScripturePages, r.Expense)
	}

	out, err := json.Marshal(r.Prayers)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"fajr":true,"dhuhr":false,"asr":false,"maghrib":false,"isha":true}`
	if string(out) != want {
		t.Fatalf("marshal = %s, want %s", out, want)
	}
}

func TestPrayersCompleted(t *testing.T) {
	p := Prayers{}
	p[Isha] = true
	p[Asr] = true
	got := p.Completed()
	if len(got) != 2 || got[0] != Asr || got[1] != Isha {
		t.Fatalf("Completed() = %v", got)
	}
	if Maghrib.String() != "maghrib" || Prayer(9).String() != "prayer(9)" {
		t.Fatalf("unexpected names")
	}
}

func TestDailyRecordValidate(t *testing.T) {
	if err := (DailyRecord{Date: "2024-03-05", Expense: "junk"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (DailyRecord{}).Validate(); err == nil {
		t.Fatalf("expected error for empty date")
	}
	if got := (DailyRecord{Date: "2024-03-05"}).Month(); got != "2024-03" {
		t.Fatalf("Month() = %q", got)
	}
}
