package dates

import (
	"testing"
	"time"
)

func TestDayTruncatesToUTC(t *testing.T) {
	loc := time.FixedZone("X", 5*3600)
	in := time.Date(2024, 3, 10, 2, 30, 0, 0, loc)
	got := Day(in)
	if got.Format(Layout) != "2024-03-09" {
		t.Fatalf("expected UTC day 2024-03-09, got %s", got.Format(Layout))
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	cases := map[string]string{
		"2024-06-03": "2024-06-03", // Monday
		"2024-06-05": "2024-06-03",
		"2024-06-09": "2024-06-03", // Sunday
	}
	for in, want := range cases {
		d, _ := Parse(in)
		if got := Format(WeekStart(d)); got != want {
			t.Fatalf("WeekStart(%s)=%s want %s", in, got, want)
		}
	}
}

func TestParseOptionalAndDaysBetween(t *testing.T) {
	p, err := ParseOptional("")
	if err != nil || p != nil {
		t.Fatalf("expected nil for empty input")
	}
	if _, err := Parse("03/10/2024"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
	a, _ := Parse("2024-01-01")
	b, _ := Parse("2024-03-01")
	if n := DaysBetween(a, b); n != 60 {
		t.Fatalf("expected 60 days, got %d", n)
	}
	if m := MonthStart(b.AddDate(0, 0, 14)); Format(m) != "2024-03-01" {
		t.Fatalf("unexpected month start %s", Format(m))
	}
}
