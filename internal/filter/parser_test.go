package filter

import (
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		wantFrom string
		wantTo   string
		wantErr  bool
	}{
		{"Mar 1-15", "2026-03-01", "2026-03-15", false},
		{"march 1 - 15", "2026-03-01", "2026-03-15", false},
		{"Feb 27-28", "2026-02-27", "2026-02-28", false},
		{"Jan 5-10", "2027-01-05", "2027-01-10", false},
		{"Dec 20 - Jan 5", "2026-12-20", "2027-01-05", false},
		{"Sept 3", "2026-09-03", "2026-09-03", false},
		{"February", "2026-02-01", "2026-02-28", false},
		{"Mar 15-1", "", "", true},
		{"Feb 30", "", "", true},
		{"next week", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			from, to, err := ParseDateRange(tt.input, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v - %v", from, to)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := from.Format("2006-01-02"); got != tt.wantFrom {
				t.Errorf("from = %s, want %s", got, tt.wantFrom)
			}
			if got := to.Format("2006-01-02"); got != tt.wantTo {
				t.Errorf("to = %s, want %s", got, tt.wantTo)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	for in, want := range map[string]time.Month{
		"jan": time.January, "JANUARY": time.January, "sept": time.September, "May": time.May, "smarch": 0,
	} {
		if got := parseMonth(in); got != want {
			t.Errorf("parseMonth(%q) = %v, want %v", in, got, want)
		}
	}
}
