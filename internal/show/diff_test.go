package show

import "testing"

func TestKey(t *testing.T) {
	a := Record{Venue: "Gotham Comedy Club", ShowDate: "2026-02-27", ShowTime: "8:00 PM", Title: "Gotham All Stars", Price: "$20"}
	b := a
	b.Price = "$25"
	b.TicketLink = "https://gothamcomedyclub.com/event/1"

	if Key(a) != Key(b) {
		t.Error("Key should ignore price and link")
	}
	if len(Key(a)) != 40 {
		t.Errorf("expected key length of 40, got %d", len(Key(a)))
	}

	c := a
	c.ShowTime = "10:30 PM"
	if Key(a) == Key(c) {
		t.Error("Key should distinguish show times")
	}
}

func TestDiff(t *testing.T) {
	early := Record{Venue: "Comedy Cellar", ShowDate: "2026-02-27", ShowTime: "7:00 PM", Title: "Comedy Cellar Show"}
	late := Record{Venue: "Comedy Cellar", ShowDate: "2026-02-27", ShowTime: "9:30 PM", Title: "Comedy Cellar Show"}
	gotham := Record{Venue: "Gotham Comedy Club", ShowDate: "2026-02-28", ShowTime: "8:00 PM", Title: "Headliner Showcase"}
	undated := Record{Venue: "Stand Up NY", Title: "Mystery Show"}

	t.Run("finds added and removed shows", func(t *testing.T) {
		result := Diff([]Record{early, late}, []Record{undated, late, gotham})

		if len(result.Added) != 2 {
			t.Fatalf("expected 2 added shows, got %d", len(result.Added))
		}
		if result.Added[0].Title != gotham.Title {
			t.Errorf("dated shows should sort first, got %q", result.Added[0].Title)
		}
		if len(result.Removed) != 1 || result.Removed[0].ShowTime != "7:00 PM" {
			t.Errorf("unexpected removed shows: %+v", result.Removed)
		}
		if result.Venues["Gotham Comedy Club"] != 1 || result.Venues["Stand Up NY"] != 1 {
			t.Errorf("unexpected venue counts: %v", result.Venues)
		}
	})

	t.Run("handles empty previous catalog", func(t *testing.T) {
		result := Diff(nil, []Record{early, early, late})
		if len(result.Added) != 2 {
			t.Errorf("expected duplicates to count once, got %d", len(result.Added))
		}
		if len(result.Removed) != 0 {
			t.Errorf("expected nothing removed, got %d", len(result.Removed))
		}
	})
}
