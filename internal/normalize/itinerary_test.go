package normalize

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

const plansJSON = `[
  {
    "trip_details": {"trip_name": "Pink City Escape", "itinerary_name": "Jaipur Heritage", "duration_days": 3, "destination": "Jaipur"},
    "hotel": {"name": "Rambagh Palace", "lat": 26.89, "lng": 75.80, "rating": 4.7},
    "optimized_routes": {
      "Day 10": {"optimized_order": [{"spot_name": "Albert Hall", "lat": 26.91, "long": 75.81}], "polyline": "abc"},
      "Day 2":  {"optimized_order": [{"spot_name": "Hawa Mahal", "lat": 26.92, "long": 75.82}]},
      "Day 1":  {"optimized_order": [{"spot_name": "Amber Fort", "lat": 26.98, "long": 75.85, "estimated_time_spent": "3 hours", "weather": "Sunny"}]}
    }
  },
  {
    "trip_details": {"itinerary_name": "No Routes"}
  },
  {
    "trip_details": {"destination": "Udaipur"},
    "optimized_routes": {
      "Day 1": {"optimized_order": []},
      "Day 2": {"optimized_order": [{"spot_name": "City Palace"}]}
    }
  },
  {
    "optimized_routes": {"Day 1": {"optimized_order": [{"spot_name": "Somewhere"}]}}
  }
]`

func TestItineraries_DropsPlansWithoutRoutes(t *testing.T) {
	res := Itineraries(json.RawMessage(plansJSON))

	if res.Empty() {
		t.Fatalf("expected itineraries, got empty with summary %q", res.Summary)
	}
	var titles []string
	for _, it := range res.Set.Itineraries {
		titles = append(titles, it.Title)
	}
	want := []string{"Jaipur Heritage", "Plan 2: Udaipur", "Plan 3: Trip"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}
	if res.Summary != "📋 Here are 3 itinerary options for you:" {
		t.Errorf("unexpected summary %q", res.Summary)
	}
}

func TestItineraries_EmptyRoutesObjectIsKept(t *testing.T) {
	raw := `[
	  {"trip_details": {"itinerary_name": "Null Routes"}, "optimized_routes": null},
	  {"trip_details": {"itinerary_name": "Empty Routes"}, "optimized_routes": {}}
	]`
	res := Itineraries(json.RawMessage(raw))

	if res.Empty() || len(res.Set.Itineraries) != 1 {
		t.Fatalf("expected one itinerary, got %+v (summary %q)", res.Set.Itineraries, res.Summary)
	}
	it := res.Set.Itineraries[0]
	if it.Title != "Empty Routes" || len(it.Days) != 0 {
		t.Errorf("unexpected itinerary %+v", it)
	}
}

func TestItineraries_FieldsAndOrdering(t *testing.T) {
	res := Itineraries(json.RawMessage(plansJSON))
	it := res.Set.Itineraries[0]

	if it.DurationDays != 3 || it.Duration != "3 Days" {
		t.Errorf("expected explicit 3 days, got %d %q", it.DurationDays, it.Duration)
	}
	if it.Budget != "Custom" {
		t.Errorf("expected Custom budget, got %q", it.Budget)
	}
	if it.ShortDescription != "Pink City Escape" {
		t.Errorf("unexpected short description %q", it.ShortDescription)
	}

	var labels []string
	for _, d := range it.Days {
		labels = append(labels, d.Label)
	}
	if !reflect.DeepEqual(labels, []string{"Day 1", "Day 2", "Day 10"}) {
		t.Errorf("days not in numeric order: %v", labels)
	}

	wantHighlights := []string{"Day 1: Amber Fort", "Day 2: Hawa Mahal", "Day 10: Albert Hall"}
	if !reflect.DeepEqual(it.Highlights, wantHighlights) {
		t.Errorf("highlights = %v, want %v", it.Highlights, wantHighlights)
	}

	stop := it.Days[0].Stops[0]
	if stop.Lat != 26.98 || stop.Lng != 75.85 || stop.DwellTime != "3 hours" || stop.Weather != "Sunny" {
		t.Errorf("unexpected stop %+v", stop)
	}
	if it.Hotel == nil || it.Hotel.Name != "Rambagh Palace" {
		t.Errorf("expected hotel, got %+v", it.Hotel)
	}
	if it.Days[2].Polyline != "abc" {
		t.Errorf("expected polyline kept, got %q", it.Days[2].Polyline)
	}
}

func TestItineraries_DurationFallsBackToDayCount(t *testing.T) {
	res := Itineraries(json.RawMessage(plansJSON))
	it := res.Set.Itineraries[1]

	if it.DurationDays != 2 {
		t.Errorf("expected 2 days from day keys, got %d", it.DurationDays)
	}
	if it.ShortDescription != "Generated Custom Trip Plan" {
		t.Errorf("unexpected short description %q", it.ShortDescription)
	}
	if !reflect.DeepEqual(it.Highlights, []string{"Day 1", "Day 2: City Palace"}) {
		t.Errorf("unexpected highlights %v", it.Highlights)
	}
}

func TestItineraries_HighlightsCappedAtFour(t *testing.T) {
	raw := `[{"optimized_routes": {
		"Day 6": {"optimized_order": [{"spot_name": "F"}]},
		"Day 5": {"optimized_order": [{"spot_name": "E"}]},
		"Day 4": {"optimized_order": [{"spot_name": "D"}]},
		"Day 3": {"optimized_order": [{"spot_name": "C"}]},
		"Day 2": {"optimized_order": [{"spot_name": "B"}]},
		"Day 1": {"optimized_order": [{"spot_name": "A"}]}
	}}]`
	res := Itineraries(json.RawMessage(raw))

	want := []string{"Day 1: A", "Day 2: B", "Day 3: C", "Day 4: D"}
	if got := res.Set.Itineraries[0].Highlights; !reflect.DeepEqual(got, want) {
		t.Errorf("highlights = %v, want %v", got, want)
	}
	if res.Set.Itineraries[0].DurationDays != 6 {
		t.Errorf("expected 6 days, got %d", res.Set.Itineraries[0].DurationDays)
	}
}

func TestItineraries_UnparsableDayLabelsSortLast(t *testing.T) {
	raw := `[{"optimized_routes": {
		"Arrival": {"optimized_order": [{"spot_name": "Airport"}]},
		"Day 2": {"optimized_order": [{"spot_name": "B"}]},
		"Day 1": {"optimized_order": [{"spot_name": "A"}]}
	}}]`
	res := Itineraries(json.RawMessage(raw))

	var labels []string
	for _, d := range res.Set.Itineraries[0].Days {
		labels = append(labels, d.Label)
	}
	if !reflect.DeepEqual(labels, []string{"Day 1", "Day 2", "Arrival"}) {
		t.Errorf("unexpected order %v", labels)
	}
}

func TestItineraries_Degrades(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing", ``},
		{"null", `null`},
		{"not a list", `{"plans": 1}`},
		{"garbage", `{{{`},
		{"all dropped", `[{"trip_details": {"itinerary_name": "x"}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Itineraries(json.RawMessage(tt.raw))
			if !res.Empty() {
				t.Errorf("expected empty set, got %d", res.Set.Len())
			}
			if !strings.HasPrefix(res.Summary, "Sorry") {
				t.Errorf("expected explanatory summary, got %q", res.Summary)
			}
		})
	}
}

func TestParseDayLabel(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"Day 1", 1},
		{"Day 12", 12},
		{" Day 3 ", 3},
		{"7", 7},
		{"Day One", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseDayLabel(tt.label); got != tt.want {
			t.Errorf("parseDayLabel(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}
