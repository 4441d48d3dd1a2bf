package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

// Accommodations passes the acomdation list through. Entries without a name
// are skipped.
func Accommodations(raw json.RawMessage) Result {
	if isBlank(raw) {
		return emptyResult(trip.KindAccommodation, "Sorry, no accommodations were found for your search.")
	}

	var payload []planner.AccommodationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return emptyResult(trip.KindAccommodation, "Sorry, I couldn't read the accommodation options from the server.")
	}

	stays := make([]trip.Accommodation, 0, len(payload))
	for _, a := range payload {
		if strings.TrimSpace(a.Name) == "" {
			continue
		}
		stays = append(stays, trip.Accommodation{
			Name:    a.Name,
			Address: a.Address,
			Rating:  float64(a.Rating),
			Website: a.Website,
			MapsURL: a.GoogleMapsLink,
		})
	}

	if len(stays) == 0 {
		return emptyResult(trip.KindAccommodation, "Sorry, no accommodations were found for your search.")
	}
	return Result{
		Set:     trip.ResultSet{Kind: trip.KindAccommodation, Accommodations: stays},
		Summary: fmt.Sprintf("🏨 Here are %d accommodation options for you:", len(stays)),
	}
}
