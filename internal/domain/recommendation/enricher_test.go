package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnricher_FetchDetailMapsFields(t *testing.T) {
	phone := "05 37 00 00 00"
	mapURL := "https://maps.google.com/?cid=1"
	price := 2
	provider := newStubProvider()
	provider.details["p1"] = DetailPage{Status: StatusOK, Result: PlaceRecord{
		Name:                 "Sakura",
		FormattedAddress:     "Agdal, Rabat",
		Rating:               ratingOf(4.6),
		Types:                []string{"restaurant", "food"},
		Geometry:             &Geometry{Location: LatLng{Lat: 34.0, Lng: -6.8}},
		Photos:               []PhotoRef{{Reference: "ref-1"}, {Reference: ""}, {Reference: "ref-2"}},
		FormattedPhoneNumber: &phone,
		Reviews:              []Review{{AuthorName: "Nadia", Rating: 5, Text: "Excellent"}},
		PriceLevel:           &price,
		URL:                  &mapURL,
	}}
	enricher := NewEnricher(provider, Config{APIKey: "k3y"}, discardLogger())

	detail, ok := enricher.FetchDetail(context.Background(), "p1")
	require.True(t, ok)
	require.Equal(t, "Sakura", detail.Name)
	require.Equal(t, "Agdal, Rabat", detail.Address)
	require.Equal(t, 4.6, detail.Rating)
	require.Equal(t, &LatLng{Lat: 34.0, Lng: -6.8}, detail.Location)
	require.Equal(t, []string{
		"https://maps.googleapis.com/maps/api/place/photo?maxwidth=400&photoreference=ref-1&key=k3y",
		"https://maps.googleapis.com/maps/api/place/photo?maxwidth=400&photoreference=ref-2&key=k3y",
	}, detail.Photos)
	require.Equal(t, &phone, detail.Phone)
	require.Nil(t, detail.Website)
	require.Nil(t, detail.OpeningHours)
	require.Equal(t, &price, detail.PriceLevel)
	require.Equal(t, &mapURL, detail.MapURL)
	require.Len(t, detail.Reviews, 1)
	require.Equal(t, DetailFields, []string{
		"name", "formatted_address", "rating", "types", "geometry", "photos",
		"formatted_phone_number", "website", "reviews", "opening_hours", "price_level", "url",
	})
}

func TestEnricher_FetchDetailDefaults(t *testing.T) {
	provider := newStubProvider()
	provider.details["bare"] = DetailPage{Status: StatusOK, Result: PlaceRecord{Name: "Bare"}}
	enricher := NewEnricher(provider, Config{}, discardLogger())

	detail, ok := enricher.FetchDetail(context.Background(), "bare")
	require.True(t, ok)
	require.Zero(t, detail.Rating)
	require.NotNil(t, detail.Types)
	require.NotNil(t, detail.Photos)
	require.Nil(t, detail.Phone)
	require.Nil(t, detail.Reviews)
	require.Nil(t, detail.PriceLevel)
	require.Nil(t, detail.MapURL)
	require.Nil(t, detail.Location)

	encoded, err := json.Marshal(detail)
	require.NoError(t, err)
	require.NotContains(t, string(encoded), `"location"`)
}

func TestEnricher_FetchDetailFailures(t *testing.T) {
	provider := newStubProvider()
	provider.detailErr["broken"] = errors.New("connection reset")
	provider.details["denied"] = DetailPage{Status: "REQUEST_DENIED"}
	enricher := NewEnricher(provider, Config{}, discardLogger())

	for _, id := range []string{"", "broken", "denied", "unknown"} {
		_, ok := enricher.FetchDetail(context.Background(), id)
		require.False(t, ok, id)
	}
	require.NotContains(t, provider.detailCalls, "")
}

func TestEnricher_ProcessResultsDropsMissesAndRanks(t *testing.T) {
	provider := newStubProvider()
	provider.details["a"] = okDetail("A", ratingOf(3.9))
	provider.details["b"] = okDetail("B", nil)
	provider.details["d"] = okDetail("D", ratingOf(4.8))
	provider.details["e"] = okDetail("E", ratingOf(3.9))

	raw := []RawPlace{{PlaceID: "a"}, {PlaceID: "b"}, {PlaceID: "c"}, {PlaceID: "d"}, {PlaceID: "e"}}
	for _, workers := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			enricher := NewEnricher(provider, Config{EnrichWorkers: workers}, discardLogger())
			details := enricher.ProcessResults(context.Background(), raw)
			names := make([]string, 0, len(details))
			for _, d := range details {
				names = append(names, d.Name)
			}
			require.Equal(t, []string{"D", "A", "E", "B"}, names)
		})
	}
}

func TestRank_StableDescending(t *testing.T) {
	in := []PlaceDetail{
		{Name: "first", Rating: 4},
		{Name: "zero", Rating: 0},
		{Name: "top", Rating: 4.9},
		{Name: "second", Rating: 4},
	}
	out := Rank(in)
	require.Equal(t, []string{"top", "first", "second", "zero"}, []string{out[0].Name, out[1].Name, out[2].Name, out[3].Name})
	require.Equal(t, "first", in[0].Name)
	require.NotNil(t, Rank(nil))
}
