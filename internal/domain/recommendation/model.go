package recommendation

import (
	"errors"

	"github.com/yanqian/findmy/internal/domain/restaurant"
)

// Sentinel values stand in for intent fields the prompt did not resolve.
const (
	UnspecifiedLocation = "unspecified"
	GenericActivity     = "generic activity"
)

// Provider status values.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// ErrUpstreamUnavailable marks transport level failures of the places provider.
var ErrUpstreamUnavailable = errors.New("places provider unavailable")

// Config holds pipeline limits and the photo URL parameters.
type Config struct {
	MaxEnriched   int
	EnrichWorkers int
	PhotoBaseURL  string
	PhotoMaxWidth int
	APIKey        string
}

// Request is the natural language payload of both pipeline endpoints.
type Request struct {
	Prompt string `json:"prompt"`
}

// Intent is what the extractor understood from a prompt.
type Intent struct {
	Location string `json:"location"`
	Activity string `json:"activity"`
}

// SentinelIntent is the intent of a prompt nothing could be extracted from.
func SentinelIntent() Intent {
	return Intent{Location: UnspecifiedLocation, Activity: GenericActivity}
}

// Resolved reports whether both fields carry a real value.
func (i Intent) Resolved() bool {
	return i.Location != UnspecifiedLocation && i.Activity != GenericActivity
}

// RawPlace is a text search hit.
type RawPlace struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Rating           float64 `json:"rating,omitempty"`
}

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Review is a user review attached to a place.
type Review struct {
	AuthorName              string  `json:"author_name"`
	AuthorURL               string  `json:"author_url,omitempty"`
	Language                string  `json:"language,omitempty"`
	ProfilePhotoURL         string  `json:"profile_photo_url,omitempty"`
	Rating                  float64 `json:"rating"`
	RelativeTimeDescription string  `json:"relative_time_description,omitempty"`
	Text                    string  `json:"text"`
	Time                    int64   `json:"time,omitempty"`
}

// TimeOfWeek is one end of an opening period.
type TimeOfWeek struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// OpeningPeriod is an open/close pair; Close is absent for places open around the clock.
type OpeningPeriod struct {
	Open  TimeOfWeek  `json:"open"`
	Close *TimeOfWeek `json:"close,omitempty"`
}

// OpeningHours is the provider opening hours structure.
type OpeningHours struct {
	OpenNow     *bool           `json:"open_now,omitempty"`
	Periods     []OpeningPeriod `json:"periods,omitempty"`
	WeekdayText []string        `json:"weekday_text,omitempty"`
}

// PhotoRef points at a provider photo.
type PhotoRef struct {
	Reference string `json:"photo_reference"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// Geometry wraps the place coordinate.
type Geometry struct {
	Location LatLng `json:"location"`
}

// PlaceRecord is the provider detail record. Pointer fields are absent when nil.
type PlaceRecord struct {
	Name                 string        `json:"name"`
	FormattedAddress     string        `json:"formatted_address"`
	Rating               *float64      `json:"rating"`
	Types                []string      `json:"types"`
	Geometry             *Geometry     `json:"geometry"`
	Photos               []PhotoRef    `json:"photos"`
	FormattedPhoneNumber *string       `json:"formatted_phone_number"`
	Website              *string       `json:"website"`
	Reviews              []Review      `json:"reviews"`
	OpeningHours         *OpeningHours `json:"opening_hours"`
	PriceLevel           *int          `json:"price_level"`
	URL                  *string       `json:"url"`
}

// SearchPage is a decoded text search response.
type SearchPage struct {
	Status       string     `json:"status"`
	Results      []RawPlace `json:"results"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// DetailPage is a decoded details response.
type DetailPage struct {
	Status       string      `json:"status"`
	Result       PlaceRecord `json:"result"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// PlaceDetail is an enriched recommendation entry.
type PlaceDetail struct {
	Name         string        `json:"name"`
	Address      string        `json:"address"`
	Rating       float64       `json:"rating"`
	Types        []string      `json:"types"`
	Location     *LatLng       `json:"location,omitempty"`
	Photos       []string      `json:"photos"`
	Phone        *string       `json:"phone"`
	Website      *string       `json:"website"`
	Reviews      []Review      `json:"reviews"`
	OpeningHours *OpeningHours `json:"opening_hours"`
	PriceLevel   *int          `json:"price_level"`
	MapURL       *string       `json:"map_url"`
}

// Result is the recommendation response.
type Result struct {
	Results  []PlaceDetail `json:"results"`
	Location string        `json:"location"`
	Activity string        `json:"activity"`
}

// InformationResult is the store search response.
type InformationResult struct {
	Results  []restaurant.Restaurant `json:"results"`
	Location string                  `json:"location"`
	Activity string                  `json:"activity"`
	Message  string                  `json:"message,omitempty"`
}
