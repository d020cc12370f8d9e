package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// DefaultPhotoBaseURL is the provider photo endpoint.
const DefaultPhotoBaseURL = "https://maps.googleapis.com/maps/api/place/photo"

// DetailFields is the field list requested from the details endpoint.
var DetailFields = []string{
	"name", "formatted_address", "rating", "types", "geometry", "photos",
	"formatted_phone_number", "website", "reviews", "opening_hours", "price_level", "url",
}

// Enricher resolves search hits into ranked place details.
type Enricher struct {
	provider PlacesProvider
	cfg      Config
	logger   *slog.Logger
}

// NewEnricher constructs an Enricher.
func NewEnricher(provider PlacesProvider, cfg Config, logger *slog.Logger) *Enricher {
	if cfg.PhotoMaxWidth <= 0 {
		cfg.PhotoMaxWidth = 400
	}
	if cfg.PhotoBaseURL == "" {
		cfg.PhotoBaseURL = DefaultPhotoBaseURL
	}
	return &Enricher{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With("component", "recommendation.enricher"),
	}
}

// FetchDetail looks up one place. Any failure reports false and is only logged.
func (e *Enricher) FetchDetail(ctx context.Context, placeID string) (PlaceDetail, bool) {
	if placeID == "" {
		return PlaceDetail{}, false
	}
	page, err := e.provider.Details(ctx, placeID, DetailFields)
	if err != nil {
		e.logger.Warn("place detail lookup failed", "placeId", placeID, "error", err)
		return PlaceDetail{}, false
	}
	if page.Status != StatusOK {
		e.logger.Warn("place detail returned non-OK status", "placeId", placeID, "status", page.Status)
		return PlaceDetail{}, false
	}
	return e.toDetail(page.Result), true
}

// ProcessResults fetches details for every hit, drops misses and ranks the rest.
func (e *Enricher) ProcessResults(ctx context.Context, places []RawPlace) []PlaceDetail {
	slots := make([]*PlaceDetail, len(places))
	if e.cfg.EnrichWorkers <= 1 {
		for i, place := range places {
			if detail, ok := e.FetchDetail(ctx, place.PlaceID); ok {
				slots[i] = &detail
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.cfg.EnrichWorkers)
		for i, place := range places {
			g.Go(func() error {
				if detail, ok := e.FetchDetail(ctx, place.PlaceID); ok {
					slots[i] = &detail
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	details := make([]PlaceDetail, 0, len(places))
	for _, slot := range slots {
		if slot != nil {
			details = append(details, *slot)
		}
	}
	return Rank(details)
}

func (e *Enricher) toDetail(record PlaceRecord) PlaceDetail {
	detail := PlaceDetail{
		Name:         record.Name,
		Address:      record.FormattedAddress,
		Types:        record.Types,
		Photos:       make([]string, 0, len(record.Photos)),
		Phone:        record.FormattedPhoneNumber,
		Website:      record.Website,
		Reviews:      record.Reviews,
		OpeningHours: record.OpeningHours,
		PriceLevel:   record.PriceLevel,
		MapURL:       record.URL,
	}
	if record.Rating != nil {
		detail.Rating = *record.Rating
	}
	if record.Geometry != nil {
		location := record.Geometry.Location
		detail.Location = &location
	}
	if detail.Types == nil {
		detail.Types = []string{}
	}
	for _, photo := range record.Photos {
		if photo.Reference == "" {
			continue
		}
		detail.Photos = append(detail.Photos, e.photoURL(photo.Reference))
	}
	return detail
}

func (e *Enricher) photoURL(reference string) string {
	return fmt.Sprintf("%s?maxwidth=%d&photoreference=%s&key=%s",
		e.cfg.PhotoBaseURL, e.cfg.PhotoMaxWidth, url.QueryEscape(reference), url.QueryEscape(e.cfg.APIKey))
}
