package recommendation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yanqian/findmy/internal/domain/restaurant"
	apperrors "github.com/yanqian/findmy/pkg/errors"
	"github.com/yanqian/findmy/pkg/metrics"
)

const (
	msgMissingBoth     = "please specify both the location and the restaurant type"
	msgMissingLocation = "please specify the restaurant location"
	msgMissingActivity = "please specify the restaurant type"
	msgNoRestaurant    = "no restaurant matches your request"
)

// Service exposes the natural language endpoints.
type Service interface {
	Recommend(ctx context.Context, req Request) (Result, error)
	Inform(ctx context.Context, req Request) (InformationResult, error)
}

// RestaurantFinder searches the local restaurant store.
type RestaurantFinder interface {
	Search(ctx context.Context, filter restaurant.Filter) ([]restaurant.Restaurant, error)
}

type service struct {
	cfg         Config
	extractor   *Extractor
	search      *SearchClient
	enricher    *Enricher
	restaurants RestaurantFinder
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService assembles the recommendation pipeline.
func NewService(cfg Config, model LanguageModel, provider PlacesProvider, cache SearchCache, restaurants RestaurantFinder, logger *slog.Logger) Service {
	if cfg.MaxEnriched <= 0 {
		cfg.MaxEnriched = 10
	}
	return &service{
		cfg:         cfg,
		extractor:   NewExtractor(model, logger),
		search:      NewSearchClient(provider, cache, logger),
		enricher:    NewEnricher(provider, cfg, logger),
		restaurants: restaurants,
		logger:      logger.With("component", "recommendation.service"),
		tracer:      otel.Tracer("github.com/yanqian/findmy/internal/domain/recommendation"),
	}
}

func (s *service) Recommend(ctx context.Context, req Request) (Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "prompt cannot be empty", nil)
	}
	ctx, span := s.tracer.Start(ctx, "recommendation.Recommend")
	defer span.End()

	intent := s.extract(ctx, prompt)
	span.SetAttributes(attribute.String("intent.location", intent.Location), attribute.String("intent.activity", intent.Activity))
	if !intent.Resolved() {
		s.logger.Info("prompt did not resolve both location and activity", "location", intent.Location, "activity", intent.Activity)
		metrics.RecommendationsTotal.WithLabelValues("unresolved").Inc()
		return emptyResult(intent), nil
	}

	places, err := s.findPlaces(ctx, intent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "place search failed")
		if errors.Is(err, ErrUpstreamUnavailable) {
			metrics.RecommendationsTotal.WithLabelValues("upstream_unavailable").Inc()
			return Result{}, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "place search is temporarily unavailable", err)
		}
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return Result{}, apperrors.Wrap(apperrors.CodeInternal, "failed to build recommendations", err)
	}
	if len(places) == 0 {
		s.logger.Info("no places found", "location", intent.Location, "activity", intent.Activity)
		metrics.RecommendationsTotal.WithLabelValues("no_places").Inc()
		return emptyResult(intent), nil
	}
	if len(places) > s.cfg.MaxEnriched {
		places = places[:s.cfg.MaxEnriched]
	}

	details := s.enrich(ctx, places)
	metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("recommendations ready", "location", intent.Location, "activity", intent.Activity, "hits", len(places), "results", len(details))
	return Result{Results: details, Location: intent.Location, Activity: intent.Activity}, nil
}

func (s *service) Inform(ctx context.Context, req Request) (InformationResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return InformationResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "prompt cannot be empty", nil)
	}
	ctx, span := s.tracer.Start(ctx, "recommendation.Inform")
	defer span.End()

	intent := s.extract(ctx, prompt)
	res := InformationResult{
		Results:  []restaurant.Restaurant{},
		Location: intent.Location,
		Activity: intent.Activity,
	}
	missingLocation := intent.Location == UnspecifiedLocation
	missingActivity := intent.Activity == GenericActivity
	switch {
	case missingLocation && missingActivity:
		res.Message = msgMissingBoth
		return res, nil
	case missingLocation:
		res.Message = msgMissingLocation
		return res, nil
	case missingActivity:
		res.Message = msgMissingActivity
		return res, nil
	}

	found, err := s.restaurants.Search(ctx, restaurant.Filter{Location: intent.Location, Cuisine: intent.Activity})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "restaurant search failed")
		return InformationResult{}, apperrors.Wrap(apperrors.CodeInternal, "failed to search restaurants", err)
	}
	if len(found) == 0 {
		res.Message = msgNoRestaurant
		return res, nil
	}
	res.Results = found
	return res, nil
}

func (s *service) extract(ctx context.Context, prompt string) Intent {
	ctx, span := s.tracer.Start(ctx, "recommendation.extract")
	defer span.End()
	return s.extractor.Extract(ctx, prompt)
}

func (s *service) findPlaces(ctx context.Context, intent Intent) ([]RawPlace, error) {
	ctx, span := s.tracer.Start(ctx, "recommendation.findPlaces")
	defer span.End()
	places, err := s.search.FindPlaces(ctx, intent.Location, intent.Activity)
	span.SetAttributes(attribute.Int("places.hits", len(places)))
	return places, err
}

func (s *service) enrich(ctx context.Context, places []RawPlace) []PlaceDetail {
	ctx, span := s.tracer.Start(ctx, "recommendation.enrich")
	defer span.End()
	details := s.enricher.ProcessResults(ctx, places)
	span.SetAttributes(attribute.Int("places.enriched", len(details)))
	return details
}

func emptyResult(intent Intent) Result {
	return Result{Results: []PlaceDetail{}, Location: intent.Location, Activity: intent.Activity}
}
