//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/findmy/internal/bootstrap"
	"github.com/yanqian/findmy/internal/domain/auth"
	"github.com/yanqian/findmy/internal/domain/recommendation"
	"github.com/yanqian/findmy/internal/domain/restaurant"
	"github.com/yanqian/findmy/internal/infra/config"
	"github.com/yanqian/findmy/internal/infra/places/googlemaps"
	httpiface "github.com/yanqian/findmy/internal/interface/http"
	"github.com/yanqian/findmy/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideGoogleVerifier,
		provideTelemetry,
		providePostgresPool,
		provideRestaurantRepository,
		provideAuthRepository,
		provideRestaurantFinder,
		provideLanguageModel,
		providePlacesClient,
		provideRecommendationConfig,
		provideSearchCache,
		auth.NewService,
		restaurant.NewService,
		recommendation.NewService,
		wire.Bind(new(recommendation.PlacesProvider), new(*googlemaps.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
