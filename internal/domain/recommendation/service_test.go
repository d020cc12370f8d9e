package recommendation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/findmy/internal/domain/restaurant"
	apperrors "github.com/yanqian/findmy/pkg/errors"
)

func newTestService(model LanguageModel, provider PlacesProvider, finder RestaurantFinder) Service {
	return NewService(Config{APIKey: "k3y"}, model, provider, newMapCache(), finder, discardLogger())
}

func TestService_RecommendRanksEnrichedPlaces(t *testing.T) {
	provider := newStubProvider()
	provider.pages["sushi Rabat"] = SearchPage{Status: StatusOK, Results: []RawPlace{{PlaceID: "a"}, {PlaceID: "b"}}}
	provider.details["a"] = okDetail("Low", ratingOf(3.2))
	provider.details["b"] = okDetail("High", ratingOf(4.7))
	svc := newTestService(&stubModel{answer: "LOCATION: Rabat | ACTIVITE: sushi"}, provider, &stubFinder{})

	res, err := svc.Recommend(context.Background(), Request{Prompt: "du sushi à Rabat"})
	require.NoError(t, err)
	require.Equal(t, "Rabat", res.Location)
	require.Equal(t, "sushi", res.Activity)
	require.Len(t, res.Results, 2)
	require.Equal(t, "High", res.Results[0].Name)
	require.Equal(t, "Low", res.Results[1].Name)
}

func TestService_RecommendShortCircuitsUnresolvedIntent(t *testing.T) {
	cases := map[string]string{
		"missing activity": "LOCATION: Rabat | ACTIVITE: ",
		"missing location": "LOCATION: | ACTIVITE: sushi",
		"nothing":          "",
	}
	for name, answer := range cases {
		t.Run(name, func(t *testing.T) {
			provider := newStubProvider()
			svc := newTestService(&stubModel{answer: answer}, provider, &stubFinder{})

			res, err := svc.Recommend(context.Background(), Request{Prompt: "anything"})
			require.NoError(t, err)
			require.NotNil(t, res.Results)
			require.Empty(t, res.Results)
			require.Zero(t, provider.queryCount())
		})
	}
}

func TestService_RecommendEchoesPartialIntent(t *testing.T) {
	svc := newTestService(&stubModel{answer: "LOCATION: Rabat | ACTIVITE: "}, newStubProvider(), &stubFinder{})
	res, err := svc.Recommend(context.Background(), Request{Prompt: "Rabat"})
	require.NoError(t, err)
	require.Equal(t, "Rabat", res.Location)
	require.Equal(t, GenericActivity, res.Activity)
}

func TestService_RecommendEnrichesAtMostTen(t *testing.T) {
	provider := newStubProvider()
	hits := make([]RawPlace, 0, 15)
	for i := range 15 {
		id := fmt.Sprintf("p%02d", i)
		hits = append(hits, RawPlace{PlaceID: id})
		provider.details[id] = okDetail(id, ratingOf(4))
	}
	provider.pages["bar Rabat"] = SearchPage{Status: StatusOK, Results: hits}
	svc := newTestService(&stubModel{answer: "LOCATION: Rabat | ACTIVITE: bar"}, provider, &stubFinder{})

	res, err := svc.Recommend(context.Background(), Request{Prompt: "un bar à Rabat"})
	require.NoError(t, err)
	require.Len(t, res.Results, 10)
	require.Len(t, provider.detailCalls, 10)
	require.Equal(t, "p00", res.Results[0].Name)
	require.Equal(t, "p09", res.Results[9].Name)
}

func TestService_RecommendNoPlaces(t *testing.T) {
	provider := newStubProvider()
	svc := newTestService(&stubModel{answer: "LOCATION: Atlantis | ACTIVITE: sushi"}, provider, &stubFinder{})

	res, err := svc.Recommend(context.Background(), Request{Prompt: "sushi in Atlantis"})
	require.NoError(t, err)
	require.Empty(t, res.Results)
	require.Equal(t, "Atlantis", res.Location)
	require.Len(t, provider.queries, 4)
}

func TestService_RecommendErrorMapping(t *testing.T) {
	upstream := newStubProvider()
	upstream.searchErr["sushi Rabat"] = fmt.Errorf("timeout: %w", ErrUpstreamUnavailable)
	svc := newTestService(&stubModel{answer: "LOCATION: Rabat | ACTIVITE: sushi"}, upstream, &stubFinder{})
	_, err := svc.Recommend(context.Background(), Request{Prompt: "sushi à Rabat"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamUnavailable))

	broken := newStubProvider()
	broken.searchErr["sushi Rabat"] = errors.New("decode response: unexpected EOF")
	svc = newTestService(&stubModel{answer: "LOCATION: Rabat | ACTIVITE: sushi"}, broken, &stubFinder{})
	_, err = svc.Recommend(context.Background(), Request{Prompt: "sushi à Rabat"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
}

func TestService_RecommendRejectsBlankPrompt(t *testing.T) {
	model := &stubModel{}
	svc := newTestService(model, newStubProvider(), &stubFinder{})
	_, err := svc.Recommend(context.Background(), Request{Prompt: "   "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Empty(t, model.prompts)
}

func TestService_InformMessages(t *testing.T) {
	cases := []struct {
		name    string
		answer  string
		message string
	}{
		{"both missing", "", "please specify both the location and the restaurant type"},
		{"location missing", "LOCATION: | ACTIVITE: sushi", "please specify the restaurant location"},
		{"activity missing", "LOCATION: Rabat | ACTIVITE:", "please specify the restaurant type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			finder := &stubFinder{}
			svc := newTestService(&stubModel{answer: tc.answer}, newStubProvider(), finder)
			res, err := svc.Inform(context.Background(), Request{Prompt: "x"})
			require.NoError(t, err)
			require.Equal(t, tc.message, res.Message)
			require.Empty(t, res.Results)
			require.Empty(t, finder.filters)
		})
	}
}

func TestService_InformSearchesStore(t *testing.T) {
	finder := &stubFinder{results: []restaurant.Restaurant{{ID: 1, Name: "Sakura", CuisineType: "sushi"}}}
	svc := newTestService(&stubModel{answer: "LOCATION: Rabat | ACTIVITE: sushi"}, newStubProvider(), finder)

	res, err := svc.Inform(context.Background(), Request{Prompt: "sushi à Rabat"})
	require.NoError(t, err)
	require.Empty(t, res.Message)
	require.Len(t, res.Results, 1)
	require.Equal(t, []restaurant.Filter{{Location: "Rabat", Cuisine: "sushi"}}, finder.filters)

	finder.results = nil
	res, err = svc.Inform(context.Background(), Request{Prompt: "sushi à Rabat"})
	require.NoError(t, err)
	require.Equal(t, "no restaurant matches your request", res.Message)
	require.NotNil(t, res.Results)

	finder.err = errors.New("connection refused")
	_, err = svc.Inform(context.Background(), Request{Prompt: "sushi à Rabat"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
}
