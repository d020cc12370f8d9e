package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		require.Equal(t, "g-test", r.Header.Get("x-goog-api-key"))
		var body struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				MaxOutputTokens int `json:"maxOutputTokens"`
			} `json:"generationConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		require.Equal(t, "user", body.Contents[0].Role)
		require.Equal(t, "where?", body.Contents[0].Parts[0].Text)
		require.Equal(t, 64, body.GenerationConfig.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  LOCATION: Rabat | ACTIVITE: sushi \n"}]}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), "g-test", Options{Model: "gemini-test", BaseURL: server.URL, MaxTokens: 64})
	require.NoError(t, err)
	text, err := client.Generate(context.Background(), "where?")
	require.NoError(t, err)
	require.Equal(t, "LOCATION: Rabat | ACTIVITE: sushi", text)
}

func TestClient_GenerateSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), "g-test", Options{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), "where?")
	require.ErrorContains(t, err, "gemini generate content")
	require.ErrorContains(t, err, "API key not valid")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), " ", Options{})
	require.Error(t, err)
}
