package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "claude-test", body.Model)
		require.Equal(t, defaultMaxTokens, body.MaxTokens)
		require.Len(t, body.Messages, 1)
		require.Equal(t, "user", body.Messages[0].Role)
		require.Equal(t, "where?", body.Messages[0].Content[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"  LOCATION: Rabat"},{"type":"text","text":" | ACTIVITE: sushi \n"}],
			"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":9}
		}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-ant-test", Options{Model: "claude-test", BaseURL: server.URL})
	require.NoError(t, err)
	text, err := client.Generate(context.Background(), "where?")
	require.NoError(t, err)
	require.Equal(t, "LOCATION: Rabat | ACTIVITE: sushi", text)
}

func TestClient_GenerateSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens too large"}}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-ant-test", Options{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), "where?")
	require.ErrorContains(t, err, "anthropic messages")
	require.ErrorContains(t, err, "400")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", Options{})
	require.Error(t, err)
}
