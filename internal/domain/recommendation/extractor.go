package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/yanqian/findmy/pkg/metrics"
)

// LanguageModel generates free text for a single-turn prompt.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	locationMarker = "LOCATION:"
	activityMarker = "ACTIVITE:"
	fieldSeparator = "|"
)

var (
	locationMarkers = []string{locationMarker, "LOCALISATION:"}
	activityMarkers = []string{activityMarker, "ACTIVITY:"}
)

const intentPromptTemplate = `Identify in the text below:
1. the location (city, district, country)
2. the kind of activity (restaurant, café, museum, ...)
Answer on a single line using exactly this format: 'LOCATION: <location> | ACTIVITE: <activity>'

Text: %s`

// Extractor turns a prompt into an Intent. It never fails: anything it
// cannot resolve keeps its sentinel value.
type Extractor struct {
	model            LanguageModel
	locationMatchers []Matcher
	activityMatchers []Matcher
	logger           *slog.Logger
}

// NewExtractor builds an extractor with the default matchers.
func NewExtractor(model LanguageModel, logger *slog.Logger) *Extractor {
	return &Extractor{
		model:            model,
		locationMatchers: DefaultLocationMatchers(),
		activityMatchers: DefaultActivityMatchers(),
		logger:           logger.With("component", "recommendation.extractor"),
	}
}

// Extract asks the language model for the intent and parses its answer.
func (e *Extractor) Extract(ctx context.Context, prompt string) Intent {
	text, err := e.model.Generate(ctx, fmt.Sprintf(intentPromptTemplate, prompt))
	if err != nil {
		e.logger.Warn("intent model call failed", "error", err)
		metrics.IntentExtractionsTotal.WithLabelValues("model_error").Inc()
		return SentinelIntent()
	}
	text = norm.NFC.String(strings.TrimSpace(text))
	if text == "" {
		e.logger.Warn("intent model returned an empty answer")
		metrics.IntentExtractionsTotal.WithLabelValues("sentinel").Inc()
		return SentinelIntent()
	}

	path := "heuristic"
	var intent Intent
	if strings.Contains(text, fieldSeparator) {
		path = "structured"
		intent = parseStructured(text)
	} else {
		intent = e.parseHeuristic(text)
	}
	if intent == SentinelIntent() {
		path = "sentinel"
	}
	metrics.IntentExtractionsTotal.WithLabelValues(path).Inc()
	e.logger.Debug("intent extracted", "path", path, "location", intent.Location, "activity", intent.Activity)
	return intent
}

// parseStructured reads "LOCATION: x | ACTIVITE: y" answers. Labels are case-sensitive.
func parseStructured(text string) Intent {
	intent := SentinelIntent()
	for _, part := range strings.Split(text, fieldSeparator) {
		if value, ok := valueAfter(part, locationMarkers); ok {
			intent.Location = value
			continue
		}
		if value, ok := valueAfter(part, activityMarkers); ok {
			intent.Activity = value
		}
	}
	return intent
}

func valueAfter(part string, markers []string) (string, bool) {
	for _, marker := range markers {
		_, after, found := strings.Cut(part, marker)
		if !found {
			continue
		}
		value := strings.TrimSpace(after)
		return value, value != ""
	}
	return "", false
}

func (e *Extractor) parseHeuristic(text string) Intent {
	intent := SentinelIntent()
	if value, ok := firstMatch(e.locationMatchers, text); ok {
		intent.Location = value
	}
	if value, ok := firstMatch(e.activityMatchers, text); ok {
		intent.Activity = value
	}
	return intent
}

func firstMatch(matchers []Matcher, text string) (string, bool) {
	for _, match := range matchers {
		if value, ok := match(text); ok {
			return value, true
		}
	}
	return "", false
}
