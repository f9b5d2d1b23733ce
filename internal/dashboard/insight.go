package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

// SystemPrompt is the fixed instruction sent with every insight request.
const SystemPrompt = "You are a weather expert. Provide concise, structured, and actionable insights. Use bullet points for tips and keep responses under 100 words."

// FallbackInsight is returned when every backend fails.
const FallbackInsight = "- Monitor local alerts for sudden changes.\n- Dress in layers for variable conditions.\n- Stay hydrated regardless of temperature."

// Backend is one text-generation service.
type Backend interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type guardedBackend struct {
	backend Backend
	breaker *gobreaker.CircuitBreaker
}

// InsightProvider asks each backend in priority order and falls back to a
// static tip list. It never fails and never returns empty text.
type InsightProvider struct {
	backends []guardedBackend
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewInsightProvider wraps every backend in its own circuit breaker. The
// set of backends is fixed for the provider's lifetime.
func NewInsightProvider(metrics *observability.Metrics, logger *slog.Logger, backends ...Backend) *InsightProvider {
	guarded := make([]guardedBackend, 0, len(backends))
	for _, b := range backends {
		guarded = append(guarded, guardedBackend{
			backend: b,
			breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:        b.Name(),
				MaxRequests: 1,
				Interval:    time.Minute,
				Timeout:     2 * time.Minute,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= 3
				},
				OnStateChange: func(name string, from, to gobreaker.State) {
					logger.Warn("insight backend breaker changed state", "backend", name, "from", from.String(), "to", to.String())
				},
			}),
		})
	}
	return &InsightProvider{
		backends: guarded,
		metrics:  metrics,
		logger:   logger,
	}
}

var errEmptyInsight = errors.New("backend returned empty text")

// Insight returns the first non-empty answer to prompt, or FallbackInsight.
func (p *InsightProvider) Insight(ctx context.Context, prompt string) string {
	for _, g := range p.backends {
		out, err := g.breaker.Execute(func() (interface{}, error) {
			text, err := g.backend.Complete(ctx, SystemPrompt, prompt)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(text) == "" {
				return nil, errEmptyInsight
			}
			return text, nil
		})
		if err != nil {
			p.metrics.InsightRequests.WithLabelValues(g.backend.Name(), "error").Inc()
			p.logger.Warn("insight backend failed", "backend", g.backend.Name(), "error", err)
			continue
		}
		p.metrics.InsightRequests.WithLabelValues(g.backend.Name(), "success").Inc()
		return out.(string)
	}

	p.metrics.InsightRequests.WithLabelValues("fallback", "success").Inc()
	return FallbackInsight
}

// Backends lists the configured backend names in priority order.
func (p *InsightProvider) Backends() []string {
	names := make([]string, 0, len(p.backends))
	for _, g := range p.backends {
		names = append(names, g.backend.Name())
	}
	return names
}

// TipPrompt asks for short advice about the current conditions.
func TipPrompt(condition string, temp float64, unit domain.Unit, location string) string {
	return fmt.Sprintf("Given %s weather at %s in %s, provide 1-2 concise, actionable tips.",
		strings.ToLower(condition), domain.FormatTemp(temp, unit), location)
}

// ReviewPrompt asks for a pros/cons summary. Temperature must be in °C.
func ReviewPrompt(location, description string, tempC float64) string {
	return fmt.Sprintf("Summarize weather in %s: %s, %.1f°C. Include pros/cons and advice.", location, description, tempC)
}

// PredictionPrompt asks for a structured seven-day outlook. Temperature must be in °C.
func PredictionPrompt(location, description string, tempC float64) string {
	return fmt.Sprintf("Predict 7-day weather for %s. Current: %.1f°C, %s. Structure: **Day N:** High/Low, cond, precip %%, advice. Engaging & accurate.",
		location, tempC, description)
}

// QuickTipSeparator joins the mood response and the generated tip.
const QuickTipSeparator = "\n\n**Quick Tip:** "

// Assistant is the mood-driven response for a bundle.
type Assistant struct {
	Mood    domain.Mood `json:"mood"`
	Message string      `json:"message"`
	Tip     string      `json:"tip"`
	Text    string      `json:"text"`
}

// Assist picks a mood from the current condition, renders its template and
// appends a generated tip.
func (p *InsightProvider) Assist(ctx context.Context, current domain.CurrentConditions, unit domain.Unit, location string) Assistant {
	mood := domain.MoodFor(current.Condition.Main)
	msg := domain.MoodMessage(mood, current.Temp, unit, location, current.Condition.Main)
	tip := p.Insight(ctx, TipPrompt(current.Condition.Main, current.Temp, unit, location))
	return Assistant{
		Mood:    mood,
		Message: msg,
		Tip:     tip,
		Text:    msg + QuickTipSeparator + tip,
	}
}
