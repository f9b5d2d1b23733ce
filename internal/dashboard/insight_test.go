package dashboard

import (
	"context"
	"strings"
	"testing"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInsights(backends ...Backend) (*InsightProvider, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return NewInsightProvider(m, discardLogger(), backends...), m
}

func TestInsight_FirstBackendAnswers(t *testing.T) {
	a := &fakeBackend{name: "a", text: "tip from a"}
	b := &fakeBackend{name: "b", text: "tip from b"}
	p, m := newTestInsights(a, b)

	assert.Equal(t, "tip from a", p.Insight(context.Background(), "prompt"))
	assert.Zero(t, b.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InsightRequests.WithLabelValues("a", "success")))
}

func TestInsight_FallsToSecondBackend(t *testing.T) {
	tests := []struct {
		name  string
		first *fakeBackend
	}{
		{"error", &fakeBackend{name: "a", err: errBoom}},
		{"empty text", &fakeBackend{name: "a", text: "  \n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{name: "b", text: "tip from b"}
			p, _ := newTestInsights(tt.first, b)

			assert.Equal(t, "tip from b", p.Insight(context.Background(), "prompt"))
			assert.Equal(t, 1, tt.first.calls)
		})
	}
}

func TestInsight_StaticFallback(t *testing.T) {
	p, m := newTestInsights(&fakeBackend{name: "a", err: errBoom}, &fakeBackend{name: "b", err: errBoom})

	got := p.Insight(context.Background(), "prompt")
	assert.Equal(t, FallbackInsight, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InsightRequests.WithLabelValues("fallback", "success")))
}

func TestInsight_NoBackends(t *testing.T) {
	p, _ := newTestInsights()
	assert.Equal(t, FallbackInsight, p.Insight(context.Background(), "prompt"))
	assert.Empty(t, p.Backends())
}

func TestInsight_BreakerSkipsFailingBackend(t *testing.T) {
	a := &fakeBackend{name: "a", err: errBoom}
	b := &fakeBackend{name: "b", text: "ok"}
	p, _ := newTestInsights(a, b)

	for range 5 {
		assert.Equal(t, "ok", p.Insight(context.Background(), "prompt"))
	}
	assert.Equal(t, 3, a.calls, "breaker opens after three consecutive failures")
	assert.Equal(t, 5, b.calls)
}

func TestPrompts(t *testing.T) {
	assert.Equal(t,
		"Given clear weather at 21.5°C in Paris, FR, provide 1-2 concise, actionable tips.",
		TipPrompt("Clear", 21.5, domain.UnitMetric, "Paris, FR"))

	assert.Equal(t,
		"Summarize weather in Oslo, NO: light snow, -3.0°C. Include pros/cons and advice.",
		ReviewPrompt("Oslo, NO", "light snow", -3))

	pred := PredictionPrompt("Oslo, NO", "light snow", -3)
	assert.True(t, strings.HasPrefix(pred, "Predict 7-day weather for Oslo, NO. Current: -3.0°C, light snow."))
	assert.Contains(t, pred, "precip %,")
}

func TestAssist(t *testing.T) {
	backend := &fakeBackend{name: "a", text: "Carry an umbrella."}
	p, _ := newTestInsights(backend)

	current := domain.CurrentConditions{Temp: 12.34, Condition: domain.Condition{Main: "Rain", Description: "light rain"}}
	got := p.Assist(context.Background(), current, domain.UnitMetric, "London, GB")

	assert.Equal(t, domain.MoodSad, got.Mood)
	assert.Contains(t, got.Message, "12.3°C")
	assert.Equal(t, "Carry an umbrella.", got.Tip)
	assert.Equal(t, got.Message+"\n\n**Quick Tip:** Carry an umbrella.", got.Text)
	assert.Equal(t, "Given rain weather at 12.3°C in London, GB, provide 1-2 concise, actionable tips.", backend.last)
}

func TestAssist_FallbackTip(t *testing.T) {
	p, _ := newTestInsights()
	got := p.Assist(context.Background(), domain.CurrentConditions{Condition: domain.Condition{Main: "Haze"}}, domain.UnitImperial, "Delhi, IN")

	assert.Equal(t, domain.MoodNeutral, got.Mood)
	require.True(t, strings.HasSuffix(got.Text, FallbackInsight))
}
