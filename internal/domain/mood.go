package domain

import (
	"fmt"
	"strings"
)

// Mood is the assistant persona selected from the current condition.
type Mood string

const (
	MoodHappy      Mood = "happy"
	MoodCalm       Mood = "calm"
	MoodSad        Mood = "sad"
	MoodExcited    Mood = "excited"
	MoodPlayful    Mood = "playful"
	MoodMysterious Mood = "mysterious"
	MoodNeutral    Mood = "neutral"
)

var moodByCondition = map[string]Mood{
	"clear":        MoodHappy,
	"clouds":       MoodCalm,
	"rain":         MoodSad,
	"thunderstorm": MoodExcited,
	"snow":         MoodPlayful,
	"mist":         MoodMysterious,
}

// MoodFor maps a provider condition group (e.g. "Clouds") to a mood.
// Unknown groups are neutral.
func MoodFor(condition string) Mood {
	if m, ok := moodByCondition[strings.ToLower(strings.TrimSpace(condition))]; ok {
		return m
	}
	return MoodNeutral
}

// moodTemplates take (location, temperature with unit) in that order.
var moodTemplates = map[Mood]string{
	MoodHappy:      "🌞 It's a beautiful clear day in %[1]s! Temperature is %[2]s. Ideal for outdoor activities like hiking or picnics. UV protection recommended.",
	MoodCalm:       "☁️ Calm and partly cloudy conditions at %[2]s. Perfect for a relaxed day indoors or light walks. Air quality is favorable for most activities.",
	MoodSad:        "🌧️ Rainy weather at %[2]s - don't let it dampen your spirits! Grab an umbrella and consider indoor plans. Precipitation chance: moderate.",
	MoodExcited:    "⚡ Thrilling thunderstorm brewing at %[2]s! Stay indoors and safe. Lightning risk is high - avoid water bodies and open areas.",
	MoodPlayful:    "❄️ Snowy wonderland at %[2]s! Bundle up for winter fun like snowball fights. Roads may be slippery - drive cautiously.",
	MoodMysterious: "🌫️ Misty atmosphere at %[2]s. Visibility low, so take care while driving. Great for cozy reading sessions.",
}

// MoodMessage renders the templated assistant line for a mood.
func MoodMessage(mood Mood, temp float64, unit Unit, location, condition string) string {
	t := FormatTemp(temp, unit)
	if tmpl, ok := moodTemplates[mood]; ok {
		return fmt.Sprintf(tmpl, location, t)
	}
	return fmt.Sprintf("Current temperature is %s with %s conditions. Check alerts for updates.", t, strings.ToLower(condition))
}

// FormatTemp renders a temperature with one decimal and the unit symbol.
func FormatTemp(temp float64, unit Unit) string {
	return fmt.Sprintf("%.1f%s", temp, unit.TempSymbol())
}
