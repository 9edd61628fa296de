package characters

import (
	"strings"
	"testing"
)

func TestCharacterBriefShape(t *testing.T) {
	// The brief must name both leads and request exactly the description
	// fields the synthesizer embeds downstream
	required := []string{
		"Count Vlad",
		"Mira",
		`"vlad"`,
		`"mira"`,
		"physical_appearance",
		"personality_traits",
		"mannerisms_and_gestures",
		"voice_style",
		"JSON object",
	}
	for _, want := range required {
		if !strings.Contains(characterBrief, want) {
			t.Errorf("character brief missing %q", want)
		}
	}
}
