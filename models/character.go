// models/character.go
package models

import (
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Character is one AI opponent from the static roster.
type Character struct {
	ID         string `json:"id"` // slug of the stage name, e.g. "mc-cypher"
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"` // easy | normal | hard | nightmare
	VoiceStyle string `json:"voice_style"`
}

func newCharacter(name, difficulty, voiceStyle string) Character {
	return Character{
		ID:         slug.Make(name),
		Name:       name,
		Difficulty: difficulty,
		VoiceStyle: voiceStyle,
	}
}

// AIRoster is the full static opponent pool. Immutable, read-only, freely
// shareable across requests.
var AIRoster = []Character{
	newCharacter("Razor", DifficultyEasy, "laid-back"),
	newCharacter("Lil Echo", DifficultyEasy, "playful"),
	newCharacter("Venom", DifficultyNormal, "aggressive"),
	newCharacter("Silk", DifficultyNormal, "smooth"),
	newCharacter("MC Cypher", DifficultyHard, "technical"),
	newCharacter("Onyx", DifficultyHard, "hard-hitting"),
	newCharacter("Phantom", DifficultyNightmare, "relentless"),
	newCharacter("Widow", DifficultyNightmare, "venomous"),
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a stored username or slug as a presentable name
// ("mc cypher" → "Mc Cypher").
func DisplayName(raw string) string {
	return titleCaser.String(raw)
}
