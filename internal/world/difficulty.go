package world

import (
	"strings"

	"golang.org/x/text/cases"
)

// Difficulty scales the villager reward.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts "Easy", "normal", " HARD " and the like.
func ParseDifficulty(answer string) (Difficulty, error) {
	d := Difficulty(cases.Fold().String(strings.TrimSpace(answer)))
	switch d {
	case Easy, Normal, Hard:
		return d, nil
	}
	return "", ErrBadDifficulty
}
