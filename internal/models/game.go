package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Game is one of the numbers-game variants a station can sell.
type Game string

const (
	GameLasto    Game = "lasto"
	GameSwertres Game = "swertres"
	GamePick3    Game = "pick3"
	Game4D60     Game = "4d60"
)

// Games lists every variant in display order.
var Games = []Game{GameLasto, GameSwertres, GamePick3, Game4D60}

// ParseGame maps a game code onto its variant.
func ParseGame(code string) (Game, error) {
	g := Game(strings.ToLower(strings.TrimSpace(code)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown game %q", code)
	}
	return g, nil
}

// Valid reports whether g is one of the known variants.
func (g Game) Valid() bool {
	switch g {
	case GameLasto, GameSwertres, GamePick3, Game4D60:
		return true
	}
	return false
}

// Label is the name shown on slips and reports.
func (g Game) Label() string {
	switch g {
	case GameLasto:
		return "Lasto (L2)"
	case GameSwertres:
		return "Swertres (S3)"
	case GamePick3:
		return "Pick3"
	case Game4D60:
		return "4D60"
	}
	return string(g)
}

// Digits is the number of digits a wagered number must carry.
func (g Game) Digits() int {
	switch g {
	case GameLasto:
		return 2
	case GameSwertres:
		return 3
	case GamePick3:
		return 6
	case Game4D60:
		return 8
	}
	return 0
}

// NormalizeNumber validates a wagered number for the game and returns its
// canonical form. Pick3 and 4D60 numbers are written as dash separated
// two-digit groups ("12-34-56"); separators in the input are optional.
func (g Game) NormalizeNumber(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '-' || r == ' ' || r == ',' || r == '.':
			return -1
		}
		return 'x'
	}, strings.TrimSpace(raw))

	if strings.ContainsRune(digits, 'x') || digits == "" {
		return "", fmt.Errorf("%s number %q must contain digits only", g.Label(), raw)
	}
	if len(digits) != g.Digits() {
		return "", fmt.Errorf("%s number must have %d digits, got %q", g.Label(), g.Digits(), raw)
	}

	switch g {
	case GameLasto, GameSwertres:
		return digits, nil
	case GamePick3:
		return splitPairs(digits), nil
	case Game4D60:
		for i := 0; i < len(digits); i += 2 {
			n, _ := strconv.Atoi(digits[i : i+2])
			if n < 1 || n > 60 {
				return "", fmt.Errorf("4D60 numbers must be between 01 and 60, got %q", raw)
			}
		}
		return splitPairs(digits), nil
	}
	return "", fmt.Errorf("unknown game %q", string(g))
}

// UnmarshalText rejects unknown game codes at decode time.
func (g *Game) UnmarshalText(text []byte) error {
	parsed, err := ParseGame(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (g Game) MarshalText() ([]byte, error) {
	return []byte(g), nil
}

func splitPairs(digits string) string {
	parts := make([]string, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		parts = append(parts, digits[i:i+2])
	}
	return strings.Join(parts, "-")
}
