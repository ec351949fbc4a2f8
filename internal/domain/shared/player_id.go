package shared

import (
	"fmt"
	"strconv"
)

// PlayerID is a value object identifying the player who owns villages
type PlayerID struct {
	value int
}

// NewPlayerID creates a new PlayerID value object
func NewPlayerID(id int) (PlayerID, error) {
	if id <= 0 {
		return PlayerID{}, fmt.Errorf("player_id must be positive")
	}
	return PlayerID{value: id}, nil
}

// ParsePlayerID parses a decimal player id from CLI or HTTP input
func ParsePlayerID(s string) (PlayerID, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return PlayerID{}, fmt.Errorf("invalid player_id %q: %w", s, err)
	}
	return NewPlayerID(id)
}

// MustNewPlayerID creates a new PlayerID value object, panicking if invalid
// Use this only when you're certain the ID is valid (e.g., from database)
func MustNewPlayerID(id int) PlayerID {
	playerID, err := NewPlayerID(id)
	if err != nil {
		panic(err)
	}
	return playerID
}

func (p PlayerID) Value() int {
	return p.value
}

func (p PlayerID) String() string {
	return strconv.Itoa(p.value)
}

func (p PlayerID) Equals(other PlayerID) bool {
	return p.value == other.value
}

func (p PlayerID) IsZero() bool {
	return p.value == 0
}
