package skillcheck

//go:generate mockgen -destination=mock/mock_roller.go -package=skillcheckmock github.com/greymere/keeper-api/internal/engine/skillcheck Roller

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/greymere/keeper-api/internal/errors"
)

// Roller produces percentile rolls. Injected so tests can pin results.
type Roller interface {
	RollD100() (int, error)
}

// ToolkitRoller rolls through the dice toolkit.
type ToolkitRoller struct{}

// RollD100 rolls 1d100.
func (ToolkitRoller) RollD100() (int, error) {
	roll, err := dice.NewRoll(1, 100)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create dice roll")
	}
	return roll.GetValue(), nil
}

// FixedRoller returns scripted rolls in sequence, for tests. Once the
// script is exhausted it repeats the last entry.
type FixedRoller struct {
	Rolls []int
	next  int
}

// RollD100 returns the next scripted roll.
func (f *FixedRoller) RollD100() (int, error) {
	if len(f.Rolls) == 0 {
		return 0, errors.Internal("fixed roller has no rolls")
	}
	if f.next >= len(f.Rolls) {
		return f.Rolls[len(f.Rolls)-1], nil
	}
	v := f.Rolls[f.next]
	f.next++
	return v, nil
}
