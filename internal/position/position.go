// Package position holds the pairs-trading state machine: a pure transition
// function folded over a z-score history in ascending time order.
package position

import (
	"math"

	"github.com/newthinker/quantlab/internal/core"
)

// State is the exposure to the spread between asset A and asset B.
type State int

const (
	Flat        State = 0
	LongSpread  State = 1  // long A, short B
	ShortSpread State = -1 // short A, long B
)

func (s State) String() string {
	switch s {
	case LongSpread:
		return "LONG_SPREAD"
	case ShortSpread:
		return "SHORT_SPREAD"
	default:
		return "FLAT"
	}
}

// Direction maps the state onto a signed exposure for the backtester.
func (s State) Direction() core.Direction {
	return core.Direction(s)
}

// Transition returns the state after observing z in state prev.
//
// From Flat the machine enters on a threshold breach; from an open position it
// only exits, once z crosses back through zero. An undefined z forces Flat.
func Transition(prev State, z, entryThreshold float64) State {
	if core.IsUndefined(z) {
		return Flat
	}

	switch prev {
	case LongSpread:
		if z >= 0 {
			return Flat
		}
		return LongSpread
	case ShortSpread:
		if z <= 0 {
			return Flat
		}
		return ShortSpread
	default:
		switch {
		case z < -entryThreshold:
			return LongSpread
		case z > entryThreshold:
			return ShortSpread
		}
		return Flat
	}
}

// ValidateThreshold rejects non-positive or non-finite entry thresholds.
func ValidateThreshold(entryThreshold float64) error {
	if !(entryThreshold > 0) || math.IsInf(entryThreshold, 1) {
		return core.InvalidParameter("entry_threshold", entryThreshold, "must be a positive finite number")
	}
	return nil
}

// Run folds Transition over z starting from initial. out[t] depends only on
// z[0..t] and initial.
func Run(z []float64, entryThreshold float64, initial State) ([]State, error) {
	if err := ValidateThreshold(entryThreshold); err != nil {
		return nil, err
	}

	out := make([]State, len(z))
	state := initial
	for i, v := range z {
		state = Transition(state, v, entryThreshold)
		out[i] = state
	}
	return out, nil
}

// Directions converts states into the exposure series consumed by backtest.
func Directions(states []State) []core.Direction {
	out := make([]core.Direction, len(states))
	for i, s := range states {
		out[i] = s.Direction()
	}
	return out
}

// Event is a single state change.
type Event struct {
	Index int   `json:"index"`
	From  State `json:"from"`
	To    State `json:"to"`
}

// Events lists every state change, including one at index 0 when the
// sequence does not start Flat.
func Events(states []State) []Event {
	var events []Event
	prev := Flat
	for i, s := range states {
		if s != prev {
			events = append(events, Event{Index: i, From: prev, To: s})
		}
		prev = s
	}
	return events
}
