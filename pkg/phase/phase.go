// Package phase tracks the stage of an optimization run.
//
// A Phase gates whether a strategy parameter reports itself as part of the
// search space. The optimization driver owns a State, advances it between
// discrete stages and hands Get() snapshots to parameter evaluation, so every
// worker evaluating trials reads an immutable copy instead of the live flag.
package phase

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Phase is the current stage of an optimization run
type Phase int32

const (
	Startup    Phase = 1
	DataLoad   Phase = 2
	Indicators Phase = 3
	Optimize   Phase = 4
)

var names = map[Phase]string{
	Startup:    "startup",
	DataLoad:   "dataload",
	Indicators: "indicators",
	Optimize:   "optimize",
}

// All returns the phases in the order a driver advances through them
func All() []Phase {
	return []Phase{Startup, DataLoad, Indicators, Optimize}
}

// IsValid returns true if p is one of the known phases
func (p Phase) IsValid() bool {
	_, ok := names[p]
	return ok
}

// String returns the lowercase phase name
func (p Phase) String() string {
	if name, ok := names[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int32(p))
}

// Parse converts a phase name (case-insensitive) to a Phase
func Parse(s string) (Phase, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for p, name := range names {
		if name == needle {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown optimization phase: %q", s)
}

// State holds the phase of one optimization driver.
// The zero value reports Startup.
type State struct {
	current atomic.Int32
}

// NewState returns a State positioned at p
func NewState(p Phase) *State {
	s := &State{}
	s.Set(p)
	return s
}

// Set overwrites the current phase unconditionally
func (s *State) Set(p Phase) {
	s.current.Store(int32(p))
}

// Get returns a snapshot of the current phase
func (s *State) Get() Phase {
	v := Phase(s.current.Load())
	if v == 0 {
		return Startup
	}
	return v
}
