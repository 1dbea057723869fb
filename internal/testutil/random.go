package testutil

import "sync"

// ScriptedSource replays predetermined random draws.
//
// Floats feed Float64 and Ints feed IntN, each in order. Once a queue is
// exhausted the matching default is returned, so tests only script the
// draws they care about. IntN reduces scripted values modulo n.
//
// Thread-safety: ScriptedSource is safe for concurrent use via internal mutex.
type ScriptedSource struct {
	mu sync.Mutex

	Floats       []float64
	Ints         []int
	FloatDefault float64
	IntDefault   int

	fi, ii int
}

// NewScriptedSource creates a source that returns floats from Float64.
func NewScriptedSource(floats ...float64) *ScriptedSource {
	return &ScriptedSource{Floats: floats}
}

// Float64 returns the next scripted float.
func (s *ScriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fi >= len(s.Floats) {
		return s.FloatDefault
	}
	v := s.Floats[s.fi]
	s.fi++
	return v
}

// IntN returns the next scripted int reduced into [0, n).
func (s *ScriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.IntDefault
	if s.ii < len(s.Ints) {
		v = s.Ints[s.ii]
		s.ii++
	}
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Consumed returns how many scripted floats and ints have been drawn.
func (s *ScriptedSource) Consumed() (floats, ints int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fi, s.ii
}
