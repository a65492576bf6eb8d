package space

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// ErrBackendUnavailable is returned when no search backend is registered under a name
var ErrBackendUnavailable = errors.New("search backend unavailable")

// RandomBackendName is the name of the built-in uniform sampler
const RandomBackendName = "random"

// Backend adapts dimensions to a concrete search library
type Backend interface {
	Name() string
	// Ask proposes one point: a value for every dimension, keyed by dimension name
	Ask(dims []Dimension) (map[string]any, error)
}

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Backend)
)

// Register makes a backend available by name.
// It panics if b is nil or a backend with the same name is already registered.
func Register(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if b == nil {
		panic("space: Register backend is nil")
	}
	if _, dup := backends[b.Name()]; dup {
		panic("space: Register called twice for backend " + b.Name())
	}
	backends[b.Name()] = b
}

// Lookup returns the backend registered under name
func Lookup(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendUnavailable, name, backendNames())
	}
	return b, nil
}

// Backends returns the sorted names of registered backends
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return backendNames()
}

func backendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(NewRandomBackend(time.Now().UnixNano()))
}

// ============================================================================
// RANDOM BACKEND
// ============================================================================

// RandomBackend draws every dimension uniformly and independently
type RandomBackend struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomBackend creates a uniform sampler with a fixed seed
func NewRandomBackend(seed int64) *RandomBackend {
	return &RandomBackend{
		rng: rand.New(rand.NewSource(seed)), // #nosec G404 -- Non-cryptographic use: reproducible search-space sampling
	}
}

func (b *RandomBackend) Name() string { return RandomBackendName }

func (b *RandomBackend) Ask(dims []Dimension) (map[string]any, error) {
	if len(dims) == 0 {
		return nil, errors.New("cannot sample an empty search space")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	point := make(map[string]any, len(dims))
	for _, d := range dims {
		if d == nil {
			return nil, errors.New("search space contains a nil dimension")
		}
		if d.Name() == "" {
			return nil, fmt.Errorf("%s dimension has no name", d.Kind())
		}
		if _, dup := point[d.Name()]; dup {
			return nil, fmt.Errorf("duplicate dimension name %q", d.Name())
		}
		point[d.Name()] = d.Sample(b.rng)
	}
	return point, nil
}
