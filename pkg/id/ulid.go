// Package id generates request identifiers.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// Generator produces ULIDs from one entropy source. Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewGenerator returns a Generator reading entropy from r. IDs created
// within the same millisecond increase monotonically.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{entropy: ulid.Monotonic(r, 0)}
}

// New returns a 26 character ULID for the current time.
func (g *Generator) New() (string, error) {
	g.mu.Lock()
	v, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	g.mu.Unlock()
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

var defaultGenerator = NewGenerator(rand.Reader)

// NewULID returns a ULID from the default generator. It panics only if the
// system entropy source fails.
func NewULID() string {
	v, err := defaultGenerator.New()
	if err != nil {
		panic(err)
	}
	return v
}
