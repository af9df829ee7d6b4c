// Package state persists collected signatures in SQLite.
// Each collection pass is stored as a snapshot so a table can be rebuilt
// later without re-executing any macro file.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/argtable/pkg/core"
)

// ErrNoSnapshot is returned when the store holds no snapshot.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store is the persistence contract for signature snapshots.
type Store interface {
	SaveSnapshot(ctx context.Context, source string, descriptors []core.Descriptor) (*Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (*Snapshot, error)
	LatestSnapshot(ctx context.Context) (*Snapshot, error)
	Close() error
}

// Snapshot is one stored collection of descriptors.
type Snapshot struct {
	ID          string
	Source      string
	CreatedAt   time.Time
	Descriptors []core.Descriptor
}

var _ core.Resolver = (*Snapshot)(nil)

// Resolve serves a stored descriptor as a callable.
func (s *Snapshot) Resolve(name string) (core.ParameterIntrospectable, bool) {
	for _, d := range s.Descriptors {
		if d.Name == name {
			return core.Params(d.Params), true
		}
	}
	return nil, false
}

// Names returns the stored callable names in stored order.
func (s *Snapshot) Names() []string {
	names := make([]string, len(s.Descriptors))
	for i, d := range s.Descriptors {
		names[i] = d.Name
	}
	return names
}
