package pipeline

import (
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/sbfl/pkg/coverage"
	"github.com/Sumatoshi-tech/sbfl/pkg/persist"
)

// SnapshotVersion is the format version of saved snapshots.
const SnapshotVersion = 1

// Snapshot is a saved aggregation table with the parameters that produced it.
type Snapshot struct {
	Version        int
	Directory      string
	ForcedFailures int
	CreatedAt      time.Time
	Table          *coverage.Table
}

// NewSnapshot captures table for later re-rendering.
func NewSnapshot(dir string, forcedFailures int, table *coverage.Table) *Snapshot {
	return &Snapshot{
		Version:        SnapshotVersion,
		Directory:      dir,
		ForcedFailures: forcedFailures,
		CreatedAt:      time.Now().UTC(),
		Table:          table,
	}
}

// StateVersion implements persist.Versioned.
func (s Snapshot) StateVersion() int { return s.Version }

func snapshotPersister() *persist.Persister[Snapshot] {
	return persist.NewPersister[Snapshot](persist.NewLZ4Codec(persist.NewGobCodec()), SnapshotVersion)
}

// SnapshotExtension is the conventional file extension of snapshots.
func SnapshotExtension() string {
	return snapshotPersister().Extension()
}

// SaveSnapshot writes snap to path as LZ4-compressed gob.
func SaveSnapshot(path string, snap *Snapshot) error {
	err := snapshotPersister().Save(path, snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	snap, err := snapshotPersister().Load(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if snap.Table == nil {
		snap.Table = coverage.NewTable()
	}

	if snap.Table.Methods == nil {
		snap.Table.Methods = make(map[string]*coverage.MethodStats)
	}

	return snap, nil
}
