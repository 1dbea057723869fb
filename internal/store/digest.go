package store

import (
	"maps"
	"slices"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/ir"
)

// Digest returns the content digest of t. Tables that save and load to
// the same rows share a digest: nil and empty collections hash alike.
func Digest(t *entity.Tables) (string, error) {
	snap := t.Snapshot()
	snap.Rules = slices.Clone(orEmpty(snap.Rules))
	snap.Results = orEmpty(snap.Results)
	snap.Standings = orEmpty(snap.Standings)
	for i := range snap.Rules {
		if snap.Rules[i].PointSystem == nil {
			snap.Rules[i].PointSystem = []int{}
		}
	}
	snap.Meta.Sequences = maps.Clone(snap.Meta.Sequences)
	if snap.Meta.Sequences == nil {
		snap.Meta.Sequences = map[string]int{}
	}
	return ir.Digest(ir.DomainTables, snap)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
