// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xq

import (
	"github.com/paulmach/orb"

	"m4o.io/tilequad/model"
)

// Dependency is one structural dependency of a record, as returned by
// ReadQuadDenorm: a node reports a position, a way reports its ref list —
// never both.
type Dependency struct {
	ID       int64
	Position *orb.Point
	Refs     []int64
}

// GetPosition reports the dependency's position and whether it is a node
// dependency at all.
func (d Dependency) GetPosition() (orb.Point, bool) {
	if d.Position == nil {
		return orb.Point{}, false
	}

	return *d.Position, true
}

// DenormRecord is one (record, dependencies) pair read back from a bucket.
type DenormRecord struct {
	RecordID     model.FeatureID
	Decoded      model.Decoded
	Dependencies []Dependency
}

// Store is the XQ adapter spec.md §4.2 describes: an external quad-bucketed
// record store. AddRecords/Finish/Flush drive phase P1; QuadIDs/
// ReadQuadDenorm drive phase P2.
type Store interface {
	// AddRecords appends a batch. Idempotency is not required; errors are
	// non-fatal to the caller's phase (see internal/load).
	AddRecords(batch []model.Decoded) error

	// Finish flushes internal quad-building state. Must be called exactly
	// once after the last AddRecords of P1; behavior of AddRecords after
	// Finish is undefined.
	Finish() error

	// Flush persists the store to disk.
	Flush() error

	// QuadIDs returns the set of buckets to scan in P2, in unspecified order.
	QuadIDs() ([]QuadID, error)

	// ReadQuadDenorm reads one bucket with dependencies pre-joined.
	ReadQuadDenorm(q QuadID) ([]DenormRecord, error)

	// Close releases underlying resources (not part of spec.md's adapter
	// surface; needed to cleanly close the backing bbolt file).
	Close() error
}
