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

// Package edb is the spatial index spec.md's §4.3 EDB adapter describes: a
// batch-insertable 2-D store keyed by scalar or interval coordinates.
package edb

// Scalar is a single-value coordinate (a node's exact lon or lat).
type Scalar float64

// Interval is a [Lo, Hi] coordinate range (a way/relation's bbox extent
// along one axis).
type Interval struct {
	Lo, Hi float64
}

// Coord is either a Scalar or an Interval along one axis. Exactly one of
// the two fields is meaningful, selected by IsInterval.
type Coord struct {
	IsInterval bool
	Scalar     Scalar
	Interval   Interval
}

// ScalarCoord builds a point-valued Coord.
func ScalarCoord(v float64) Coord {
	return Coord{Scalar: Scalar(v)}
}

// IntervalCoord builds a range-valued Coord.
func IntervalCoord(lo, hi float64) Coord {
	return Coord{IsInterval: true, Interval: Interval{Lo: lo, Hi: hi}}
}

// Row is one insert to apply in a batch: a 2-D point (lon axis, lat axis)
// plus its opaque encoded payload.
type Row struct {
	Lon     Coord
	Lat     Coord
	Payload []byte
}

// Index is the EDB adapter. Both calls are synchronous in this concrete
// implementation (see SPEC_FULL.md §9.3, Open Question O2) — P2 blocks the current
// quad's processing on each call before advancing, exactly as spec.md §5
// requires regardless of the backing transport's sync/async nature.
type Index interface {
	// Batch atomically applies a batch of row inserts.
	Batch(rows []Row) error

	// Sync is a durability barrier, called once at the end of P2.
	Sync() error

	// Close releases underlying resources.
	Close() error
}
