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

package edb

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

const bucketRows = "rows"

// BoltIndex is the concrete EDB adapter, backed by a single bbolt file.
// Each row's key is built from the low end of its lon/lat Coord pair
// (Scalar value, or Interval.Lo) as fixed-width big-endian, order-preserving
// float encodings (see orderedBits), followed
// by a monotonic sequence number — so iterating the bucket in key order is
// a lon-major, lat-minor range scan, realizing the "interval keys"
// spec.md §4.3 leaves abstract as a concrete bbolt key encoding.
type BoltIndex struct {
	db *bbolt.DB
}

var _ Index = (*BoltIndex)(nil)

// OpenBoltIndex opens (creating if needed) a spatial index rooted at dir.
func OpenBoltIndex(dir string) (*BoltIndex, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating edb directory %s", dir)
	}

	db, err := bbolt.Open(filepath.Join(dir, "edb.bolt"), 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening edb index %s", dir)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRows))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "initializing edb bucket")
	}

	return &BoltIndex{db: db}, nil
}

// Batch atomically applies a batch of row inserts in a single bbolt
// transaction.
func (idx *BoltIndex) Batch(rows []Row) error {
	return idx.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRows))

		for _, row := range rows {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}

			if err := b.Put(rowKey(row, seq), row.Payload); err != nil {
				return err
			}
		}

		return nil
	})
}

// Sync is a durability barrier; bbolt already fsyncs on every committed
// write transaction, so this simply forces one more empty commit to give
// callers an explicit point to block on, matching spec.md's two-call
// shutdown sequence (Batch*, then Sync once).
func (idx *BoltIndex) Sync() error {
	return idx.db.Update(func(tx *bbolt.Tx) error { return nil })
}

// Close releases the underlying bbolt file handle.
func (idx *BoltIndex) Close() error {
	return idx.db.Close()
}

func rowKey(row Row, seq uint64) []byte {
	key := make([]byte, 24)

	binary.BigEndian.PutUint64(key[0:8], orderedBits(coordLow(row.Lon)))
	binary.BigEndian.PutUint64(key[8:16], orderedBits(coordLow(row.Lat)))
	binary.BigEndian.PutUint64(key[16:24], seq)

	return key
}

// orderedBits maps f to a uint64 whose unsigned order matches f's numeric
// order, so negative coordinates sort before positive ones.
func orderedBits(f float64) uint64 {
	b := math.Float64bits(f)
	if b>>63 == 1 {
		return ^b
	}

	return b | 1<<63
}

func coordLow(c Coord) float64 {
	if c.IsInterval {
		return c.Interval.Lo
	}

	return float64(c.Scalar)
}
