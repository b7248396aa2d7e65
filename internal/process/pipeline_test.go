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

package process_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/tilequad/internal/edb"
	"m4o.io/tilequad/internal/encode"
	"m4o.io/tilequad/internal/process"
	"m4o.io/tilequad/internal/xq"
	"m4o.io/tilequad/model"
)

// fakeStore serves a single, fixed bucket of DenormRecords.
type fakeStore struct {
	records []xq.DenormRecord
}

func (s *fakeStore) AddRecords([]model.Decoded) error             { return nil }
func (s *fakeStore) Finish() error                                { return nil }
func (s *fakeStore) Flush() error                                 { return nil }
func (s *fakeStore) QuadIDs() ([]xq.QuadID, error)                { return []xq.QuadID{1}, nil }
func (s *fakeStore) ReadQuadDenorm(xq.QuadID) ([]xq.DenormRecord, error) {
	return s.records, nil
}
func (s *fakeStore) Close() error { return nil }

var _ xq.Store = (*fakeStore)(nil)

// fakeIndex records every row batched into it.
type fakeIndex struct {
	rows   []edb.Row
	synced bool
}

func (idx *fakeIndex) Batch(rows []edb.Row) error { idx.rows = append(idx.rows, rows...); return nil }
func (idx *fakeIndex) Sync() error                { idx.synced = true; return nil }
func (idx *fakeIndex) Close() error               { return nil }

var _ edb.Index = (*fakeIndex)(nil)

func ptr(p orb.Point) *orb.Point { return &p }

func TestProcessS1SingleNode(t *testing.T) {
	store := &fakeStore{records: []xq.DenormRecord{
		{
			RecordID: model.NodeFeatureID(42),
			Decoded: model.Decoded{
				Kind: model.NodeKind, NodeID: 42,
				FeatureType: model.FeatureType(1), Lon: 10.0, Lat: 20.0,
			},
		},
	}}
	index := &fakeIndex{}

	p := process.NewPipeline(store, index, encode.GobEncoder{}, nil)
	require.NoError(t, p.Run())

	require.Len(t, index.rows, 1)
	assert.Equal(t, edb.ScalarCoord(10.0), index.rows[0].Lon)
	assert.Equal(t, edb.ScalarCoord(20.0), index.rows[0].Lat)
	assert.True(t, index.synced)
}

func TestProcessS2PlaceOtherSkipped(t *testing.T) {
	store := &fakeStore{records: []xq.DenormRecord{
		{
			RecordID: model.NodeFeatureID(42),
			Decoded: model.Decoded{
				Kind: model.NodeKind, NodeID: 42,
				FeatureType: model.PlaceOther, Lon: 10.0, Lat: 20.0,
			},
		},
	}}
	index := &fakeIndex{}

	p := process.NewPipeline(store, index, encode.GobEncoder{}, nil)
	require.NoError(t, p.Run())
	assert.Empty(t, index.rows)
}

func TestProcessS3ShortWaySkipped(t *testing.T) {
	store := &fakeStore{records: []xq.DenormRecord{
		{
			RecordID: model.WayFeatureID(7),
			Decoded: model.Decoded{
				Kind: model.WayKind, WayID: 7,
				FeatureType: model.FeatureType(2), NodeIDs: []model.NodeID{1},
			},
			Dependencies: []xq.Dependency{
				{ID: 1, Position: ptr(orb.Point{0, 0})},
			},
		},
	}}
	index := &fakeIndex{}

	p := process.NewPipeline(store, index, encode.GobEncoder{}, nil)
	require.NoError(t, p.Run())
	assert.Empty(t, index.rows)
}

func TestProcessS4NormalWay(t *testing.T) {
	store := &fakeStore{records: []xq.DenormRecord{
		{
			RecordID: model.WayFeatureID(7),
			Decoded: model.Decoded{
				Kind: model.WayKind, WayID: 7,
				FeatureType: model.FeatureType(3), NodeIDs: []model.NodeID{1, 2, 3},
			},
			Dependencies: []xq.Dependency{
				{ID: 1, Position: ptr(orb.Point{0, 0})},
				{ID: 2, Position: ptr(orb.Point{1, 0})},
				{ID: 3, Position: ptr(orb.Point{1, 1})},
			},
		},
	}}
	index := &fakeIndex{}

	p := process.NewPipeline(store, index, encode.GobEncoder{}, nil)
	require.NoError(t, p.Run())

	require.Len(t, index.rows, 1)
	assert.Equal(t, edb.IntervalCoord(0, 1), index.rows[0].Lon)
	assert.Equal(t, edb.IntervalCoord(0, 1), index.rows[0].Lat)
}

func TestProcessS5RelationOfTwoWays(t *testing.T) {
	store := &fakeStore{records: []xq.DenormRecord{
		{
			RecordID: model.RelationFeatureID(9),
			Decoded: model.Decoded{
				Kind: model.RelationKind, RelationID: 9,
				FeatureType: model.FeatureType(4),
				Members: []int64{
					model.PackMember(5, model.RoleOuter),
					model.PackMember(6, model.RoleInner),
				},
			},
			Dependencies: []xq.Dependency{
				{ID: 5, Refs: []int64{1}},
				{ID: 1, Position: ptr(orb.Point{0, 0})},
				{ID: 6, Refs: []int64{2}},
				{ID: 2, Position: ptr(orb.Point{2, 2})},
			},
		},
	}}
	index := &fakeIndex{}

	p := process.NewPipeline(store, index, encode.GobEncoder{}, nil)
	require.NoError(t, p.Run())

	require.Len(t, index.rows, 1)
	assert.Equal(t, edb.IntervalCoord(0, 2), index.rows[0].Lon)
	assert.Equal(t, edb.IntervalCoord(0, 2), index.rows[0].Lat)
}

func TestProcessEmptyBucketSet(t *testing.T) {
	store := &fakeStore{}
	index := &fakeIndex{}

	p := process.NewPipeline(store, index, encode.GobEncoder{}, nil)
	require.NoError(t, p.Run())
	assert.Empty(t, index.rows)
	assert.True(t, index.synced)
}
