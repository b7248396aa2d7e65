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

package load_test

import (
	"context"
	"sync"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/tilequad/internal/load"
	"m4o.io/tilequad/internal/xq"
	"m4o.io/tilequad/model"
)

// fakeScanner replays a fixed slice of osm.Object, satisfying osm.Scanner.
type fakeScanner struct {
	objs   []osm.Object
	i      int
	header *osm.Header
}

func (f *fakeScanner) Scan() bool {
	if f.i >= len(f.objs) {
		return false
	}

	f.i++

	return true
}

func (f *fakeScanner) Object() osm.Object { return f.objs[f.i-1] }
func (f *fakeScanner) Err() error         { return nil }
func (f *fakeScanner) Close() error       { return nil }

func (f *fakeScanner) Header() (*osm.Header, error) {
	return f.header, nil
}

// fakeStore is an in-memory xq.Store stub recording every AddRecords call.
type fakeStore struct {
	mu       sync.Mutex
	records  []model.Decoded
	finished bool
	flushed  bool
}

func (s *fakeStore) AddRecords(batch []model.Decoded) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, batch...)

	return nil
}

func (s *fakeStore) Finish() error { s.finished = true; return nil }
func (s *fakeStore) Flush() error  { s.flushed = true; return nil }

func (s *fakeStore) QuadIDs() ([]xq.QuadID, error) { return nil, nil }

func (s *fakeStore) ReadQuadDenorm(xq.QuadID) ([]xq.DenormRecord, error) { return nil, nil }

func (s *fakeStore) Close() error { return nil }

var _ xq.Store = (*fakeStore)(nil)

func TestPipelineRunPartitionsRecords(t *testing.T) {
	scanner := &fakeScanner{
		objs: []osm.Object{
			&osm.Node{ID: 1, Lat: 1, Lon: 2, Tags: osm.Tags{{Key: "amenity", Value: "parking"}}},
			&osm.Way{ID: 2, Tags: osm.Tags{{Key: "highway", Value: "residential"}}, Nodes: osm.WayNodes{{ID: 1}}},
			&osm.Relation{ID: 3, Members: osm.Members{{Type: osm.TypeWay, Ref: 2, Role: "outer"}}},
			&osm.Changeset{ID: 99},
		},
		header: &osm.Header{WritingProgram: "test-writer"},
	}

	store := &fakeStore{}
	opts := load.DefaultOptions()
	opts.Workers = 2
	opts.BatchSize = 1

	p := load.NewPipeline(store, nil, opts)

	header, err := p.Run(context.Background(), scanner)
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, "test-writer", header.WritingProgram)

	assert.True(t, store.finished)
	assert.True(t, store.flushed)
	assert.Len(t, store.records, 3)
}

func TestPipelineRunPropagatesScannerError(t *testing.T) {
	scanner := &erroringScanner{}
	store := &fakeStore{}

	p := load.NewPipeline(store, nil, load.DefaultOptions())

	_, err := p.Run(context.Background(), scanner)
	assert.Error(t, err)
}

type erroringScanner struct{}

func (e *erroringScanner) Scan() bool         { return false }
func (e *erroringScanner) Object() osm.Object { return nil }
func (e *erroringScanner) Err() error         { return assertErr }
func (e *erroringScanner) Close() error       { return nil }

var assertErr = &scanErr{}

type scanErr struct{}

func (*scanErr) Error() string { return "boom" }
