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

package load

import (
	"context"

	"github.com/destel/rill"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"

	"m4o.io/tilequad/internal/feature"
	"m4o.io/tilequad/internal/progress"
	"m4o.io/tilequad/internal/xq"
	"m4o.io/tilequad/model"
)

// headerSource is satisfied by *osmpbf.Scanner; narrowed to an interface so
// any osm.Scanner can be handed to Run, with header passthrough enabled
// whenever the concrete scanner happens to support it.
type headerSource interface {
	Header() (*osm.Header, error)
}

// Pipeline is phase P1: a producer reading an osm.Scanner, decoding
// elements across Workers concurrent goroutines (via rill.OrderedMap,
// the same fan-out primitive the teacher's own blob decoder uses), batching
// the result, and committing each batch to the Store.
type Pipeline struct {
	store    xq.Store
	reporter *progress.Reporter
	opts     Options
}

// NewPipeline builds a load Pipeline writing into store, reporting progress
// through reporter (which may be nil to disable reporting).
func NewPipeline(store xq.Store, reporter *progress.Reporter, opts Options) *Pipeline {
	return &Pipeline{store: store, reporter: reporter, opts: opts.withDefaults()}
}

// Run drains scanner to completion, partitioning every node/way/relation it
// yields into the Pipeline's Store. It returns the source file's header when
// the scanner exposes one (osmpbf.Scanner does; osmxml's does not), and
// calls Store.Finish/Flush once the last batch has landed.
func (p *Pipeline) Run(ctx context.Context, scanner osm.Scanner) (*model.Header, error) {
	stage := progress.StagePBF
	p.reportStart(stage)
	defer p.reportEnd(stage)

	objs := scanObjects(ctx, scanner, p.opts.ChanCap)

	supported := rill.OrderedFilter(objs, p.opts.Workers, func(obj osm.Object) (bool, error) {
		_, ok := tagsOf(obj)
		return ok, nil
	})

	decoded := rill.OrderedMap(supported, p.opts.Workers, func(obj osm.Object) (model.Decoded, error) {
		d, _ := p.decode(obj)
		return d, nil
	})

	batches := rill.Batch(decoded, p.opts.BatchSize, -1)

	if err := p.consume(batches); err != nil {
		return nil, err
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning pbf input")
	}

	if err := p.store.Finish(); err != nil {
		return nil, errors.Wrap(err, "finishing quad store")
	}

	if err := p.store.Flush(); err != nil {
		return nil, errors.Wrap(err, "flushing quad store")
	}

	sigolo.Infof("load phase complete")

	return headerOf(scanner), nil
}

// consume drains every batch, committing it to the store. A batching-stage
// error from upstream is fatal and stops the phase (scanner failures are not
// seen here; Run checks scanner.Err once consume returns); an
// add_records error is recorded and the batch dropped, per spec.md §4.2/§7 —
// ingestion continues.
func (p *Pipeline) consume(batches <-chan rill.Try[[]model.Decoded]) error {
	for res := range batches {
		if res.Error != nil {
			drain(batches)
			return errors.Wrap(res.Error, "decoding pbf elements")
		}

		if err := p.store.AddRecords(res.Value); err != nil {
			p.reportErr(errors.Wrap(err, "adding records"))
			continue
		}

		p.reportAdd(len(res.Value))
	}

	return nil
}

func drain(batches <-chan rill.Try[[]model.Decoded]) {
	for range batches {
	}
}

// scanObjects turns a blocking osm.Scanner into a rill.Try stream buffered
// to capacity, the way the teacher's own blob decoder
// (internal/decoder/blob.go) turns a blocking reader into one.
func scanObjects(ctx context.Context, scanner osm.Scanner, capacity int) <-chan rill.Try[osm.Object] {
	ch := make(chan rill.Try[osm.Object], capacity)

	go func() {
		defer close(ch)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			case ch <- rill.Try[osm.Object]{Value: scanner.Object()}:
			}
		}
	}()

	return ch
}

func (p *Pipeline) decode(obj osm.Object) (model.Decoded, bool) {
	tags, ok := tagsOf(obj)
	if !ok {
		return model.Decoded{}, false
	}

	tagMap := tags.Map()

	ft := p.opts.Catalog.Resolve(tagMap)
	isArea := p.opts.Catalog.IsArea(tagMap)

	var labels []byte
	if ft != model.PlaceOther {
		labels = feature.EncodeLabels(tagMap)
	}

	return model.FromOSM(obj, ft, labels, isArea)
}

func tagsOf(obj osm.Object) (osm.Tags, bool) {
	switch o := obj.(type) {
	case *osm.Node:
		return o.Tags, true
	case *osm.Way:
		return o.Tags, true
	case *osm.Relation:
		return o.Tags, true
	default:
		return nil, false
	}
}

func headerOf(scanner osm.Scanner) *model.Header {
	hs, ok := scanner.(headerSource)
	if !ok {
		return nil
	}

	h, err := hs.Header()
	if err != nil {
		sigolo.Debugf("no pbf header available: %s", err)
		return nil
	}

	return headerFromOSM(h)
}

func headerFromOSM(h *osm.Header) *model.Header {
	if h == nil {
		return nil
	}

	var bbox *model.BoundingBox
	if h.Bounds != nil {
		box := model.InitialBoundingBox()
		box.ExpandWithLatLng(model.Degrees(h.Bounds.MinLat), model.Degrees(h.Bounds.MinLon))
		box.ExpandWithLatLng(model.Degrees(h.Bounds.MaxLat), model.Degrees(h.Bounds.MaxLon))
		bbox = box
	}

	return &model.Header{
		BoundingBox:                      bbox,
		RequiredFeatures:                 h.RequiredFeatures,
		OptionalFeatures:                 h.OptionalFeatures,
		WritingProgram:                   h.WritingProgram,
		Source:                           h.Source,
		OsmosisReplicationTimestamp:      h.ReplicationTimestamp,
		OsmosisReplicationSequenceNumber: h.ReplicationSeqNumber,
		OsmosisReplicationBaseURL:        h.ReplicationBaseURL,
	}
}

func (p *Pipeline) reportStart(stage progress.Stage) {
	if p.reporter != nil {
		p.reporter.Start(stage)
	}
}

func (p *Pipeline) reportEnd(stage progress.Stage) {
	if p.reporter != nil {
		p.reporter.End(stage)
	}
}

func (p *Pipeline) reportAdd(n int) {
	if p.reporter != nil {
		p.reporter.Add(progress.StagePBF, n)
	}
}

func (p *Pipeline) reportErr(err error) {
	if p.reporter != nil {
		p.reporter.PushErr(progress.StagePBF, err)
	}
}
