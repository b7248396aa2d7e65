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

// Package process is phase P2: a single-threaded pass over the quad store's
// buckets that denormalizes each feature's geometry, computes its bbox,
// encodes it, and batches the result into the spatial index.
package process

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"m4o.io/tilequad/internal/edb"
	"m4o.io/tilequad/internal/encode"
	"m4o.io/tilequad/internal/progress"
	"m4o.io/tilequad/internal/xq"
	"m4o.io/tilequad/model"
)

// Pipeline is phase P2.
type Pipeline struct {
	store    xq.Store
	index    edb.Index
	encoder  encode.Encoder
	reporter *progress.Reporter
}

// NewPipeline builds a process Pipeline reading from store, encoding with
// enc, and writing into index. reporter may be nil to disable reporting.
func NewPipeline(store xq.Store, index edb.Index, enc encode.Encoder, reporter *progress.Reporter) *Pipeline {
	return &Pipeline{store: store, index: index, encoder: enc, reporter: reporter}
}

// Run iterates every quad bucket, denormalizing and encoding each record in
// it, then blocks on one EDB.Batch call per bucket before advancing. It
// blocks on a final EDB.Sync once every bucket has been applied.
func (p *Pipeline) Run() error {
	stage := progress.StageProcess
	p.reportStart(stage)

	defer p.reportEnd(stage)

	quads, err := p.store.QuadIDs()
	if err != nil {
		return errors.Wrap(err, "listing quad ids")
	}

	for _, q := range quads {
		if err := p.processQuad(q); err != nil {
			return err
		}
	}

	if err := p.index.Sync(); err != nil {
		return errors.Wrap(err, "syncing spatial index")
	}

	return nil
}

func (p *Pipeline) processQuad(q xq.QuadID) error {
	records, err := p.store.ReadQuadDenorm(q)
	if err != nil {
		return errors.Wrapf(err, "reading quad %d", q)
	}

	rows := make([]edb.Row, 0, len(records))

	for _, rec := range records {
		row, ok, err := p.encodeRecord(rec)
		if err != nil {
			return errors.Wrapf(err, "encoding record %d", rec.RecordID)
		}

		if ok {
			rows = append(rows, row)
		}
	}

	if err := p.index.Batch(rows); err != nil {
		return errors.Wrapf(err, "batching quad %d", q)
	}

	p.reportTick(len(records))

	return nil
}

func (p *Pipeline) encodeRecord(rec xq.DenormRecord) (edb.Row, bool, error) {
	switch rec.Decoded.Kind {
	case model.WayKind:
		return p.encodeWay(rec)
	case model.RelationKind:
		return p.encodeRelation(rec)
	default:
		return p.encodeNode(rec)
	}
}

func (p *Pipeline) encodeNode(rec xq.DenormRecord) (edb.Row, bool, error) {
	d := rec.Decoded
	if d.FeatureType == model.PlaceOther {
		return edb.Row{}, false, nil
	}

	point := orb.Point{float64(d.Lon), float64(d.Lat)}

	b, err := p.encoder.EncodeNode(d.FeatureID(), point, d.FeatureType, d.Labels)
	if err != nil {
		return edb.Row{}, false, err
	}

	if len(b) == 0 {
		return edb.Row{}, false, nil
	}

	return edb.Row{Lon: edb.ScalarCoord(point.Lon()), Lat: edb.ScalarCoord(point.Lat()), Payload: b}, true, nil
}

func (p *Pipeline) encodeWay(rec xq.DenormRecord) (edb.Row, bool, error) {
	d := rec.Decoded
	if d.FeatureType == model.PlaceOther {
		return edb.Row{}, false, nil
	}

	positions := make(map[model.NodeID]orb.Point)

	for _, dep := range rec.Dependencies {
		if pt, ok := dep.GetPosition(); ok {
			positions[model.NodeID(dep.ID)] = pt
		}
	}

	if len(positions) <= 1 {
		return edb.Row{}, false, nil
	}

	bbox := bboxOf(positions)

	b, err := p.encoder.EncodeWay(d.FeatureID(), d.FeatureType, d.IsArea, d.Labels, d.NodeIDs, positions)
	if err != nil {
		return edb.Row{}, false, err
	}

	if len(b) == 0 {
		return edb.Row{}, false, nil
	}

	return edb.Row{
		Lon:     edb.IntervalCoord(bbox.minLon, bbox.maxLon),
		Lat:     edb.IntervalCoord(bbox.minLat, bbox.maxLat),
		Payload: b,
	}, true, nil
}

func (p *Pipeline) encodeRelation(rec xq.DenormRecord) (edb.Row, bool, error) {
	d := rec.Decoded
	if d.FeatureType == model.PlaceOther {
		return edb.Row{}, false, nil
	}

	nodeDeps := make(map[model.NodeID]orb.Point)
	wayRefs := make(map[model.WayID][]model.NodeID)

	for _, dep := range rec.Dependencies {
		if pt, ok := dep.GetPosition(); ok {
			nodeDeps[model.NodeID(dep.ID)] = pt
			continue
		}

		if len(dep.Refs) == 0 {
			continue
		}

		refs := make([]model.NodeID, len(dep.Refs))
		for i, r := range dep.Refs {
			refs[i] = model.NodeID(r)
		}

		wayRefs[model.WayID(dep.ID)] = refs
	}

	if len(nodeDeps) <= 1 {
		return edb.Row{}, false, nil
	}

	bbox := bboxOf(nodeDeps)

	members := make([]encode.Member, len(d.Members))
	for i, m := range d.Members {
		wayID, role := model.UnpackMember(m)
		members[i] = encode.Member{WayID: wayID, Role: role}
	}

	// Open Question O1: the relation path applies the same empty-encoding
	// gate as node/way, rather than unconditionally pushing the row.
	b, err := p.encoder.EncodeRelation(d.FeatureID(), d.FeatureType, d.IsArea, d.Labels, members, nodeDeps, wayRefs)
	if err != nil {
		return edb.Row{}, false, err
	}

	if len(b) == 0 {
		return edb.Row{}, false, nil
	}

	return edb.Row{
		Lon:     edb.IntervalCoord(bbox.minLon, bbox.maxLon),
		Lat:     edb.IntervalCoord(bbox.minLat, bbox.maxLat),
		Payload: b,
	}, true, nil
}

type bbox struct {
	minLon, minLat, maxLon, maxLat float64
}

func bboxOf(positions map[model.NodeID]orb.Point) bbox {
	box := model.InitialBoundingBox()

	for _, pt := range positions {
		box.ExpandWithLatLng(model.Degrees(pt.Lat()), model.Degrees(pt.Lon()))
	}

	return bbox{
		minLon: float64(box.Left), minLat: float64(box.Bottom),
		maxLon: float64(box.Right), maxLat: float64(box.Top),
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

func (p *Pipeline) reportTick(inputCount int) {
	if p.reporter != nil {
		p.reporter.Add(progress.StageProcess, inputCount)
	}
}
