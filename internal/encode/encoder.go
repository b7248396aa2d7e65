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

// Package encode is the adapter over the feature-encoding library spec.md
// §4.4 describes: three pure functions turning a resolved feature plus its
// joined geometry into an opaque byte record, or an empty slice to signal
// "skip".
package encode

import (
	"encoding/gob"

	"github.com/paulmach/orb"

	"m4o.io/tilequad/internal/core"
	"m4o.io/tilequad/model"
)

// Member is the encoder's view of a relation member: a way reference plus
// its role, translated from model's packed representation.
type Member struct {
	WayID model.WayID
	Role  model.Role
}

// Encoder is the Encoder adapter. Each method may return a nil/empty
// slice, which the caller (internal/process) treats as "skip".
type Encoder interface {
	EncodeNode(fid model.FeatureID, point orb.Point, ft model.FeatureType, labels []byte) ([]byte, error)

	EncodeWay(
		fid model.FeatureID, ft model.FeatureType, isArea bool, labels []byte,
		refs []model.NodeID, nodePositions map[model.NodeID]orb.Point,
	) ([]byte, error)

	EncodeRelation(
		fid model.FeatureID, ft model.FeatureType, isArea bool, labels []byte,
		members []Member, nodePositions map[model.NodeID]orb.Point, wayNodeRefs map[model.WayID][]model.NodeID,
	) ([]byte, error)
}

// record is the gob-serialized shape every Encode* method produces.
type record struct {
	FID         model.FeatureID
	FeatureType model.FeatureType
	IsArea      bool
	Labels      []byte
	Geometry    []orb.Point
	Refs        []model.NodeID
	Members     []Member
}

// GobEncoder is the concrete Encoder, serializing records with
// encoding/gob — an opaque format matching spec.md's "external encoding
// library" framing without requiring one.
type GobEncoder struct{}

var _ Encoder = GobEncoder{}

func (GobEncoder) EncodeNode(fid model.FeatureID, point orb.Point, ft model.FeatureType, labels []byte) ([]byte, error) {
	if ft == model.PlaceOther {
		return nil, nil
	}

	return marshal(record{FID: fid, FeatureType: ft, Labels: labels, Geometry: []orb.Point{point}})
}

func (GobEncoder) EncodeWay(
	fid model.FeatureID, ft model.FeatureType, isArea bool, labels []byte,
	refs []model.NodeID, nodePositions map[model.NodeID]orb.Point,
) ([]byte, error) {
	if ft == model.PlaceOther {
		return nil, nil
	}

	geometry := make([]orb.Point, 0, len(refs))

	for _, ref := range refs {
		if pt, ok := nodePositions[ref]; ok {
			geometry = append(geometry, pt)
		}
	}

	return marshal(record{
		FID: fid, FeatureType: ft, IsArea: isArea, Labels: labels,
		Geometry: geometry, Refs: refs,
	})
}

func (GobEncoder) EncodeRelation(
	fid model.FeatureID, ft model.FeatureType, isArea bool, labels []byte,
	members []Member, nodePositions map[model.NodeID]orb.Point, wayNodeRefs map[model.WayID][]model.NodeID,
) ([]byte, error) {
	if ft == model.PlaceOther {
		return nil, nil
	}

	var geometry []orb.Point

	for _, m := range members {
		for _, nodeID := range wayNodeRefs[m.WayID] {
			if pt, ok := nodePositions[nodeID]; ok {
				geometry = append(geometry, pt)
			}
		}
	}

	return marshal(record{
		FID: fid, FeatureType: ft, IsArea: isArea, Labels: labels,
		Geometry: geometry, Members: members,
	})
}

// marshal serializes r through a pooled buffer, avoiding a fresh allocation
// per record in P2's tight per-bucket encode loop.
func marshal(r record) ([]byte, error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	if err := gob.NewEncoder(buf).Encode(r); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}
