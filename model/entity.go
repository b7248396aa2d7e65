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

package model

// Kind discriminates which of the Decoded tagged union's variants is
// populated.
type Kind uint8

const (
	NodeKind Kind = iota
	WayKind
	RelationKind
)

func (k Kind) String() string {
	switch k {
	case NodeKind:
		return "node"
	case WayKind:
		return "way"
	case RelationKind:
		return "relation"
	default:
		return "unknown"
	}
}

// FeatureType classifies a Decoded record by its dominant tag, as assigned
// by the feature catalog during decode.
type FeatureType uint64

// PlaceOther is the sentinel feature type for uncategorized features
// ("place.other"). Records carrying it are still stored in the quad store
// (so they can serve as dependencies) but are skipped when P2 emits rows;
// it is never a valid feature type for output.
const PlaceOther FeatureType = 0

// Decoded is the tagged union produced by decode and carried through both
// pipeline phases. Exactly one of the per-kind field groups below is
// meaningful for a given record, selected by Kind.
type Decoded struct {
	Kind Kind

	NodeID     NodeID
	WayID      WayID
	RelationID RelationID

	FeatureType FeatureType
	Labels      []byte

	// Way/Relation-only: whether the feature should be treated as an area
	// rather than a line/point, as resolved by the feature catalog.
	IsArea bool

	// Node-only.
	Lat, Lon Degrees

	// Way-only: ordered member node ids, as they appeared on the way.
	NodeIDs []NodeID

	// Relation-only: packed way-member references, see PackMember.
	Members []int64
}

// FeatureID returns the multiplexed feature id for this record.
func (d Decoded) FeatureID() FeatureID {
	switch d.Kind {
	case WayKind:
		return WayFeatureID(d.WayID)
	case RelationKind:
		return RelationFeatureID(d.RelationID)
	default:
		return NodeFeatureID(d.NodeID)
	}
}

// DependencyIDs returns the FeatureIDs of every record this one depends on
// for quad co-location: a way's nodes, or a relation's member ways.
func (d Decoded) DependencyIDs() []FeatureID {
	switch d.Kind {
	case WayKind:
		deps := make([]FeatureID, len(d.NodeIDs))
		for i, id := range d.NodeIDs {
			deps[i] = NodeFeatureID(id)
		}

		return deps
	case RelationKind:
		deps := make([]FeatureID, len(d.Members))

		for i, m := range d.Members {
			wayID, _ := UnpackMember(m)
			deps[i] = WayFeatureID(wayID)
		}

		return deps
	default:
		return nil
	}
}
