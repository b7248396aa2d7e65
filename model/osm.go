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

import "github.com/paulmach/osm"

// FromOSM projects a decoded paulmach/osm object into the Decoded tagged
// union, given the feature type, label encoding, and area classification
// already resolved by the feature catalog (isArea is ignored for nodes).
// The second return value is false for object kinds this system never
// carries forward (anything other than node, way, relation).
func FromOSM(obj osm.Object, ft FeatureType, labels []byte, isArea bool) (Decoded, bool) {
	switch o := obj.(type) {
	case *osm.Node:
		return FromOSMNode(o, ft, labels), true
	case *osm.Way:
		return FromOSMWay(o, ft, labels, isArea), true
	case *osm.Relation:
		return FromOSMRelation(o, ft, labels, isArea), true
	default:
		return Decoded{}, false
	}
}

// FromOSMNode projects a single OSM node.
func FromOSMNode(n *osm.Node, ft FeatureType, labels []byte) Decoded {
	return Decoded{
		Kind:        NodeKind,
		NodeID:      NodeID(n.ID),
		FeatureType: ft,
		Labels:      labels,
		Lat:         Degrees(n.Lat),
		Lon:         Degrees(n.Lon),
	}
}

// FromOSMWay projects a single OSM way, keeping only its member node ids in
// order; coordinates are joined in later during denormalization.
func FromOSMWay(w *osm.Way, ft FeatureType, labels []byte, isArea bool) Decoded {
	nodeIDs := make([]NodeID, len(w.Nodes))
	for i, wn := range w.Nodes {
		nodeIDs[i] = NodeID(wn.ID)
	}

	return Decoded{
		Kind:        WayKind,
		WayID:       WayID(w.ID),
		FeatureType: ft,
		Labels:      labels,
		IsArea:      isArea,
		NodeIDs:     nodeIDs,
	}
}

// FromOSMRelation projects a single OSM relation. Members are restricted to
// way references; node and relation members are dropped, matching the
// multipolygon-style relations this system supports.
func FromOSMRelation(r *osm.Relation, ft FeatureType, labels []byte, isArea bool) Decoded {
	members := make([]int64, 0, len(r.Members))

	for _, m := range r.Members {
		if m.Type != osm.TypeWay {
			continue
		}

		role := RoleOuter
		if m.Role == "inner" {
			role = RoleInner
		}

		members = append(members, PackMember(WayID(m.Ref), role))
	}

	return Decoded{
		Kind:        RelationKind,
		RelationID:  RelationID(r.ID),
		FeatureType: ft,
		Labels:      labels,
		IsArea:      isArea,
		Members:     members,
	}
}
