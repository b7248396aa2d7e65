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

// NodeID, WayID, and RelationID are OSM object ids. OSM keeps these
// counters separate per object kind, so a node and a way can legitimately
// share the same numeric id; FeatureID below is what keeps them distinct
// once they land in a shared key space.
type (
	NodeID     int64
	WayID      int64
	RelationID int64
)

// FeatureID is the multiplexed identifier used as the primary key in the
// quad store and carried in every encoded spatial-index payload. The original OSM id is recovered
// by dividing by 3; the remainder identifies the object kind.
type FeatureID int64

const featureIDMultiplexer = 3

// Kind discriminants used as the FeatureID remainder.
const (
	nodeRemainder     = 0
	wayRemainder      = 1
	relationRemainder = 2
)

// NodeFeatureID multiplexes a node id: node_fid = osm_id*3+0.
func NodeFeatureID(id NodeID) FeatureID {
	return FeatureID(id)*featureIDMultiplexer + nodeRemainder
}

// WayFeatureID multiplexes a way id: way_fid = osm_id*3+1.
func WayFeatureID(id WayID) FeatureID {
	return FeatureID(id)*featureIDMultiplexer + wayRemainder
}

// RelationFeatureID multiplexes a relation id: relation_fid = osm_id*3+2.
func RelationFeatureID(id RelationID) FeatureID {
	return FeatureID(id)*featureIDMultiplexer + relationRemainder
}

// DemuxFeatureID recovers the original OSM id and the Kind encoded in fid.
func DemuxFeatureID(fid FeatureID) (int64, Kind) {
	osmID := int64(fid) / featureIDMultiplexer

	switch int64(fid) % featureIDMultiplexer {
	case wayRemainder:
		return osmID, WayKind
	case relationRemainder:
		return osmID, RelationKind
	default:
		return osmID, NodeKind
	}
}

// DemuxDependencyID recovers the plain OSM id referenced by a dependency
// FeatureID. Callers already know the expected kind of the dependency (a
// way's NodeIDs are always nodes, a relation's members are always ways), so
// only the id is returned.
func DemuxDependencyID(fid FeatureID) int64 {
	return int64(fid) / featureIDMultiplexer
}

// Role distinguishes the two relation member roles this system carries;
// relation members are restricted to way references.
type Role uint8

const (
	RoleOuter Role = 0
	RoleInner Role = 1
)

// PackMember packs a way member reference and its role into a single int64:
// member = way_id*2 + role.
func PackMember(wayID WayID, role Role) int64 {
	return int64(wayID)<<1 | int64(role)
}

// UnpackMember recovers the way id and role from a value packed by PackMember.
func UnpackMember(member int64) (WayID, Role) {
	return WayID(member >> 1), Role(member & 1)
}
