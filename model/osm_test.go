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

package model_test

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"

	"m4o.io/tilequad/model"
)

func TestFromOSMNode(t *testing.T) {
	n := &osm.Node{ID: 5, Lat: 51.5, Lon: -0.1}

	d, ok := model.FromOSM(n, model.FeatureType(3), []byte("x"), false)
	assert.True(t, ok)
	assert.Equal(t, model.NodeKind, d.Kind)
	assert.Equal(t, model.NodeID(5), d.NodeID)
	assert.Equal(t, model.FeatureType(3), d.FeatureType)
	assert.True(t, model.Degrees(51.5).EqualWithin(d.Lat, model.E9))
	assert.True(t, model.Degrees(-0.1).EqualWithin(d.Lon, model.E9))
}

func TestFromOSMWay(t *testing.T) {
	w := &osm.Way{
		ID: 9,
		Nodes: osm.WayNodes{
			{ID: 1}, {ID: 2}, {ID: 3},
		},
	}

	d, ok := model.FromOSM(w, model.FeatureType(4), nil, true)
	assert.True(t, ok)
	assert.Equal(t, model.WayKind, d.Kind)
	assert.Equal(t, model.WayID(9), d.WayID)
	assert.True(t, d.IsArea)
	assert.Equal(t, []model.NodeID{1, 2, 3}, d.NodeIDs)
}

func TestFromOSMRelation(t *testing.T) {
	r := &osm.Relation{
		ID: 3,
		Members: osm.Members{
			{Type: osm.TypeWay, Ref: 10, Role: "outer"},
			{Type: osm.TypeWay, Ref: 11, Role: "inner"},
			{Type: osm.TypeNode, Ref: 99, Role: "label"},
		},
	}

	d, ok := model.FromOSM(r, model.FeatureType(5), nil, false)
	assert.True(t, ok)
	assert.Equal(t, model.RelationKind, d.Kind)
	assert.Equal(t, model.RelationID(3), d.RelationID)
	assert.Equal(t, []int64{
		model.PackMember(10, model.RoleOuter),
		model.PackMember(11, model.RoleInner),
	}, d.Members)
}

func TestFromOSMUnsupported(t *testing.T) {
	_, ok := model.FromOSM(&osm.Changeset{}, model.PlaceOther, nil, false)
	assert.False(t, ok)
}
