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

	"github.com/stretchr/testify/assert"

	"m4o.io/tilequad/model"
)

func TestFeatureIDCongruence(t *testing.T) {
	assert.Equal(t, int64(0), int64(model.NodeFeatureID(0))%3)
	assert.Equal(t, int64(1), int64(model.WayFeatureID(0))%3)
	assert.Equal(t, int64(2), int64(model.RelationFeatureID(0))%3)

	assert.Equal(t, int64(126), int64(model.NodeFeatureID(42)))
	assert.Equal(t, int64(127), int64(model.WayFeatureID(42)))
	assert.Equal(t, int64(128), int64(model.RelationFeatureID(42)))
}

func TestDemuxFeatureID(t *testing.T) {
	osmID, kind := model.DemuxFeatureID(model.NodeFeatureID(42))
	assert.Equal(t, int64(42), osmID)
	assert.Equal(t, model.NodeKind, kind)

	osmID, kind = model.DemuxFeatureID(model.WayFeatureID(42))
	assert.Equal(t, int64(42), osmID)
	assert.Equal(t, model.WayKind, kind)

	osmID, kind = model.DemuxFeatureID(model.RelationFeatureID(42))
	assert.Equal(t, int64(42), osmID)
	assert.Equal(t, model.RelationKind, kind)
}

func TestDemuxDependencyID(t *testing.T) {
	assert.Equal(t, int64(42), model.DemuxDependencyID(model.NodeFeatureID(42)))
}

func TestPackUnpackMember(t *testing.T) {
	for _, tc := range []struct {
		wayID model.WayID
		role  model.Role
	}{
		{1, model.RoleOuter},
		{1, model.RoleInner},
		{987654321, model.RoleOuter},
		{987654321, model.RoleInner},
	} {
		packed := model.PackMember(tc.wayID, tc.role)
		wayID, role := model.UnpackMember(packed)
		assert.Equal(t, tc.wayID, wayID)
		assert.Equal(t, tc.role, role)
	}
}
