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

// Package xq is the quad-bucketed external store spec.md's §4.2 XQ adapter
// describes: a key/value engine that co-locates a feature with its
// structural dependencies so P2 can denormalize one bucket at a time.
package xq

import "m4o.io/tilequad/model"

// QuadID identifies one spatial bucket. Buckets are quantized lon/lat
// tiles, the same E7-scaled fixed-point representation the teacher's
// Degrees.E7 uses, so bucketing is just integer division by a tile size.
type QuadID uint64

// tileE7 is the tile edge length in ten-millionths of a degree (roughly
// 0.1 degrees per tile at the equator); coarse enough that most ways and
// short relations land fully inside one bucket along with their nodes.
const tileE7 = 1_000_000

// QuadKey computes the bucket a (lon, lat) coordinate belongs to.
func QuadKey(lon, lat model.Degrees) QuadID {
	x := uint32(lon.E7()/tileE7 + 1<<20)
	y := uint32(lat.E7()/tileE7 + 1<<20)

	return QuadID(uint64(x)<<32 | uint64(y))
}
