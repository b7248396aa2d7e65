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

// Package feature resolves raw OSM tags into the catalog token and opaque
// label bytes that model.Decoded carries, standing in for the external
// feature-encoding library spec.md leaves abstract.
package feature

import (
	"hash/fnv"

	"m4o.io/tilequad/model"
)

// rule is one row of the feature-type catalog. An empty value matches any
// value for key (a wildcard row).
type rule struct {
	key   string
	value string
	ft    model.FeatureType
}

// Catalog classifies an OSM tag set into a model.FeatureType token. Rules
// are ordered first-match-wins; NewCatalog places every key=value rule for
// a key ahead of that key's wildcard row, so a wildcard only ever fires
// when no more specific rule matched.
type Catalog struct {
	rules    []rule
	areaKeys map[string]struct{}
}

// Token hashes a (key, value) pair into the 64-bit feature-type token
// space with FNV-1a, so catalog entries never need manual numbering.
func Token(key, value string) model.FeatureType {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	_, _ = h.Write([]byte{'='})
	_, _ = h.Write([]byte(value))

	return model.FeatureType(h.Sum64())
}

// NewCatalog returns the built-in rule table: a small, ordered set of the
// most common OSM top-level tag keys, modelled on the tag classification
// hauke96-simple-osm-queries performs over its TagIndex.
func NewCatalog() *Catalog {
	c := &Catalog{
		areaKeys: map[string]struct{}{
			"building": {}, "landuse": {}, "leisure": {}, "natural": {},
		},
	}

	add := func(key, value string) {
		c.rules = append(c.rules, rule{key: key, value: value, ft: Token(key, value)})
	}

	// Specific rules first, so they always outrank their key's wildcard.
	add("natural", "water")
	add("natural", "coastline")
	add("waterway", "riverbank")
	add("leisure", "park")
	add("amenity", "parking")

	// Wildcard rules: any value for the key resolves to one token.
	add("highway", "")
	add("building", "")
	add("landuse", "")
	add("natural", "")
	add("waterway", "")
	add("leisure", "")
	add("amenity", "")
	add("place", "")
	add("boundary", "")
	add("railway", "")
	add("aeroway", "")

	return c
}

// Resolve returns the first matching rule's feature type, or
// model.PlaceOther if no rule matches — the pipeline's "uncategorised,
// drop on emit" sentinel.
func (c *Catalog) Resolve(tags map[string]string) model.FeatureType {
	for _, r := range c.rules {
		v, ok := tags[r.key]
		if !ok {
			continue
		}

		if r.value == "" || r.value == v {
			return r.ft
		}
	}

	return model.PlaceOther
}

// IsArea reports whether a tag set should be treated as an area rather
// than a line/point: an explicit area=yes|no tag wins, otherwise presence
// of any of the catalog's area-implying keys (building, landuse, leisure,
// natural) decides.
func (c *Catalog) IsArea(tags map[string]string) bool {
	if v, ok := tags["area"]; ok {
		return v == "yes"
	}

	for k := range tags {
		if _, ok := c.areaKeys[k]; ok {
			return true
		}
	}

	return false
}
