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

// Package load is phase P1: a parallel producer/consumer pipeline that
// streams PBF blobs, decodes OSM primitives, and partitions them into the
// quad-bucketed store.
package load

import "m4o.io/tilequad/internal/feature"

// Defaults for Options, matching spec.md §4.5.
const (
	DefaultWorkers   = 4
	DefaultChanCap   = 1000
	DefaultBatchSize = 50_000
)

// Options configures a Pipeline's concurrency shape.
type Options struct {
	// Workers is W, the number of batch-building consumer goroutines.
	Workers int

	// ChanCap is C, the bounded channel capacity between the producer (the
	// scanner loop) and the decode workers.
	ChanCap int

	// BatchSize is the worker-local batch capacity before a flush to the
	// quad store.
	BatchSize int

	// Catalog resolves feature type and area classification from tags.
	Catalog *feature.Catalog
}

// DefaultOptions returns spec.md §4.5's defaults: W=4, C=1000, BATCH_SIZE=50000.
func DefaultOptions() Options {
	return Options{
		Workers:   DefaultWorkers,
		ChanCap:   DefaultChanCap,
		BatchSize: DefaultBatchSize,
		Catalog:   feature.NewCatalog(),
	}
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}

	if o.ChanCap <= 0 {
		o.ChanCap = DefaultChanCap
	}

	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}

	if o.Catalog == nil {
		o.Catalog = feature.NewCatalog()
	}

	return o
}
