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

package cli

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/pkg/errors"

	"m4o.io/tilequad/internal/edb"
	"m4o.io/tilequad/internal/xq"
)

// openPBF opens -f/--pbf, treating "-" as stdin, and wraps it in an
// osmpbf.Scanner. The caller must Close the returned scanner and, unless
// reading stdin, the returned closer.
func openPBF(ctx context.Context) (osm.Scanner, io.Closer, error) {
	if pbfPath == "-" || pbfPath == "" {
		return osmpbf.New(ctx, os.Stdin, runtime.GOMAXPROCS(-1)), nil, nil
	}

	f, err := os.Open(pbfPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening pbf input %s", pbfPath)
	}

	return osmpbf.New(ctx, f, runtime.GOMAXPROCS(-1)), f, nil
}

func openStore(dir string) (*xq.BoltStore, error) {
	if dir == "" {
		return nil, errors.New("missing required --xq (or --outdir) directory")
	}

	return xq.OpenBoltStore(dir)
}

func openIndex(dir string) (*edb.BoltIndex, error) {
	if dir == "" {
		return nil, errors.New("missing required --edb (or --outdir) directory")
	}

	return edb.OpenBoltIndex(dir)
}
