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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/paulmach/osm"
	"github.com/spf13/cobra"

	"m4o.io/tilequad/internal/feature"
	"m4o.io/tilequad/internal/load"
	"m4o.io/tilequad/internal/progress"
	"m4o.io/tilequad/model"
)

var statOnly bool

func init() {
	RootCmd.AddCommand(pbfCmd)
	pbfCmd.Flags().BoolVar(&statOnly, "stat", false, "print the PBF header and exit without writing to --xq")
}

var pbfCmd = &cobra.Command{
	Use:   "pbf",
	Short: "Run phase P1: decode a PBF file into the quad store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		scanner, closer, err := openPBF(ctx)
		if err != nil {
			return err
		}

		if closer != nil {
			defer closer.Close()
		}

		defer scanner.Close()

		if statOnly {
			return runStat(scanner)
		}

		xqPath, _ := resolveDirs()

		store, err := openStore(xqPath)
		if err != nil {
			return err
		}

		defer store.Close()

		reporter := progress.NewReporter()
		defer reporter.Close()

		p := load.NewPipeline(store, reporter, load.DefaultOptions())

		_, err = p.Run(ctx, scanner)

		return err
	},
}

// headerCapable is satisfied by *osmpbf.Scanner; a narrower local
// restatement of the same duck type internal/load checks, since that one
// is unexported.
type headerCapable interface {
	Header() (*osm.Header, error)
}

// statTags duplicates load's own unexported tagsOf switch: the set of OSM
// object kinds the pipeline partitions, here used only to decide what to
// count.
func statTags(obj osm.Object) (osm.Tags, bool) {
	switch o := obj.(type) {
	case *osm.Node:
		return o.Tags, true
	case *osm.Way:
		return o.Tags, true
	case *osm.Relation:
		return o.Tags, true
	default:
		return nil, false
	}
}

// runStat implements the "pbf --stat" introspection modeled on the teacher's
// cmd/pbf/info command: print the source header plus the node/way/relation
// counts P1 would decode, without writing anything to --xq.
func runStat(scanner osm.Scanner) error {
	hs, ok := scanner.(headerCapable)
	if !ok {
		return fmt.Errorf("scanner does not expose a header")
	}

	h, err := hs.Header()
	if err != nil {
		return err
	}

	catalog := feature.NewCatalog()

	var nodeCount, wayCount, relationCount, taggedCount int64

	for scanner.Scan() {
		obj := scanner.Object()

		tags, ok := statTags(obj)
		if !ok {
			continue
		}

		switch obj.(type) {
		case *osm.Node:
			nodeCount++
		case *osm.Way:
			wayCount++
		case *osm.Relation:
			relationCount++
		}

		tagMap := tags.Map()
		if catalog.Resolve(tagMap) == model.PlaceOther {
			continue
		}

		decoded, err := feature.DecodeLabels(feature.EncodeLabels(tagMap))
		if err != nil {
			return err
		}

		if len(decoded) > 0 {
			taggedCount++
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("RequiredFeatures: %s\n", strings.Join(h.RequiredFeatures, ", "))
	fmt.Printf("OptionalFeatures: %s\n", strings.Join(h.OptionalFeatures, ", "))
	fmt.Printf("WritingProgram: %s\n", h.WritingProgram)
	fmt.Printf("Source: %s\n", h.Source)
	fmt.Printf("ReplicationTimestamp: %s\n", h.ReplicationTimestamp.UTC().Format(time.RFC3339))
	fmt.Printf("ReplicationSeqNumber: %d\n", h.ReplicationSeqNumber)
	fmt.Printf("ReplicationBaseURL: %s\n", h.ReplicationBaseURL)

	if h.Bounds != nil {
		b, err := json.Marshal(h.Bounds)
		if err != nil {
			return err
		}

		fmt.Printf("Bounds: %s\n", b)
	}

	fmt.Printf("NodeCount: %s\n", humanize.Comma(nodeCount))
	fmt.Printf("WayCount: %s\n", humanize.Comma(wayCount))
	fmt.Printf("RelationCount: %s\n", humanize.Comma(relationCount))
	fmt.Printf("TaggedCount: %s\n", humanize.Comma(taggedCount))

	return nil
}
