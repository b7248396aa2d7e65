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
	"github.com/spf13/cobra"

	"m4o.io/tilequad/internal/encode"
	"m4o.io/tilequad/internal/process"
	"m4o.io/tilequad/internal/progress"
)

func init() {
	RootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run phase P2: denormalize the quad store into the spatial index",
	RunE: func(cmd *cobra.Command, args []string) error {
		xqPath, edbPath := resolveDirs()

		store, err := openStore(xqPath)
		if err != nil {
			return err
		}

		defer store.Close()

		index, err := openIndex(edbPath)
		if err != nil {
			return err
		}

		defer index.Close()

		reporter := progress.NewReporter()
		defer reporter.Close()

		p := process.NewPipeline(store, index, encode.GobEncoder{}, reporter)

		return p.Run()
	},
}
