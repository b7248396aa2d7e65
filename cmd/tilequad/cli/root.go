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

// Package cli is tilequad's command surface: ingest, pbf, process,
// changeset, version, built on cobra the way the original pbf tool was.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	pbfPath      string
	xqDir        string
	edbDir       string
	outDir       string
	printVersion bool
)

// RootCmd is the tilequad executable's entry point.
var RootCmd = &cobra.Command{
	Use:           "tilequad",
	Short:         "Ingest OSM PBF extracts into a quad-bucketed spatial index",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if printVersion {
			fmt.Println(buildVersion())
			return nil
		}

		return cmd.Help()
	},
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&pbfPath, "pbf", "f", "-", "PBF input file; - means stdin")
	flags.StringVarP(&xqDir, "xq", "x", "", "quad-store directory")
	flags.StringVarP(&edbDir, "edb", "e", "", "spatial-index directory")
	flags.StringVarP(&outDir, "outdir", "o", "", "sets --xq to DIR/xq and --edb to DIR/edb if unset")

	RootCmd.Flags().BoolVarP(&printVersion, "version", "v", false, "print the tilequad build version")
}

// resolveDirs applies the -o/--outdir derivation rule: DIR/xq and DIR/edb
// fill in whichever of -x/-e was left unset.
func resolveDirs() (xq, edb string) {
	xq, edb = xqDir, edbDir

	if outDir == "" {
		return xq, edb
	}

	if xq == "" {
		xq = filepath.Join(outDir, "xq")
	}

	if edb == "" {
		edb = filepath.Join(outDir, "edb")
	}

	return xq, edb
}

// Execute runs the command tree, returning any error for main to translate
// into an exit code.
func Execute() error {
	return RootCmd.Execute()
}
