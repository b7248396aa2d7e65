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
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(changesetCmd)
}

// changesetCmd is intentionally unimplemented. Its future contract: apply
// an OsmChange (o5c-style) diff as a mix of inserts, updates, and deletes
// against both the quad store and the spatial index.
var changesetCmd = &cobra.Command{
	Use:   "changeset",
	Short: "Apply an OsmChange diff (not yet implemented)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("changeset: not implemented")
	},
}
