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

package progress_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"m4o.io/tilequad/internal/progress"
)

func TestReporterAddAndEnd(t *testing.T) {
	var buf bytes.Buffer

	r := progress.NewReporterTo(&buf)
	defer r.Close()

	r.Start(progress.StagePBF)
	r.Add(progress.StagePBF, 5)
	r.Add(progress.StagePBF, 3)
	r.PushErr(progress.StagePBF, errors.New("boom"))
	r.End(progress.StagePBF)

	assert.Contains(t, buf.String(), "pbf")
	assert.Contains(t, buf.String(), "8")
}

func TestReporterMultipleStages(t *testing.T) {
	var buf bytes.Buffer

	r := progress.NewReporterTo(&buf)
	defer r.Close()

	r.Start(progress.StagePBF)
	r.Start(progress.StageProcess)
	r.Add(progress.StageProcess, 10)
	r.End(progress.StagePBF)
	r.End(progress.StageProcess)

	out := buf.String()
	assert.Contains(t, out, "pbf")
	assert.Contains(t, out, "process")
}

func TestReporterPushErrNilIgnored(t *testing.T) {
	var buf bytes.Buffer

	r := progress.NewReporterTo(&buf)
	defer r.Close()

	r.Start(progress.StagePBF)
	r.PushErr(progress.StagePBF, nil)
	r.End(progress.StagePBF)
}
