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

// Package progress is the Progress adapter spec.md §4.7 describes: staged
// counters plus a 1Hz multi-line ANSI redraw to stderr. Advisory only — it
// must never block ingestion or alter pipeline semantics.
package progress

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Stage names the two phases the CLI reports on.
type Stage string

const (
	StagePBF     Stage = "pbf"
	StageProcess Stage = "process"
)

type stageState struct {
	count   int64
	errors  []string
	ticks   int64
	running bool
}

// Reporter holds a table stage -> {count, errors, ticks} and a display
// goroutine that wakes once per second, rerendering every stage it knows
// of, running or done, to stderr and erasing the prior render with ANSI
// escapes.
type Reporter struct {
	mu     sync.Mutex
	stages map[Stage]*stageState
	order  []Stage

	out      io.Writer
	lastLines int

	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewReporter starts the 1Hz display goroutine writing to stderr.
func NewReporter() *Reporter {
	return NewReporterTo(os.Stderr)
}

// NewReporterTo is NewReporter with an explicit writer, for tests.
func NewReporterTo(w io.Writer) *Reporter {
	r := &Reporter{
		stages: make(map[Stage]*stageState),
		out:    w,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	go r.loop()

	return r
}

// Start marks a stage as running, creating its counters if new.
func (r *Reporter) Start(stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stateLocked(stage)
	s.running = true
}

// End marks a stage as finished and forces one final render.
func (r *Reporter) End(stage Stage) {
	r.mu.Lock()
	s := r.stateLocked(stage)
	s.running = false
	r.mu.Unlock()

	r.render()
}

// Add increments a stage's count by n.
func (r *Reporter) Add(stage Stage, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stateLocked(stage).count += int64(n)
}

// PushErr appends an error under a stage's error list.
func (r *Reporter) PushErr(stage Stage, err error) {
	if err == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stateLocked(stage)
	s.errors = append(s.errors, err.Error())
}

// Tick increments a stage's tick counter, for callers that want a
// heartbeat distinct from record counts (e.g. quad buckets visited).
func (r *Reporter) Tick(stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stateLocked(stage).ticks++
}

// Close stops the display goroutine after a final render.
func (r *Reporter) Close() {
	r.once.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Reporter) stateLocked(stage Stage) *stageState {
	s, ok := r.stages[stage]
	if !ok {
		s = &stageState{}
		r.stages[stage] = s
		r.order = append(r.order, stage)

		sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	}

	return s
}

func (r *Reporter) loop() {
	defer close(r.done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.render()
		case <-r.stop:
			r.render()
			return
		}
	}
}

// render erases the previous frame with N x (cursor-up, clear-line), then
// writes one line per stage the reporter has seen through any call.
func (r *Reporter) render() {
	r.mu.Lock()
	lines := make([]string, 0, len(r.order))

	for _, stage := range r.order {
		s := r.stages[stage]
		status := "done"

		if s.running {
			status = "running"
		}

		line := fmt.Sprintf("%-8s %-8s count=%s errors=%d ticks=%s",
			stage, status, humanize.Comma(s.count), len(s.errors), humanize.Comma(s.ticks))
		lines = append(lines, line)
	}

	prev := r.lastLines
	r.lastLines = len(lines)
	r.mu.Unlock()

	for i := 0; i < prev; i++ {
		fmt.Fprint(r.out, "\033[1A\033[2K")
	}

	for _, line := range lines {
		fmt.Fprintln(r.out, line)
	}
}
