// Copyright 2024 The evmdecomp Authors
// This file is part of the evmdecomp library.
//
// The evmdecomp library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmdecomp library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmdecomp library. If not, see <http://www.gnu.org/licenses/>.

// Package corpus holds the fuzzer's shared input pool under the
// single-writer, snapshot-reader discipline spec.md §5 requires:
// "the corpus... is protected by a single writer and snapshot-readers."
package corpus

import (
	"sync"

	"github.com/trailbytes/evmdecomp/fuzzinput"
)

// Corpus is the versioned pool of staged inputs every worker's Record
// references by StagedStateRef index. Reads take a snapshot (a shallow
// copy of the current slice) so concurrent workers never observe a torn
// write; only one writer goroutine is expected to call Add/Replace at a
// time, enforced here by a single mutex rather than requiring external
// discipline.
type Corpus struct {
	mu    sync.Mutex
	items []fuzzinput.Record
}

// New returns an empty corpus.
func New() *Corpus {
	return &Corpus{}
}

// Add appends one input and returns its index, to be stored as the
// record's StagedStateRef by later inputs that alias the same snapshot.
func (c *Corpus) Add(r fuzzinput.Record) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, r)
	return len(c.items) - 1
}

// Replace overwrites an existing corpus slot in place, e.g. when a
// mutated input is promoted to replace its parent.
func (c *Corpus) Replace(idx int, r fuzzinput.Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx < 0 || idx >= len(c.items) {
		return false
	}
	c.items[idx] = r
	return true
}

// Snapshot returns a read-only copy of the corpus contents at this
// instant, safe to range over without holding any lock — concurrent
// mutators never touch the same access-pattern handle (spec.md §5), and
// a snapshot reader never sees a future write.
func (c *Corpus) Snapshot() []fuzzinput.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]fuzzinput.Record, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the current corpus size.
func (c *Corpus) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// At returns a copy of one corpus entry by index.
func (c *Corpus) At(idx int) (fuzzinput.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx < 0 || idx >= len(c.items) {
		return fuzzinput.Record{}, false
	}
	return c.items[idx], true
}
