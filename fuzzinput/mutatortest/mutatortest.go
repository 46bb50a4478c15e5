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

// Package mutatortest provides a reference fuzzinput.ByteMutator good
// enough to drive tests, without depending on the real fuzzer core's
// production-grade byte mutator (SPEC_FULL.md §4.I: "a reference
// implementation good enough for tests").
package mutatortest

import (
	"math/rand/v2"

	"github.com/trailbytes/evmdecomp/fuzzinput"
)

// Mutator implements fuzzinput.ByteMutator with three simple strategies:
// flip a random bit, overwrite a random byte, or, when storage slots are
// available, copy a slot's value over the buffer (a "value-copy
// mutation", the capability spec.md §4.I calls out by name).
type Mutator struct{}

func (Mutator) MutateBytes(rng *rand.Rand, buf []byte, slots fuzzinput.StorageSlots) fuzzinput.Result {
	if len(buf) == 0 {
		return fuzzinput.Skipped
	}

	strategy := rng.IntN(3)
	if strategy == 2 && len(slots) > 0 && len(buf) == 32 {
		idx := rng.IntN(len(slots))
		i := 0
		for _, v := range slots {
			if i == idx {
				copy(buf, v[:])
				return fuzzinput.Mutated
			}
			i++
		}
	}

	before := append([]byte{}, buf...)
	switch strategy {
	case 0:
		i := rng.IntN(len(buf))
		bit := byte(1 << rng.IntN(8))
		buf[i] ^= bit
	default:
		i := rng.IntN(len(buf))
		buf[i] = byte(rng.IntN(256))
	}

	if bytesEqual(before, buf) {
		return fuzzinput.Skipped
	}
	return fuzzinput.Mutated
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
