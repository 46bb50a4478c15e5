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

package fuzzinput

import (
	"math/rand/v2"

	"github.com/ethereum/go-ethereum/common"
)

// Result is a mutator's return contract (spec.md §4.I): every mutator
// reports whether it changed the record, since a Skipped result must not
// be re-enqueued as a novel corpus entry.
type Result int

const (
	Mutated Result = iota
	Skipped
)

// ByteMutator is the shared mutation-engine primitive every field mutator
// delegates to, consumed only via this narrow interface (spec.md §1:
// "mutation-engine primitives... consumed via named operations only").
// It mutates buf in place and reports whether anything changed; slots
// gives it access to the target's current storage for value-copy
// mutations (spec.md §4.I).
type ByteMutator interface {
	MutateBytes(rng *rand.Rand, buf []byte, slots StorageSlots) Result
}

// RandomCaller supplies a candidate caller address for the caller/
// environment-address mutators, mirroring the corpus's "draw a random
// caller" role in the original mutator (spec.md §4.I).
type RandomCaller interface {
	RandomCaller(rng *rand.Rand) common.Address
}

// Mutate applies spec.md §4.I's selection rule: with probability 12% or
// when no payload exists, mutate the environment; otherwise mutate the
// payload. rng drives both the coin flip and the mutator's own
// randomness.
func Mutate(r *Record, rng *rand.Rand, bm ByteMutator, caller RandomCaller, slots StorageSlots) Result {
	noPayload := r.Payload == nil && len(r.DirectBytes) == 0
	if !r.IsCUDA && (rng.IntN(100) > 87 || noPayload) {
		return mutateEnv(r, rng, bm, caller, slots)
	}
	return mutatePayload(r, rng, bm, slots)
}

// mutatePayload mutates the payload through the shared byte mutator: a
// Typed value over its Raw encoding, an Unknown value over its Data, and
// an Empty or absent payload over DirectBytes. No variant gets a
// type-directed mutation; a Typed value's abi.Type is not consulted.
func mutatePayload(r *Record, rng *rand.Rand, bm ByteMutator, slots StorageSlots) Result {
	switch v := r.Payload.(type) {
	case Typed:
		buf := append([]byte{}, v.Raw...)
		res := bm.MutateBytes(rng, buf, slots)
		if res == Skipped {
			return Skipped
		}
		v.Raw = buf
		r.Payload = v
		return Mutated
	case Unknown:
		buf := append([]byte{}, v.Data...)
		res := bm.MutateBytes(rng, buf, slots)
		if res == Skipped {
			return Skipped
		}
		v.Data = buf
		r.Payload = v
		return Mutated
	case Empty:
		if len(r.DirectBytes) == 0 {
			return Skipped
		}
		return bm.MutateBytes(rng, r.DirectBytes, slots)
	default:
		if len(r.DirectBytes) == 0 {
			return Skipped
		}
		return bm.MutateBytes(rng, r.DirectBytes, slots)
	}
}
