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
	"bytes"
	"errors"
	"sort"

	"github.com/trailbytes/evmdecomp/nativebridge"
)

// ErrEnvRejected is returned when the external runner's SetEVMEnv call
// reports failure (spec.md §4.J): the caller has nothing more specific to
// report than "the runner refused this environment".
var ErrEnvRejected = errors.New("fuzzinput: native runner rejected SetEVMEnv")

// ExecuteCUDA is the worker-side call site for spec.md §5's third
// suspension point: "the external executor call in J, which blocks the
// calling worker synchronously". It stages r's environment, seed and
// optional storage across ex's narrow three-symbol ABI before the
// external runner executes it off this boundary.
//
// state_idx is passed as the literal 0 (spec.md §9 Open Question 2: it's
// unclear whether the runner expects per-thread state indices, so the
// literal is preserved until the runner contract is clarified).
//
// A failed call follows spec.md §7's ForeignInvocationFailure contract:
// the caller drops r as Skipped and logs once, rather than retrying.
func ExecuteCUDA(ex nativebridge.Executor, r *Record, slots StorageSlots, threadID uint64) (Result, error) {
	if !r.IsCUDA {
		return Skipped, errors.New("fuzzinput: ExecuteCUDA called on a non-CUDA record")
	}

	if ok := ex.SetEVMEnv(r.Contract, r.Env.Timestamp, r.Env.Number); !ok {
		return Skipped, ErrEnvRejected
	}

	var value [32]byte
	if r.TxnValue != nil {
		value = *r.TxnValue
	}

	const stateIdx = 0 // see state_idx note above
	if err := ex.CuLoadSeed(r.Caller, value, calldataOf(r), stateIdx, threadID); err != nil {
		return Skipped, err
	}

	if len(slots) > 0 {
		if err := ex.CuLoadStorage(flattenSlots(slots), uint64(r.StagedStateRef)); err != nil {
			return Skipped, err
		}
	}

	// The runner scores the actual run asynchronously, off this narrow
	// three-symbol boundary; a freshly staged seed has no observed
	// distance yet.
	r.BranchDist = 0
	return Mutated, nil
}

// calldataOf picks the bytes ExecuteCUDA stages as calldata: a Typed or
// Unknown payload's own bytes, falling back to DirectBytes.
func calldataOf(r *Record) []byte {
	switch v := r.Payload.(type) {
	case Typed:
		return v.Raw
	case Unknown:
		return v.Data
	}
	return r.DirectBytes
}

// flattenSlots orders slots by key so repeated calls with the same map
// stage storage deterministically.
func flattenSlots(slots StorageSlots) [][32]byte {
	keys := make([][32]byte, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })

	out := make([][32]byte, len(keys))
	for i, k := range keys {
		out[i] = slots[k]
	}
	return out
}
