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

import "math/rand/v2"

// envField identifies one mutable environment field, named the way
// AccessPattern's boolean fields are named; mutateEnv collects the enabled
// ones with one check per field and dispatches on the one it picks.
type envField int

const (
	fieldCaller envField = iota
	fieldCallValue
	fieldBasefee
	fieldTimestamp
	fieldCoinbase
	fieldGasLimit
	fieldNumber
	fieldChainID
	// gasPrice, balance, prevrandao are recognized by the access pattern
	// but have no supported mutation yet (matching the original mutator,
	// which stubs these as always-Skipped pending revm support).
)

// mutateEnv picks uniformly among the environment fields the record's
// access pattern marks as read (the call value is also enabled whenever
// the record already carries a TxnValue), and applies that field's mutator
// (spec.md §4.I: "Among enabled environment mutators, pick uniformly").
func mutateEnv(r *Record, rng *rand.Rand, bm ByteMutator, caller RandomCaller, slots StorageSlots) Result {
	ap := r.AccessPattern
	if ap == nil {
		return Skipped
	}

	var enabled []envField
	if ap.Caller {
		enabled = append(enabled, fieldCaller)
	}
	if ap.CallValue || r.HasCallValue() {
		enabled = append(enabled, fieldCallValue)
	}
	if ap.Basefee {
		enabled = append(enabled, fieldBasefee)
	}
	if ap.Timestamp {
		enabled = append(enabled, fieldTimestamp)
	}
	if ap.Coinbase {
		enabled = append(enabled, fieldCoinbase)
	}
	if ap.GasLimit {
		enabled = append(enabled, fieldGasLimit)
	}
	if ap.Number {
		enabled = append(enabled, fieldNumber)
	}
	if ap.ChainID {
		enabled = append(enabled, fieldChainID)
	}

	if len(enabled) == 0 {
		return Skipped
	}

	switch enabled[rng.IntN(len(enabled))] {
	case fieldCaller:
		return mutateCaller(r, rng, caller)
	case fieldCallValue:
		return mutateCallValue(r, rng, bm, slots)
	case fieldBasefee:
		return mutateU256Field(r.Env.Basefee[:], rng, bm, slots, func(b [32]byte) { r.Env.Basefee = b })
	case fieldTimestamp:
		return mutateU256Field(r.Env.Timestamp[:], rng, bm, slots, func(b [32]byte) { r.Env.Timestamp = b })
	case fieldGasLimit:
		return mutateU256Field(r.Env.GasLimit[:], rng, bm, slots, func(b [32]byte) { r.Env.GasLimit = b })
	case fieldNumber:
		return mutateU256Field(r.Env.Number[:], rng, bm, slots, func(b [32]byte) { r.Env.Number = b })
	case fieldChainID:
		return mutateU256Field(r.Env.ChainID[:], rng, bm, slots, func(b [32]byte) { r.Env.ChainID = b })
	case fieldCoinbase:
		return mutateCoinbase(r, rng, caller)
	}
	return Skipped
}

// mutateU256Field serializes a big-endian 256-bit field, delegates to the
// shared byte mutator, and deserializes it back (spec.md §4.I: "For
// 256-bit fields: serialize big-endian, delegate to the shared byte
// mutator..., deserialize back").
func mutateU256Field(field []byte, rng *rand.Rand, bm ByteMutator, slots StorageSlots, set func([32]byte)) Result {
	buf := append([]byte{}, field...)
	res := bm.MutateBytes(rng, buf, slots)
	if res == Skipped {
		return Skipped
	}
	var out [32]byte
	copy(out[:], buf)
	set(out)
	return Mutated
}

// mutateCaller and mutateCoinbase implement the address-field mutator
// shape (spec.md §4.I): draw a random candidate and skip if it equals
// the field's current value, rather than perturbing bytes.
func mutateCaller(r *Record, rng *rand.Rand, caller RandomCaller) Result {
	if caller == nil {
		return Skipped
	}
	addr := caller.RandomCaller(rng)
	if addr == r.Caller {
		return Skipped
	}
	r.Caller = addr
	return Mutated
}

func mutateCoinbase(r *Record, rng *rand.Rand, caller RandomCaller) Result {
	if caller == nil {
		return Skipped
	}
	addr := caller.RandomCaller(rng)
	if addr == r.Env.Coinbase {
		return Skipped
	}
	r.Env.Coinbase = addr
	return Mutated
}

// mutateCallValue mutates the transaction value like any other 256-bit
// field, then re-applies the top-16-bytes-zero domain restriction
// (spec.md §4.I: "call_value additionally zeroes the top 16 bytes after
// mutation").
func mutateCallValue(r *Record, rng *rand.Rand, bm ByteMutator, slots StorageSlots) Result {
	var current [32]byte
	if r.TxnValue != nil {
		current = *r.TxnValue
	}
	buf := append([]byte{}, current[:]...)
	res := bm.MutateBytes(rng, buf, slots)
	if res == Skipped {
		return Skipped
	}
	var out [32]byte
	copy(out[:], buf)
	ZeroTopCallValueBytes(&out)
	r.TxnValue = &out
	return Mutated
}
