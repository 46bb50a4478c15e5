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

// Package fuzzinput is the fuzzer's unit of work: the input record spec.md
// §3 defines, its environment and its ABI payload, plus the mutator
// family that advances it one step at a time.
package fuzzinput

import (
	"github.com/ethereum/go-ethereum/common"
)

// Kind is the input's transaction shape. Liquidate is decoded for
// compatibility but this project never produces one, matching spec.md
// §3's "Liquidate deprecated" note.
type Kind int

const (
	KindAbiCall Kind = iota
	KindBorrow
	KindLiquidate
)

// Env is the block/config record every input carries: spec.md §3's
// "env" field.
type Env struct {
	Timestamp  [32]byte
	Number     [32]byte
	Basefee    [32]byte
	GasLimit   [32]byte
	Coinbase   common.Address
	ChainID    [32]byte
	Prevrandao [32]byte
	GasPrice   [32]byte
}

// AccessPattern records which environment components a function's
// analysis observed being read (spec.md §3's "Access pattern"). It is a
// shared mutable handle: many inputs targeting the same function may
// point at the same AccessPattern, and only the owning mutator writes to
// it, and only between fuzzing rounds (spec.md §5's shared-resource
// policy).
type AccessPattern struct {
	Caller     bool
	CallValue  bool
	Balance    []common.Address
	GasPrice   bool
	Basefee    bool
	Timestamp  bool
	Coinbase   bool
	GasLimit   bool
	Number     bool
	ChainID    bool
	Prevrandao bool
}

// StorageSlots is a read-only view of a contract's current storage,
// passed to mutators that support value-copy mutations (spec.md §4.I:
// "the shared byte mutator... has access to current storage slots").
type StorageSlots map[[32]byte][32]byte

// Record is one fuzz input: spec.md §3's "Fuzz input record".
type Record struct {
	InputKind Kind

	Caller   common.Address
	Contract common.Address

	// Payload is the structured ABI value when InputKind == KindAbiCall
	// and a type-directed payload was produced; DirectBytes carries raw
	// calldata when no ABI structure is available.
	Payload     ABIValue
	DirectBytes []byte

	StagedStateRef int // corpus index of the versioned VM-state snapshot

	// TxnValue holds the wei value; the top 16 bytes must always be zero
	// (spec.md §4.9's domain restriction: no value exceeds 2^128 wei).
	TxnValue *[32]byte

	Step bool

	Env Env

	AccessPattern *AccessPattern

	LiquidationPercent uint8 // spec.md §9's flashloan feature gate

	Randomness []byte

	Repeat int

	CUData     []byte
	IsCUDA     bool
	BranchDist int
}

// Config gates optional behavior. FlashloanEnabled governs whether
// Borrow/Liquidate input kinds and LiquidationPercent are meaningful;
// the fields themselves are always present on Record (spec.md §9: "never
// conditionally compiled").
type Config struct {
	FlashloanEnabled bool
}

// HasCallValue reports whether the record carries an explicit txn value.
func (r *Record) HasCallValue() bool {
	return r.TxnValue != nil
}

// ZeroTopCallValueBytes enforces the top-16-bytes-zero domain restriction
// on TxnValue, matching spec.md §4.9 / the call_value mutator's behavior.
func ZeroTopCallValueBytes(v *[32]byte) {
	for i := 0; i < 16; i++ {
		v[i] = 0
	}
}
