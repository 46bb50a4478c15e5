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

package symexec

import "github.com/holiman/uint256"

// kind tags what a stack value symbolically represents. Only the origins
// the rest of the pipeline cares about (calldata, storage, call value) are
// tracked distinctly; everything else collapses to kindUnknown once it
// passes through an opcode we don't model precisely (most arithmetic on
// non-concrete operands).
type kind int

const (
	kindConcrete kind = iota
	kindCalldata
	kindStorage
	kindCallValue
	kindUnknown
)

// value is one abstract stack cell.
type value struct {
	kind kind

	// num is valid when kind == kindConcrete.
	num *uint256.Int

	// offset is the calldata byte offset when kind == kindCalldata.
	offset uint64

	// slot is the storage slot when kind == kindStorage.
	slot uint64

	// mask, when nonzero, records the narrowest AND-mask width, in bits,
	// seen applied to a calldata value (e.g. AND 0xff...ff with 20
	// significant bytes, 160 bits, implies an address-shaped argument).
	// 0 means "no mask seen".
	mask int

	// isZeroOfCallValue marks an (otherwise kindUnknown) boolean value as
	// ISZERO(CALLVALUE), the standard solc nonpayable guard condition, so
	// a JUMPI consuming it can still be recognized as CALLVALUE-gated.
	isZeroOfCallValue bool
}

func concreteValue(n uint64) value {
	return value{kind: kindConcrete, num: uint256.NewInt(n)}
}

func unknownValue() value {
	return value{kind: kindUnknown}
}

// isZero reports whether a concrete value is exactly zero; non-concrete
// values are never reported as zero (we don't know).
func (v value) isZero() bool {
	return v.kind == kindConcrete && v.num.IsZero()
}

// asUint64 extracts a concrete value as a uint64, for use as a PC, memory
// offset, or storage slot. ok is false for non-concrete values or values
// that don't fit in 64 bits.
func (v value) asUint64() (n uint64, ok bool) {
	if v.kind != kindConcrete {
		return 0, false
	}
	if !v.num.IsUint64() {
		return 0, false
	}
	return v.num.Uint64(), true
}
