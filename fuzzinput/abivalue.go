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

import "github.com/ethereum/go-ethereum/accounts/abi"

// ABIValue is spec.md §9's "Polymorphic ABI values": a tagged-variant
// payload that's either empty (no arguments), an opaque blob of unknown
// structure (e.g. post-execution output captured as raw bytes), or a
// concretely-typed value a type-directed mutator can act on.
type ABIValue interface {
	abiValue()
	// Bytes ABI-encodes this value's current contents.
	Bytes() []byte
}

// Empty is a zero-argument ABI payload.
type Empty struct{}

func (Empty) abiValue()      {}
func (Empty) Bytes() []byte { return nil }

// Unknown is an opaque fixed-size blob: spec.md §9's boxed "unknown"
// variant, produced e.g. when post-execution data is captured without a
// known ABI shape.
type Unknown struct {
	Size int
	Data []byte
}

func (Unknown) abiValue() {}
func (u Unknown) Bytes() []byte {
	if len(u.Data) >= u.Size {
		return u.Data[:u.Size]
	}
	padded := make([]byte, u.Size)
	copy(padded, u.Data)
	return padded
}

// Typed is a concretely ABI-typed value, reusing abi.Type from the
// teacher's own ABI package rather than a bespoke type-tag system
// (SPEC_FULL.md §4.I).
type Typed struct {
	Type abi.Type
	Raw  []byte // the value's current ABI-encoded head (+ tail, if dynamic)
}

func (Typed) abiValue()       {}
func (t Typed) Bytes() []byte { return t.Raw }
