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

// Package selector locates external function dispatch entries in a
// contract's dispatcher prologue: the sequence of PUSH4/EQ/JUMPI triples
// that Solidity (and most other EVM frontends) emit to route incoming
// calldata by its 4-byte selector.
package selector

import "github.com/trailbytes/evmdecomp/disasm"

// Entry is one discovered dispatch case: a 4-byte selector and the PC the
// dispatcher jumps to when CALLDATALOAD(0)>>224 equals it.
type Entry struct {
	Selector    [4]byte
	Destination uint64
}

// Find scans d for every PUSH4 <selector> EQ PUSH2/PUSH3 <dest> JUMPI
// pattern (the four instructions back to back), the shape every major Solidity version (and most Vyper
// releases) compiles a calldata dispatch table into. Selectors are
// reported in discovery order; a selector appearing more than once (some
// compilers emit a dispatcher as a balanced binary search tree with
// repeated guard comparisons during optimization passes) collapses to its
// first occurrence, per spec.
//
// The scan does not attempt to first delimit "the prologue" by locating an
// unreachable JUMPDEST cluster: real dispatcher prologues are exactly this
// PUSH4/EQ/JUMPI shape repeated back to back, and this shape essentially
// never occurs by coincidence once the function body bytecode begins, so a
// whole-bytecode scan finds the same entries a prologue-bounded scan would.
func Find(d disasm.Disassembly) []Entry {
	var entries []Entry
	seen := make(map[[4]byte]bool)

	for i := 0; i < len(d); i++ {
		if d[i].Op != disasm.EQ {
			continue
		}
		// The dispatcher compares CALLDATALOAD(0)>>224 against a literal
		// selector pushed immediately before the EQ (common shape:
		// "DUP1 PUSH4 <sel> EQ"), so the instruction directly preceding
		// EQ must be the PUSH4.
		if i == 0 || d[i-1].Op != disasm.PUSH4 {
			continue
		}
		var sel [4]byte
		copy(sel[:], leftPad(d[i-1].Immediate, 4))

		// Immediately after EQ: PUSH2 or PUSH3 destination, then JUMPI.
		if i+2 >= len(d) {
			continue
		}
		pushDest := d[i+1]
		jumpi := d[i+2]
		if jumpi.Op != disasm.JUMPI {
			continue
		}
		if pushDest.Op != disasm.PUSH2 && pushDest.Op != disasm.PUSH3 {
			continue
		}

		if seen[sel] {
			continue
		}
		seen[sel] = true

		dest := beUint64(pushDest.Immediate)
		entries = append(entries, Entry{Selector: sel, Destination: dest})
	}

	return entries
}

// leftPad returns b left-padded with zero bytes to length n, matching the
// EVM's implicit zero-extension of a PUSH immediate shorter than its
// nominal width (only possible at the very end of a bytecode stream).
func leftPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b[len(b)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// beUint64 decodes a big-endian byte slice of length <= 8 into a uint64.
func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
