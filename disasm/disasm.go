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

package disasm

// Instruction is one (program_counter, opcode, immediate) entry of a
// disassembly record. It is immutable after production.
type Instruction struct {
	PC        uint64
	Op        OpCode
	Immediate []byte
}

// Disassembly is the ordered sequence of instructions produced by walking a
// bytecode stream once. It does not merge or reorder anything: index i's PC
// is always <= index i+1's PC.
type Disassembly []Instruction

// ForEach walks code once, invoking fn for every decoded instruction. It
// mirrors the shape of a single-pass disassembler loop: for each opcode,
// consume the fixed-size immediate (0 bytes for most opcodes, 1..32 for
// PUSH1..PUSH32), preserving the program counter of the opcode byte itself.
//
// A truncated immediate at the end of the stream (not enough bytes left for
// the PUSH's operand) is not an error: the remaining bytes are taken as the
// immediate, matching real compiled bytecode where trailing PUSH data can be
// truncated by the EVM's implicit zero-padding rule.
func ForEach(code []byte, fn func(pc uint64, op OpCode, immediate []byte)) {
	for pc := 0; pc < len(code); {
		op := OpCode(code[pc])
		size := op.ImmediateSize()
		start := pc + 1
		end := start + size
		if end > len(code) {
			end = len(code)
		}
		var immediate []byte
		if size > 0 {
			immediate = append([]byte(nil), code[start:end]...)
		}
		fn(uint64(pc), op, immediate)
		pc = end
	}
}

// Disassemble produces the full ordered instruction sequence for code.
func Disassemble(code []byte) Disassembly {
	var out Disassembly
	ForEach(code, func(pc uint64, op OpCode, immediate []byte) {
		out = append(out, Instruction{PC: pc, Op: op, Immediate: immediate})
	})
	return out
}

// Reassemble concatenates each instruction's opcode byte and immediate bytes
// in order, reconstructing the original bytecode exactly. This is the
// round-trip half of the disassembler's core invariant: Reassemble(Disassemble(b)) == b.
func (d Disassembly) Reassemble() []byte {
	var out []byte
	for _, ins := range d {
		out = append(out, byte(ins.Op))
		out = append(out, ins.Immediate...)
	}
	return out
}

// JumpdestSet returns the set of program counters at which a JUMPDEST
// instruction occurs; only these PCs are valid JUMP/JUMPI targets.
func (d Disassembly) JumpdestSet() map[uint64]bool {
	set := make(map[uint64]bool)
	for _, ins := range d {
		if ins.Op == JUMPDEST {
			set[ins.PC] = true
		}
	}
	return set
}

// At returns the instruction whose PC equals pc, and whether one was found.
// Disassembly is usually walked by index, but symbolic execution jumps by
// PC value. At is a plain linear scan, fine for small bytecodes; callers
// executing many lookups should build the map Index returns once.
func (d Disassembly) At(pc uint64) (Instruction, bool) {
	for _, ins := range d {
		if ins.PC == pc {
			return ins, true
		}
	}
	return Instruction{}, false
}

// Index builds a pc -> instruction-index lookup table for repeated random
// access, used by the symbolic executor's step loop.
func (d Disassembly) Index() map[uint64]int {
	idx := make(map[uint64]int, len(d))
	for i, ins := range d {
		idx[ins.PC] = i
	}
	return idx
}
