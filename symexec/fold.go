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

import (
	"github.com/holiman/uint256"

	"github.com/trailbytes/evmdecomp/disasm"
)

// foldBinary concretely evaluates a two-operand arithmetic/comparison
// opcode when both operands are concrete, collapsing to kindUnknown
// otherwise. Stack order: a is the value popped first (the EVM's top of
// stack); for SUB, DIV, MOD and the shifts the first-popped operand plays
// a different role than the second, handled per opcode below.
func foldBinary(op disasm.OpCode, a, b value) value {
	if a.kind != kindConcrete || b.kind != kindConcrete {
		return unknownValue()
	}
	switch op {
	case disasm.ADD:
		return fromUint256(new(uint256.Int).Add(a.num, b.num))
	case disasm.SUB:
		return fromUint256(new(uint256.Int).Sub(a.num, b.num))
	case disasm.MUL:
		return fromUint256(new(uint256.Int).Mul(a.num, b.num))
	case disasm.DIV, disasm.SDIV:
		if b.num.IsZero() {
			return concreteValue(0)
		}
		return fromUint256(new(uint256.Int).Div(a.num, b.num))
	case disasm.MOD, disasm.SMOD:
		if b.num.IsZero() {
			return concreteValue(0)
		}
		return fromUint256(new(uint256.Int).Mod(a.num, b.num))
	case disasm.EXP:
		return fromUint256(new(uint256.Int).Exp(a.num, b.num))
	case disasm.SIGNEXTEND:
		return unknownValue()
	case disasm.LT:
		return boolValue(a.num.Lt(b.num))
	case disasm.GT:
		return boolValue(a.num.Gt(b.num))
	case disasm.SLT, disasm.SGT:
		return unknownValue() // signed comparison not modeled
	case disasm.OR:
		return fromUint256(new(uint256.Int).Or(a.num, b.num))
	case disasm.XOR:
		return fromUint256(new(uint256.Int).Xor(a.num, b.num))
	case disasm.SHL:
		// EVM stack order for SHL: shift popped first, value second.
		if !a.num.IsUint64() {
			return unknownValue()
		}
		return fromUint256(new(uint256.Int).Lsh(b.num, uint(a.num.Uint64())))
	case disasm.SHR:
		if !a.num.IsUint64() {
			return unknownValue()
		}
		return fromUint256(new(uint256.Int).Rsh(b.num, uint(a.num.Uint64())))
	case disasm.SAR:
		return unknownValue() // arithmetic shift not modeled
	case disasm.BYTE:
		return unknownValue()
	default:
		return unknownValue()
	}
}

func fromUint256(n *uint256.Int) value {
	return value{kind: kindConcrete, num: n}
}

// foldAnd evaluates AND specially: besides concrete folding, AND is how
// solc narrows a calldata word to its effective ABI width (e.g. `AND
// 0xffffffffffffffffffffffffffffffffffffffff` after loading an address
// argument), so this also records the narrowest mask width observed on a
// calldata-derived operand into node's current argument effects.
func foldAnd(a, b value, node *Node) value {
	var calldataOperand, maskOperand value
	haveCalldata := false
	switch {
	case a.kind == kindCalldata && b.kind == kindConcrete:
		calldataOperand, maskOperand, haveCalldata = a, b, true
	case b.kind == kindCalldata && a.kind == kindConcrete:
		calldataOperand, maskOperand, haveCalldata = b, a, true
	}
	if haveCalldata {
		bits := maskBits(maskOperand)
		slot := calldataOperand.offset / 32
		info := node.Effects.Args[slot]
		info.Slot = slot
		if info.MaskBits == 0 || bits < info.MaskBits {
			info.MaskBits = bits
		}
		node.Effects.Args[slot] = info
		out := calldataOperand
		out.mask = bits
		return out
	}
	if a.kind == kindConcrete && b.kind == kindConcrete {
		return fromUint256(new(uint256.Int).And(a.num, b.num))
	}
	return unknownValue()
}

// maskBits counts the number of trailing set bits (from the least
// significant byte) in a bitmask, which is how a typical `AND` narrowing
// mask like 0x00ffffffffffffffffffffffffffffffffffffffff encodes "keep the
// low 20 bytes" for an address argument.
func maskBits(mask value) int {
	if mask.kind != kindConcrete {
		return 0
	}
	b := mask.num.Bytes32()
	bits := 0
	for i := 31; i >= 0; i-- {
		if b[i] == 0xff {
			bits += 8
			continue
		}
		v := b[i]
		for v&0x01 != 0 {
			bits++
			v >>= 1
		}
		break
	}
	return bits
}

func foldEq(a, b value) value {
	if a.kind == kindConcrete && b.kind == kindConcrete {
		return boolValue(a.num.Eq(b.num))
	}
	return unknownValue()
}

func foldIsZero(a value) value {
	if a.kind == kindConcrete {
		return boolValue(a.num.IsZero())
	}
	if a.kind == kindCallValue {
		return value{kind: kindUnknown, isZeroOfCallValue: true}
	}
	return unknownValue()
}

func boolValue(b bool) value {
	if b {
		return concreteValue(1)
	}
	return concreteValue(0)
}
