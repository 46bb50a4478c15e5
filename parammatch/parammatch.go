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

// Package parammatch filters candidate human-readable signatures against
// an analyzed function's recovered argument evidence, using
// github.com/ethereum/go-ethereum/accounts/abi's Type system rather than a
// bespoke type-tag enum.
package parammatch

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/trailbytes/evmdecomp/analyzer"
)

// Candidate is one resolved text signature paired with its parsed ABI
// argument list, ready to be checked against an analyzed function's
// argument evidence.
type Candidate struct {
	Signature string
	Inputs    abi.Arguments
}

// ParseCandidate parses a human-readable signature's parenthesized
// parameter list (e.g. "transfer(address,uint256)") into a Candidate.
// Unparsable parameter types are dropped from Inputs silently — a
// candidate that fails to parse any types at all never matches anything
// in Match, which is the desired effect (spec only asks that compatible
// candidates surface; a malformed signature string from the resolver
// naturally falls out of consideration).
func ParseCandidate(signature string) Candidate {
	params := paramTypeStrings(signature)
	var args abi.Arguments
	for _, p := range params {
		t, err := abi.NewType(p, "", nil)
		if err != nil {
			continue
		}
		args = append(args, abi.Argument{Type: t})
	}
	return Candidate{Signature: signature, Inputs: args}
}

// paramTypeStrings extracts the comma-separated parameter type list from
// "name(type,type,...)", returning nil for a signature with no
// parentheses or an empty parameter list.
func paramTypeStrings(signature string) []string {
	open := strings.IndexByte(signature, '(')
	shut := strings.LastIndexByte(signature, ')')
	if open < 0 || shut <= open {
		return nil
	}
	inner := signature[open+1 : shut]
	if inner == "" {
		return nil
	}
	return splitTopLevelCommas(inner)
}

// splitTopLevelCommas splits on commas that aren't nested inside a tuple
// parameter's own parentheses, e.g. "(uint256,address),bool" splits into
// two elements, not three.
func splitTopLevelCommas(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// Match filters candidates whose parameter count equals the analyzed
// function's argument count and whose per-slot ABI type category is
// compatible with that slot's recorded mask/heuristic, per spec §4.G's
// compatibility table. Candidates are returned in the order they were
// given (the resolver's shortness/lexicographic ranking), so the last
// surviving entry is the "highest specificity" pick --default uses.
func Match(fn analyzer.Function, candidates []Candidate) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if len(c.Inputs) != len(fn.Arguments) {
			continue
		}
		compatible := true
		for i, arg := range fn.Arguments {
			if !compatibleType(arg, c.Inputs[i].Type) {
				compatible = false
				break
			}
		}
		if compatible {
			out = append(out, c)
		}
	}
	return out
}

// Default applies spec §4.G's --default rule: auto-choose the last
// (highest-specificity) candidate. Returns false if candidates is empty.
func Default(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return candidates[len(candidates)-1], true
}

// compatibleType implements spec §4.G's compatibility table between a
// recovered argument's mask/heuristic evidence and a candidate ABI type.
func compatibleType(arg analyzer.Argument, t abi.Type) bool {
	switch arg.MaskBits {
	case 8:
		return t.T == abi.BoolTy || isIntWidth(t, 8)
	case 160:
		return t.T == abi.AddressTy
	case 256, 0: // unmasked full word, or no mask evidence at all
		switch t.T {
		case abi.UintTy, abi.IntTy, abi.FixedBytesTy:
			return true
		case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
			return true // dynamic-type heads occupy one calldata word too
		default:
			return false
		}
	}
	switch arg.Heuristic {
	case "string":
		return t.T == abi.StringTy || t.T == abi.BytesTy
	case "array":
		return t.T == abi.SliceTy || t.T == abi.ArrayTy
	}
	// A narrower-than-address integer mask (arg.MaskBits in 8..152,
	// multiple of 8): compatible with any uint/int whose bit width is at
	// least that wide, since a smaller-than-declared mask can still be the
	// low bits of a wider-declared parameter the compiler chose not to
	// narrow further.
	if arg.MaskBits > 0 && arg.MaskBits < 160 {
		return (t.T == abi.UintTy || t.T == abi.IntTy) && t.Size >= arg.MaskBits
	}
	return false
}

func isIntWidth(t abi.Type, bits int) bool {
	return (t.T == abi.UintTy || t.T == abi.IntTy) && t.Size == bits
}
