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

package pipeline

import (
	"github.com/trailbytes/evmdecomp/abiout"
	"github.com/trailbytes/evmdecomp/analyzer"
	"github.com/trailbytes/evmdecomp/bytecode"
	"github.com/trailbytes/evmdecomp/fingerprint"
	"github.com/trailbytes/evmdecomp/parammatch"
)

// FunctionResult is one analyzed entry point, selector-routed or the
// synthetic fallback, with the parameter-matching outcome spec.md §4.G
// describes layered on top of the analyzer's output.
type FunctionResult struct {
	// Selector and HasSelector: the synthetic fallback entry (spec.md §8
	// boundary scenario 3) has HasSelector false and a zero Selector.
	Selector    [4]byte
	HasSelector bool

	Function analyzer.Function

	// Candidates is every resolved signature whose arity and per-slot ABI
	// type category matched the analyzed arguments (spec.md §4.G).
	Candidates []parammatch.Candidate

	// Chosen is set when exactly one candidate matched, or when more than
	// one matched and Config.Default picked the last one automatically
	// (Ambiguous is then left false).
	Chosen *parammatch.Candidate

	// Ambiguous is true when more than one candidate matched and
	// Config.Default was false, per spec.md §7's AmbiguousMatch —
	// "prompt user; under --default take last".
	Ambiguous bool

	// Unresolved is true when signature resolution found candidates but
	// none of them matched the recovered argument evidence, per spec.md
	// §7's NoParameterMatch — "warn, keep unresolved signature".
	Unresolved bool

	// BudgetExhausted is true when this entry's symbolic-execution walk
	// hit a guardrail (spec.md §5, "the partial branch map is discarded
	// and the function is reported as analysis budget exhausted").
	// Function is the zero value when this is set.
	BudgetExhausted bool
}

// Result is the outcome of one Decompile call.
type Result struct {
	Target      bytecode.Target
	Fingerprint fingerprint.Result
	Functions   []FunctionResult

	// ABI is the final deterministically ordered artifact (spec.md §4.H),
	// ready for abiout.MarshalJSON. Empty bytecode (spec.md §8 boundary
	// scenario 1) produces an empty, non-nil ABI rather than skipping
	// assembly, so callers can always marshal Result.ABI directly.
	ABI []abiout.Entry
}
