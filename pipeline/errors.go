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

import "errors"

// ErrNoFunctionsRecovered is returned by Decompile when every discovered
// selector turned out to be a false positive or had its analysis budget
// exhausted, leaving nothing to report — spec.md §7's
// "AnalysisBudgetExhausted... per-function, continue" plus spec.md §6's
// exit code 3, "analysis budget entirely exhausted (no functions
// recovered)". It is the only pipeline-level error Decompile itself
// raises beyond what bytecode.Resolve already returns; every other
// per-selector condition (false positive, ambiguous match, no parameter
// match, budget exhaustion) is recorded on that selector's FunctionResult
// instead of escaping as an error, per spec.md §7's "analysis and
// resolution errors are confined to their per-selector scope".
var ErrNoFunctionsRecovered = errors.New("pipeline: analysis budget entirely exhausted, no functions recovered")
