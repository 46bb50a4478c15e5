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

package main

import (
	"errors"

	"github.com/trailbytes/evmdecomp/bytecode"
	"github.com/trailbytes/evmdecomp/pipeline"
)

// exitCode maps a Decompile outcome to spec.md §6's four exit codes: 0
// success, 1 invalid target or selection, 2 network fatal, 3 analysis
// budget entirely exhausted.
func exitCode(err error, res pipeline.Result) int {
	switch {
	case errors.Is(err, bytecode.ErrFetchFailed):
		return 2
	case errors.Is(err, bytecode.ErrInvalidTarget),
		errors.Is(err, bytecode.ErrTooLarge),
		errors.Is(err, bytecode.ErrEmptyBytecode):
		return 1
	case errors.Is(err, pipeline.ErrNoFunctionsRecovered):
		return 3
	case err != nil:
		return 1
	}

	// No pipeline-level error, but an ambiguous signature match left
	// unresolved (without --default, spec.md §7's "prompt user" has no
	// interactive equivalent in a non-interactive CLI run) is still an
	// incomplete selection.
	if hasUnresolvedSelection(res) {
		return 1
	}
	return 0
}

func hasUnresolvedSelection(res pipeline.Result) bool {
	for _, fr := range res.Functions {
		if fr.Ambiguous {
			return true
		}
	}
	return false
}
