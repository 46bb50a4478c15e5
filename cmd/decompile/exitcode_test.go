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
	"testing"

	"github.com/trailbytes/evmdecomp/bytecode"
	"github.com/trailbytes/evmdecomp/pipeline"
)

func TestExitCodeSuccess(t *testing.T) {
	if got := exitCode(nil, pipeline.Result{}); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestExitCodeInvalidTarget(t *testing.T) {
	if got := exitCode(bytecode.ErrInvalidTarget, pipeline.Result{}); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestExitCodeTooLarge(t *testing.T) {
	if got := exitCode(bytecode.ErrTooLarge, pipeline.Result{}); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestExitCodeEmptyBytecodeOnChain(t *testing.T) {
	if got := exitCode(bytecode.ErrEmptyBytecode, pipeline.Result{}); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestExitCodeFetchFailedIsNetworkFatal(t *testing.T) {
	if got := exitCode(bytecode.ErrFetchFailed, pipeline.Result{}); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestExitCodeNoFunctionsRecovered(t *testing.T) {
	if got := exitCode(pipeline.ErrNoFunctionsRecovered, pipeline.Result{}); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestExitCodeAmbiguousSelectionWithoutDefault(t *testing.T) {
	res := pipeline.Result{Functions: []pipeline.FunctionResult{{Ambiguous: true}}}
	if got := exitCode(nil, res); got != 1 {
		t.Errorf("got %d, want 1 for an unresolved ambiguous match", got)
	}
}

func TestExitCodeDefaultResolvedAmbiguityIsSuccess(t *testing.T) {
	sel := [4]byte{0xde, 0xad, 0xbe, 0xef}
	res := pipeline.Result{Functions: []pipeline.FunctionResult{{Selector: sel, HasSelector: true, Ambiguous: false}}}
	if got := exitCode(nil, res); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}
