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

// Package pipeline wires components A through H into the single
// synchronous decompile operation spec.md §2's data flow describes:
// bytecode -> A -> B,C -> D (network); (A,C) -> E -> F -> G (x) D -> H.
package pipeline

import "github.com/trailbytes/evmdecomp/symexec"

// Config configures one Decompile run. The zero value is usable: every
// field defaults to the conservative behavior spec.md names (resolving
// enabled, ambiguous matches surfaced rather than auto-chosen, symexec's
// own guardrail defaults).
type Config struct {
	// Default auto-selects the last (highest-specificity) candidate on an
	// ambiguous parameter match, per spec.md §6's `--default` flag.
	Default bool

	// SkipResolving disables all signature-database network lookups,
	// per spec.md §6's `--skip-resolving` flag. Functions are still fully
	// analyzed; only the human-readable signature and matched inputs are
	// left unresolved.
	SkipResolving bool

	// Symexec bounds the exploration guardrails passed to every
	// per-selector symbolic-execution run (spec.md §4.E).
	Symexec symexec.Options
}
