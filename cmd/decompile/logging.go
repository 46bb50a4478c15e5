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
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/log"
)

// setupLogging wires -v..-vvvvv (spec.md §6) into the root logger,
// following the same log.NewGlogHandler/log.SetDefault sequence
// cmd/geth's own verbosity flag drives.
func setupLogging(verbosity int) {
	handler := log.NewGlogHandler(log.NewTerminalHandler(os.Stderr, false))
	handler.Verbosity(levelForVerbosity(verbosity))
	log.SetDefault(log.NewLogger(handler))
}

// levelForVerbosity maps a repeated -v count to a slog.Level: no flag logs
// only warnings and above (this is a decompiler, not a daemon), each
// additional -v steps one level finer, -vvv and beyond is full trace.
func levelForVerbosity(count int) slog.Level {
	switch {
	case count <= 0:
		return log.LevelWarn
	case count == 1:
		return log.LevelInfo
	case count == 2:
		return log.LevelDebug
	default:
		return log.LevelTrace
	}
}
