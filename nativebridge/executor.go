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

// Package nativebridge marshals a fuzz input across the narrow three-symbol
// ABI exported by an externally built "runner" library (spec.md §4.J,
// "Foreign Executor Bridge"): setEVMEnv, cuLoadSeed and cuLoadStorage. The
// real cgo-backed implementation lives in bridge.go behind a cgo build tag;
// nativebridge/runnerstub provides a pure-Go stand-in for tests.
package nativebridge

import "github.com/ethereum/go-ethereum/common"

// Executor is the narrow interface spec.md §1 calls for at this component
// boundary: callers never see cgo types, only plain big-endian Go values.
// An implementation that crosses into the runner (CGOExecutor) flips them
// to the wire's little-endian, byte-reversed-address convention with the
// functions in marshal.go.
type Executor interface {
	// SetEVMEnv installs the target contract address and the timestamp and
	// block-number environment values for subsequent seed loads.
	SetEVMEnv(to common.Address, timestamp, blockNumber [32]byte) bool

	// CuLoadSeed stages one thread's call input: caller, call value and
	// calldata, against a state snapshot (stateIdx) and a thread slot
	// (threadID). The calldata slice is borrowed for the duration of the
	// call; the callee must not retain it.
	CuLoadSeed(caller common.Address, value [32]byte, calldata []byte, stateIdx, threadID uint64) error

	// CuLoadStorage stages a flat run of storage slot values for state
	// stateID. slots is borrowed for the duration of the call.
	CuLoadStorage(slots [][32]byte, stateID uint64) error
}

// seedHeaderSize is the fixed 68-byte header of a cuLoadSeed payload
// ahead of the variable-length calldata, per spec.md §4.J.
const seedHeaderSize = 68

// calldataBudget reports whether header+calldata fits under the runner's
// compile-time SEED_SIZE budget. Exceeding it is a configuration error that
// must be logged before the call, not one that blocks it: spec.md §4.J says
// the external runner truncates rather than rejects.
func calldataBudget(calldataLen int, seedSize int) bool {
	return seedHeaderSize+calldataLen <= seedSize
}
