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

package bytecode

import "errors"

// Pipeline-fatal errors raised by target resolution (spec component A).
// All of them abort the pipeline; there is no partial decompile.
var (
	// ErrInvalidTarget is returned when the target string matches none of
	// the accepted shapes: a 20-byte address, a 32-byte transaction hash,
	// or a raw hex bytecode string.
	ErrInvalidTarget = errors.New("bytecode: invalid target")

	// ErrFetchFailed is returned when resolving an address or transaction
	// hash target against the RPC provider fails.
	ErrFetchFailed = errors.New("bytecode: fetch from RPC provider failed")

	// ErrEmptyBytecode is returned when the resolved bytecode is zero
	// length after stripping the "0x" prefix and any null-byte padding.
	ErrEmptyBytecode = errors.New("bytecode: empty bytecode")

	// ErrTooLarge is returned when the resolved bytecode exceeds the
	// EIP-170-derived size ceiling.
	ErrTooLarge = errors.New("bytecode: exceeds maximum contract size")
)
