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

package nativebridge

import "github.com/ethereum/go-ethereum/common"

// This file is the single place spec.md §9 asks for ("Foreign bridge
// endianness... must document and centralize this flip"): every value that
// crosses into the runner's ABI is big-endian inside this project (the
// EVM's native order) and little-endian on the wire, with addresses also
// byte-reversed. No other file in this package should reverse bytes itself.

// leUint256 flips a big-endian 32-byte EVM word into the runner's
// little-endian wire order.
func leUint256(be [32]byte) [32]byte {
	var out [32]byte
	for i := range be {
		out[i] = be[31-i]
	}
	return out
}

// leAddress flips a 20-byte address into the runner's little-endian,
// byte-reversed wire order.
func leAddress(addr common.Address) [20]byte {
	var out [20]byte
	for i := range addr {
		out[i] = addr[19-i]
	}
	return out
}
