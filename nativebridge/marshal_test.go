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

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestLeUint256ReversesByteOrder(t *testing.T) {
	var be [32]byte
	be[31] = 0x01 // big-endian 1
	got := leUint256(be)
	if got[0] != 0x01 {
		t.Fatalf("expected byte 0 to carry the low-order byte, got %x", got)
	}
	for i := 1; i < 32; i++ {
		if got[i] != 0 {
			t.Fatalf("expected remaining bytes zero, got %x at %d", got[i], i)
		}
	}
}

func TestLeUint256IsSelfInverse(t *testing.T) {
	var be [32]byte
	for i := range be {
		be[i] = byte(i)
	}
	roundTrip := leUint256(leUint256(be))
	if roundTrip != be {
		t.Fatalf("expected flipping twice to restore the original, got %x", roundTrip)
	}
}

func TestLeAddressReversesBytes(t *testing.T) {
	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	got := leAddress(addr)
	for i := 0; i < 20; i++ {
		if got[i] != addr[19-i] {
			t.Fatalf("byte %d: expected %x, got %x", i, addr[19-i], got[i])
		}
	}
}

func TestCalldataBudget(t *testing.T) {
	if !calldataBudget(100, 200) {
		t.Error("expected 68+100 <= 200 to fit")
	}
	if calldataBudget(1000, 200) {
		t.Error("expected 68+1000 <= 200 to not fit")
	}
	if !calldataBudget(0, seedHeaderSize) {
		t.Error("expected exactly-header-sized budget to fit with empty calldata")
	}
}
