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

package selector

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/trailbytes/evmdecomp/disasm"
)

// dispatcherCase emits "DUP1 PUSH4 <selector> EQ PUSH2 <dest> JUMPI" for one
// function, the standard solc dispatch-table shape.
func dispatcherCase(selector [4]byte, dest uint16) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(disasm.DUP1))
	buf.WriteByte(byte(disasm.PUSH4))
	buf.Write(selector[:])
	buf.WriteByte(byte(disasm.EQ))
	buf.WriteByte(byte(disasm.PUSH2))
	buf.WriteByte(byte(dest >> 8))
	buf.WriteByte(byte(dest))
	buf.WriteByte(byte(disasm.JUMPI))
	return buf.Bytes()
}

func TestFindSingleSelector(t *testing.T) {
	code := dispatcherCase([4]byte{0xaa, 0xbb, 0xcc, 0xdd}, 0x0123)
	entries := Find(disasm.Disassemble(code))
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Selector != [4]byte{0xaa, 0xbb, 0xcc, 0xdd} {
		t.Errorf("got selector %x", entries[0].Selector)
	}
	if entries[0].Destination != 0x0123 {
		t.Errorf("got destination %#x", entries[0].Destination)
	}
}

func TestFindMultipleSelectorsDiscoveryOrder(t *testing.T) {
	var code []byte
	code = append(code, dispatcherCase([4]byte{0x01, 0x02, 0x03, 0x04}, 0x0010)...)
	code = append(code, dispatcherCase([4]byte{0x05, 0x06, 0x07, 0x08}, 0x0020)...)
	entries := Find(disasm.Disassemble(code))
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Selector != [4]byte{0x01, 0x02, 0x03, 0x04} {
		t.Errorf("wrong discovery order: %x", entries[0].Selector)
	}
	if entries[1].Selector != [4]byte{0x05, 0x06, 0x07, 0x08} {
		t.Errorf("wrong discovery order: %x", entries[1].Selector)
	}
}

func TestFindDuplicateSelectorCollapses(t *testing.T) {
	sel := [4]byte{0xde, 0xad, 0xbe, 0xef}
	var code []byte
	code = append(code, dispatcherCase(sel, 0x0010)...)
	code = append(code, dispatcherCase(sel, 0x0099)...)
	entries := Find(disasm.Disassemble(code))
	if len(entries) != 1 {
		t.Fatalf("expected duplicates to collapse, got %d entries", len(entries))
	}
	if entries[0].Destination != 0x0010 {
		t.Errorf("expected first occurrence's destination to win, got %#x", entries[0].Destination)
	}
}

func TestFindPush3Destination(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(disasm.DUP1))
	buf.WriteByte(byte(disasm.PUSH4))
	buf.Write([]byte{0x11, 0x22, 0x33, 0x44})
	buf.WriteByte(byte(disasm.EQ))
	buf.WriteByte(byte(disasm.PUSH3))
	buf.Write([]byte{0x01, 0x02, 0x03})
	buf.WriteByte(byte(disasm.JUMPI))

	entries := Find(disasm.Disassemble(buf.Bytes()))
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Destination != 0x010203 {
		t.Errorf("got destination %#x", entries[0].Destination)
	}
}

func TestFindIgnoresNonDispatchEQ(t *testing.T) {
	// EQ preceded by something other than PUSH4 should not be recorded.
	code, err := hex.DecodeString("6001600114")
	if err != nil {
		t.Fatal(err)
	}
	entries := Find(disasm.Disassemble(code))
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestFindNoMatches(t *testing.T) {
	entries := Find(disasm.Disassemble([]byte{byte(disasm.STOP)}))
	if entries != nil {
		t.Errorf("expected nil, got %v", entries)
	}
}
