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

// Package fingerprint heuristically identifies the compiler that produced a
// contract's runtime bytecode by scanning the CBOR-encoded metadata trailer
// solc and vyper append to deployed code. There is no failure path: an
// unrecognized or absent trailer reports ("unknown", "unknown").
package fingerprint

import "encoding/binary"

// Known metadata map keys, encoded as CBOR text strings: a 0x6x major-type
// byte (text string of length x) followed by the ASCII bytes.
var (
	keySolc  = []byte{0x64, 's', 'o', 'l', 'c'}        // text(4) "solc"
	keyVyper = []byte{0x65, 'v', 'y', 'p', 'e', 'r'}   // text(5) "vyper"
)

// Result is the outcome of a fingerprint scan.
type Result struct {
	Producer string
	Version  string
}

var unknown = Result{Producer: "unknown", Version: "unknown"}

// Scan inspects the tail of runtime bytecode for a CBOR metadata trailer and
// reports the producing compiler and its version string. It never fails:
// bytecode with no trailer, a truncated trailer, or an unrecognized producer
// key all yield the "unknown"/"unknown" result.
func Scan(code []byte) Result {
	if len(code) < 2 {
		return unknown
	}

	// The last two bytes are a big-endian length prefix for the CBOR blob
	// that immediately precedes them (solc and vyper both append this).
	trailerLen := int(binary.BigEndian.Uint16(code[len(code)-2:]))
	if trailerLen <= 0 || trailerLen+2 > len(code) {
		return unknown
	}
	trailer := code[len(code)-2-trailerLen : len(code)-2]

	if producer, version, ok := scanSolc(trailer); ok {
		return Result{Producer: producer, Version: version}
	}
	if version, ok := scanVyper(trailer); ok {
		return Result{Producer: "vyper", Version: version}
	}
	return unknown
}

// scanSolc looks for the "solc" key followed by a 3-byte version triple
// encoded as a CBOR byte string (major type 0x43 "bytes of length 3").
func scanSolc(trailer []byte) (producer, version string, ok bool) {
	idx := indexOf(trailer, keySolc)
	if idx < 0 {
		return "", "", false
	}
	pos := idx + len(keySolc)
	if pos+4 > len(trailer) || trailer[pos] != 0x43 {
		return "", "", false
	}
	major, minor, patch := trailer[pos+1], trailer[pos+2], trailer[pos+3]
	return "solc", formatVersion(major, minor, patch), true
}

// scanVyper looks for the "vyper" key followed by either a 3-byte version
// triple (modern vyper) encoded the same way solc does, or is simply absent
// in which case the presence of an ipfs/bzzr hash with no solc key still
// doesn't identify vyper confidently, so that ambiguous case is left to the
// caller's unknown fallback.
func scanVyper(trailer []byte) (version string, ok bool) {
	idx := indexOf(trailer, keyVyper)
	if idx < 0 {
		return "", false
	}
	pos := idx + len(keyVyper)
	if pos+4 > len(trailer) || trailer[pos] != 0x43 {
		return "", false
	}
	major, minor, patch := trailer[pos+1], trailer[pos+2], trailer[pos+3]
	return formatVersion(major, minor, patch), true
}

func formatVersion(major, minor, patch byte) string {
	return itoa(major) + "." + itoa(minor) + "." + itoa(patch)
}

func itoa(b byte) string {
	if b == 0 {
		return "0"
	}
	var buf [3]byte
	i := len(buf)
	for b > 0 {
		i--
		buf[i] = byte('0' + b%10)
		b /= 10
	}
	return string(buf[i:])
}

// indexOf is a small byte-slice search, avoiding bytes.Index's dependency
// surface for what is a handful of fixed marker lookups.
func indexOf(haystack, needle []byte) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
