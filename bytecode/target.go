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

// Package bytecode validates and resolves a decompile target (an address, a
// transaction hash, or raw hex) into a canonical byte slice of EVM
// bytecode, enforcing the EIP-170-derived size ceiling.
package bytecode

import (
	"context"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MaxLength is the ceiling on resolved bytecode length, per spec: the
// EIP-170 deployed-code limit rounded up to a guardrail value.
const MaxLength = 25000

// Origin tags where a Target's bytes came from.
type Origin int

const (
	RawHex Origin = iota
	File
	OnChainAddress
	NameResolved
)

func (o Origin) String() string {
	switch o {
	case RawHex:
		return "raw-hex"
	case File:
		return "file"
	case OnChainAddress:
		return "on-chain-address"
	case NameResolved:
		return "name-resolved"
	default:
		return "unknown"
	}
}

// Target is a fully resolved decompile target: an ordered byte sequence
// plus the origin tag recording how it was obtained.
type Target struct {
	Bytes  []byte
	Origin Origin
}

// rawHexRegex carries no length bound: Go's regexp rejects repeat counts
// above 1000, so the size ceiling is enforced by canonicalize (MaxLength
// bytes after decoding and null-prefix stripping) instead.
var (
	addressRegex = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{40}$`)
	txHashRegex  = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)
	rawHexRegex  = regexp.MustCompile(`^(0x)?[0-9a-fA-F]*$`)
)

// Provider is the external RPC collaborator used to resolve addresses and
// transaction hashes into bytecode (spec §4.A, §6 "RPC").
type Provider interface {
	GetCode(ctx context.Context, address common.Address) ([]byte, error)
	GetTransaction(ctx context.Context, hash common.Hash) (to common.Address, input []byte, err error)
}

// Resolve classifies raw and, for addresses and transaction hashes, fetches
// the underlying bytecode through provider. provider may be nil if raw is
// known to be a raw-hex target; resolving an address or transaction hash
// target with a nil provider returns ErrFetchFailed.
func Resolve(ctx context.Context, raw string, provider Provider) (Target, error) {
	switch {
	case addressRegex.MatchString(raw):
		if provider == nil {
			return Target{}, ErrFetchFailed
		}
		addr := common.HexToAddress(raw)
		code, err := provider.GetCode(ctx, addr)
		if err != nil {
			return Target{}, ErrFetchFailed
		}
		return canonicalize(code, OnChainAddress)

	case txHashRegex.MatchString(raw):
		if provider == nil {
			return Target{}, ErrFetchFailed
		}
		hash := common.HexToHash(raw)
		_, input, err := provider.GetTransaction(ctx, hash)
		if err != nil {
			return Target{}, ErrFetchFailed
		}
		return canonicalize(input, OnChainAddress)

	case rawHexRegex.MatchString(raw):
		decoded, err := decodeHex(raw)
		if err != nil {
			return Target{}, ErrInvalidTarget
		}
		return canonicalize(decoded, RawHex)

	default:
		return Target{}, ErrInvalidTarget
	}
}

// decodeHex strips an optional "0x" prefix and decodes the remaining hex
// digits, tolerating an odd number of leading zero nibbles the way the
// rest of the toolchain does (hexutil requires exact byte pairs, so we
// pad a leading zero ourselves when necessary).
func decodeHex(raw string) ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	if s == "" {
		return nil, nil
	}
	return hexutil.Decode("0x" + s)
}

// canonicalize strips any (00)* null-byte prefix used by some tooling as
// padding (the "0x" prefix is already gone: decodeHex removes it for
// raw-hex targets and providers return raw bytes), then enforces the
// non-empty and max-length invariants.
//
// Empty bytecode is treated differently depending on origin: a literal
// raw-hex "0x" target is a legitimate (if useless) input that yields an
// empty function list rather than an error (spec.md §8's boundary scenario
// 1). An address or transaction-hash target resolving to zero-length code
// means no contract actually exists there, which is the ErrEmptyBytecode
// failure spec.md §4.A separately names.
func canonicalize(code []byte, origin Origin) (Target, error) {
	i := 0
	for i < len(code) && code[i] == 0x00 {
		i++
	}
	stripped := code[i:]
	if len(stripped) == 0 {
		if origin == OnChainAddress || origin == NameResolved {
			return Target{}, ErrEmptyBytecode
		}
		return Target{Bytes: nil, Origin: origin}, nil
	}
	if len(stripped) > MaxLength {
		return Target{}, ErrTooLarge
	}
	return Target{Bytes: stripped, Origin: origin}, nil
}
