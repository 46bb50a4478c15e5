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

// Package runnerstub is a pure-Go stand-in for the three exported symbols a
// real cuda "runner" library provides, so nativebridge's callers can be
// exercised in tests without linking against one (SPEC_FULL.md §4.L).
package runnerstub

import "github.com/ethereum/go-ethereum/common"

// Seed records one CuLoadSeed call's arguments exactly as Executor received
// them: big-endian EVM values, not the little-endian wire order a real
// runner would see after nativebridge's marshal step. Stub stands in for
// Executor itself, not for what is on the other side of that flip.
type Seed struct {
	Caller   common.Address
	Value    [32]byte
	Calldata []byte
	StateIdx uint64
	ThreadID uint64
}

// Storage records one CuLoadStorage call's arguments.
type Storage struct {
	Slots   [][32]byte
	StateID uint64
}

// Env records one SetEVMEnv call's arguments.
type Env struct {
	To        common.Address
	Timestamp [32]byte
	BlockNum  [32]byte
}

// Stub implements nativebridge.Executor by recording every call instead of
// crossing into C. Fields are plain slices rather than ring buffers: tests
// are expected to inspect the full history, not just the latest call.
type Stub struct {
	Envs     []Env
	Seeds    []Seed
	Storages []Storage

	// EnvResult is returned by every SetEVMEnv call; defaults to true.
	EnvResult bool

	// SeedErr and StorageErr, when non-nil, are returned by every
	// CuLoadSeed/CuLoadStorage call instead of recording success.
	SeedErr    error
	StorageErr error
}

// New returns a Stub whose SetEVMEnv calls succeed by default.
func New() *Stub {
	return &Stub{EnvResult: true}
}

func (s *Stub) SetEVMEnv(to common.Address, timestamp, blockNumber [32]byte) bool {
	s.Envs = append(s.Envs, Env{To: to, Timestamp: timestamp, BlockNum: blockNumber})
	return s.EnvResult
}

func (s *Stub) CuLoadSeed(caller common.Address, value [32]byte, calldata []byte, stateIdx, threadID uint64) error {
	if s.SeedErr != nil {
		return s.SeedErr
	}
	cp := append([]byte(nil), calldata...)
	s.Seeds = append(s.Seeds, Seed{
		Caller:   caller,
		Value:    value,
		Calldata: cp,
		StateIdx: stateIdx,
		ThreadID: threadID,
	})
	return nil
}

func (s *Stub) CuLoadStorage(slots [][32]byte, stateID uint64) error {
	if s.StorageErr != nil {
		return s.StorageErr
	}
	cp := append([][32]byte(nil), slots...)
	s.Storages = append(s.Storages, Storage{Slots: cp, StateID: stateID})
	return nil
}
