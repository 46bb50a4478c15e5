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

package fuzzinput

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailbytes/evmdecomp/nativebridge/runnerstub"
)

func cudaRecord() *Record {
	return &Record{
		IsCUDA:      true,
		Caller:      common.HexToAddress("0x1111"),
		Contract:    common.HexToAddress("0x2222"),
		DirectBytes: []byte{0xde, 0xad, 0xbe, 0xef},
	}
}

func TestExecuteCUDAStagesEnvAndSeed(t *testing.T) {
	stub := runnerstub.New()
	r := cudaRecord()
	r.Env.Timestamp[31] = 7
	r.Env.Number[31] = 3
	r.BranchDist = 42

	res, err := ExecuteCUDA(stub, r, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != Mutated {
		t.Errorf("expected Mutated, got %v", res)
	}

	if len(stub.Envs) != 1 || stub.Envs[0].To != r.Contract {
		t.Fatalf("expected one SetEVMEnv call targeting the contract, got %+v", stub.Envs)
	}
	if len(stub.Seeds) != 1 {
		t.Fatalf("expected one CuLoadSeed call, got %d", len(stub.Seeds))
	}
	seed := stub.Seeds[0]
	if seed.Caller != r.Caller {
		t.Errorf("expected caller %v, got %v", r.Caller, seed.Caller)
	}
	if seed.StateIdx != 0 {
		t.Errorf("expected the literal state_idx 0, got %d", seed.StateIdx)
	}
	if string(seed.Calldata) != string(r.DirectBytes) {
		t.Errorf("expected calldata %x, got %x", r.DirectBytes, seed.Calldata)
	}
	if r.BranchDist != 0 {
		t.Errorf("expected BranchDist reset after a fresh stage, got %d", r.BranchDist)
	}
}

func TestExecuteCUDAStagesStorageWhenSlotsGiven(t *testing.T) {
	stub := runnerstub.New()
	r := cudaRecord()
	r.StagedStateRef = 5

	var k1, k2 [32]byte
	k1[31] = 1
	k2[31] = 2
	slots := StorageSlots{k2: {0xbb}, k1: {0xaa}}

	if _, err := ExecuteCUDA(stub, r, slots, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.Storages) != 1 {
		t.Fatalf("expected one CuLoadStorage call, got %d", len(stub.Storages))
	}
	st := stub.Storages[0]
	if st.StateID != 5 {
		t.Errorf("expected state ID 5, got %d", st.StateID)
	}
	if len(st.Slots) != 2 || st.Slots[0] != slots[k1] || st.Slots[1] != slots[k2] {
		t.Errorf("expected slots ordered by key, got %+v", st.Slots)
	}
}

func TestExecuteCUDARejectsNonCUDARecord(t *testing.T) {
	stub := runnerstub.New()
	r := cudaRecord()
	r.IsCUDA = false

	if _, err := ExecuteCUDA(stub, r, nil, 0); err == nil {
		t.Error("expected an error for a non-CUDA record")
	}
}

func TestExecuteCUDAEnvRejectionSkipsSeed(t *testing.T) {
	stub := runnerstub.New()
	stub.EnvResult = false
	r := cudaRecord()

	res, err := ExecuteCUDA(stub, r, nil, 0)
	if !errors.Is(err, ErrEnvRejected) {
		t.Errorf("expected ErrEnvRejected, got %v", err)
	}
	if res != Skipped {
		t.Errorf("expected Skipped, got %v", res)
	}
	if len(stub.Seeds) != 0 {
		t.Error("expected no CuLoadSeed call after SetEVMEnv rejection")
	}
}

func TestExecuteCUDASeedFailurePropagates(t *testing.T) {
	stub := runnerstub.New()
	stub.SeedErr = errors.New("runner out of seed slots")
	r := cudaRecord()

	res, err := ExecuteCUDA(stub, r, nil, 0)
	if err == nil {
		t.Fatal("expected the seed error to propagate")
	}
	if res != Skipped {
		t.Errorf("expected Skipped, got %v", res)
	}
}
