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

//go:build cgo

package nativebridge

/*
#cgo LDFLAGS: -lrunner

#include <stdint.h>
#include <stdbool.h>

// Fallback prototypes for the three symbols spec.md §4.J names. The
// canonical definitions live in the runner library; these exist only so
// cgo can size and bind the calls.
bool setEVMEnv(const uint8_t to[20], const uint8_t timestamp_le[32], const uint8_t blocknum_le[32]);
int cuLoadSeed(const uint8_t caller_le[20], const uint8_t value_le[32], const uint8_t *calldata_ptr, size_t calldata_len, uint64_t state_idx, uint64_t thread_id);
int cuLoadStorage(const uint8_t *slots_le_concat, size_t slot_count, uint64_t state_id);
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// seedSizeBudget mirrors the runner's compile-time SEED_SIZE. It is a
// configuration constant, not something this package negotiates with the
// runner at load time.
const seedSizeBudget = 4096

// CGOExecutor is the production Executor, backed by the real runner shared
// library. Zero value is ready to use; there is no handle to open or close
// since the three exported symbols are free functions, not methods on an
// opaque runner instance.
type CGOExecutor struct {
	log log.Logger
}

// NewCGOExecutor returns an Executor that calls the linked runner library.
func NewCGOExecutor() *CGOExecutor {
	return &CGOExecutor{log: log.New("component", "nativebridge")}
}

func (e *CGOExecutor) SetEVMEnv(to common.Address, timestamp, blockNumber [32]byte) bool {
	cTo := leAddress(to)
	cTimestamp := leUint256(timestamp)
	cBlockNumber := leUint256(blockNumber)

	ok := C.setEVMEnv(
		(*C.uint8_t)(unsafe.Pointer(&cTo[0])),
		(*C.uint8_t)(unsafe.Pointer(&cTimestamp[0])),
		(*C.uint8_t)(unsafe.Pointer(&cBlockNumber[0])),
	)
	return bool(ok)
}

func (e *CGOExecutor) CuLoadSeed(caller common.Address, value [32]byte, calldata []byte, stateIdx, threadID uint64) error {
	if !calldataBudget(len(calldata), seedSizeBudget) {
		logger := e.log
		if logger == nil {
			logger = log.Root()
		}
		logger.Warn("nativebridge: calldata exceeds SEED_SIZE, runner will truncate",
			"len", len(calldata), "budget", seedSizeBudget-seedHeaderSize)
	}

	cCaller := leAddress(caller)
	cValue := leUint256(value)

	var pinner runtime.Pinner
	defer pinner.Unpin()

	var calldataPtr *C.uint8_t
	if len(calldata) > 0 {
		pinner.Pin(&calldata[0])
		calldataPtr = (*C.uint8_t)(unsafe.Pointer(&calldata[0]))
	}

	rc := C.cuLoadSeed(
		(*C.uint8_t)(unsafe.Pointer(&cCaller[0])),
		(*C.uint8_t)(unsafe.Pointer(&cValue[0])),
		calldataPtr,
		C.size_t(len(calldata)),
		C.uint64_t(stateIdx),
		C.uint64_t(threadID),
	)
	if rc != 0 {
		return fmt.Errorf("nativebridge: cuLoadSeed returned %d", int(rc))
	}
	return nil
}

func (e *CGOExecutor) CuLoadStorage(slots [][32]byte, stateID uint64) error {
	if len(slots) == 0 {
		return nil
	}

	flat := make([]byte, 0, len(slots)*32)
	for _, slot := range slots {
		le := leUint256(slot)
		flat = append(flat, le[:]...)
	}

	var pinner runtime.Pinner
	defer pinner.Unpin()
	pinner.Pin(&flat[0])

	rc := C.cuLoadStorage(
		(*C.uint8_t)(unsafe.Pointer(&flat[0])),
		C.size_t(len(slots)),
		C.uint64_t(stateID),
	)
	if rc != 0 {
		return fmt.Errorf("nativebridge: cuLoadStorage returned %d", int(rc))
	}
	return nil
}
