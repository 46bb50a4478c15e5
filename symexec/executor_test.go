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

package symexec

import (
	"testing"
	"time"

	"github.com/trailbytes/evmdecomp/disasm"
)

// straightLineReturn is: PUSH1 0x00 PUSH1 0x00 RETURN - a function that
// just returns zero bytes, no branching.
func straightLineReturn() []byte {
	return []byte{
		byte(disasm.PUSH1), 0x00,
		byte(disasm.PUSH1), 0x00,
		byte(disasm.RETURN),
	}
}

func TestRunStraightLineReturn(t *testing.T) {
	code := straightLineReturn()
	bm := Run(disasm.Disassemble(code), 0, Options{})
	if len(bm.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(bm.Nodes))
	}
	if bm.Nodes[0].Terminal != TerminalReturn {
		t.Errorf("expected TerminalReturn, got %v", bm.Nodes[0].Terminal)
	}
	if bm.Nodes[0].Effects.Return == nil || bm.Nodes[0].Effects.Return.Size != 0 {
		t.Errorf("expected zero-size return, got %+v", bm.Nodes[0].Effects.Return)
	}
}

// calldataLoadMasked is: PUSH1 0x04 CALLDATALOAD PUSH20 0xff..ff AND POP STOP
// - mimics reading an address-shaped argument at slot 0.
func calldataLoadMasked() []byte {
	var code []byte
	code = append(code, byte(disasm.PUSH1), 0x04)
	code = append(code, byte(disasm.CALLDATALOAD))
	code = append(code, byte(disasm.PUSH20))
	for i := 0; i < 20; i++ {
		code = append(code, 0xff)
	}
	code = append(code, byte(disasm.AND))
	code = append(code, byte(disasm.POP))
	code = append(code, byte(disasm.STOP))
	return code
}

func TestRunRecordsCalldataArgWithMask(t *testing.T) {
	code := calldataLoadMasked()
	bm := Run(disasm.Disassemble(code), 0, Options{})
	if len(bm.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(bm.Nodes))
	}
	arg, ok := bm.Nodes[0].Effects.Args[0]
	if !ok {
		t.Fatalf("expected arg at slot 0, got %+v", bm.Nodes[0].Effects.Args)
	}
	if arg.MaskBits != 160 {
		t.Errorf("expected 160-bit mask (address), got %d", arg.MaskBits)
	}
}

// callvalueGuard mimics solc's standard nonpayable guard:
// CALLVALUE DUP1 ISZERO PUSH2 <continue> JUMPI PUSH1 0x00 DUP1 REVERT
// JUMPDEST POP STOP
func callvalueGuard() []byte {
	var code []byte
	code = append(code, byte(disasm.CALLVALUE))
	code = append(code, byte(disasm.DUP1))
	code = append(code, byte(disasm.ISZERO))
	contJumpdestPos := byte(0) // patched below
	code = append(code, byte(disasm.PUSH2), 0x00, contJumpdestPos)
	code = append(code, byte(disasm.JUMPI))
	code = append(code, byte(disasm.PUSH1), 0x00)
	code = append(code, byte(disasm.DUP1))
	code = append(code, byte(disasm.REVERT))
	jumpdestPC := len(code)
	code = append(code, byte(disasm.JUMPDEST))
	code = append(code, byte(disasm.POP))
	code = append(code, byte(disasm.STOP))
	code[5] = byte(jumpdestPC)
	return code
}

func TestRunCallValueGuardTagsPathConditions(t *testing.T) {
	code := callvalueGuard()
	bm := Run(disasm.Disassemble(code), 0, Options{})

	var sawRevertOnNonZero, sawContinueOnZero bool
	for _, n := range bm.Nodes {
		if n.Terminal == TerminalRevert && n.Cond == CallValueNonZero {
			sawRevertOnNonZero = true
		}
		if n.Terminal == TerminalStop && n.Cond == CallValueZero {
			sawContinueOnZero = true
		}
	}
	if !sawRevertOnNonZero {
		t.Error("expected a revert node tagged CallValueNonZero")
	}
	if !sawContinueOnZero {
		t.Error("expected a continuation node tagged CallValueZero")
	}
}

// customErrorRevert mimics solc's custom-error revert shape: the 4-byte
// selector is shifted into the top 4 bytes of a word (PUSH1 0xe0 SHL)
// before being stored, so that revert(0, 4) exposes exactly those 4 bytes.
func customErrorRevert(sel [4]byte) []byte {
	var code []byte
	code = append(code, byte(disasm.PUSH4))
	code = append(code, sel[:]...)
	code = append(code, byte(disasm.PUSH1), 0xe0)
	code = append(code, byte(disasm.SHL))
	code = append(code, byte(disasm.PUSH1), 0x00)
	code = append(code, byte(disasm.MSTORE))
	code = append(code, byte(disasm.PUSH1), 0x04)
	code = append(code, byte(disasm.PUSH1), 0x00)
	code = append(code, byte(disasm.REVERT))
	return code
}

func TestRunRecordsCustomErrorSelector(t *testing.T) {
	sel := [4]byte{0x08, 0xc3, 0x79, 0xa0}
	bm := Run(disasm.Disassemble(customErrorRevert(sel)), 0, Options{})
	if len(bm.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(bm.Nodes))
	}
	eff := bm.Nodes[0].Effects
	if !eff.HasCustomError {
		t.Fatal("expected custom error to be recorded")
	}
	if eff.CustomErrorSelector != sel {
		t.Errorf("got selector %x, want %x", eff.CustomErrorSelector, sel)
	}
}

// infiniteLoop is: JUMPDEST JUMP(0) - jumps to itself forever, verifying
// the loop-bound guardrail terminates exploration.
func infiniteLoop() []byte {
	return []byte{
		byte(disasm.JUMPDEST),
		byte(disasm.PUSH1), 0x00,
		byte(disasm.JUMP),
	}
}

func TestRunLoopBoundCutsInfiniteLoop(t *testing.T) {
	code := infiniteLoop()
	bm := Run(disasm.Disassemble(code), 0, Options{LoopBound: 3, MaxWallTime: time.Second})
	if len(bm.Nodes) == 0 {
		t.Fatal("expected at least one node")
	}
	var cutLoop, cutBudget bool
	for _, n := range bm.Nodes {
		if n.Terminal == TerminalLoop {
			cutLoop = true
		}
		if n.Terminal == TerminalBudgetExceeded {
			cutBudget = true
		}
	}
	if !cutLoop {
		t.Error("expected the loop to be cut by the loop-bound guardrail as TerminalLoop")
	}
	if cutBudget {
		t.Error("an ordinary loop-bound cut must not report TerminalBudgetExceeded")
	}
	if len(bm.Nodes) > 20 {
		t.Errorf("expected loop bound to keep node count small, got %d", len(bm.Nodes))
	}
}

func TestRunUnconstrainedForkProducesTwoPaths(t *testing.T) {
	// CALLDATALOAD(0) ISZERO PUSH1 <dest> JUMPI STOP JUMPDEST STOP
	var code []byte
	code = append(code, byte(disasm.PUSH1), 0x00)
	code = append(code, byte(disasm.CALLDATALOAD))
	code = append(code, byte(disasm.ISZERO))
	code = append(code, byte(disasm.PUSH1), 0x00) // patched below
	code = append(code, byte(disasm.JUMPI))
	code = append(code, byte(disasm.STOP))
	destPC := len(code)
	code = append(code, byte(disasm.JUMPDEST))
	code = append(code, byte(disasm.STOP))
	code[5] = byte(destPC)

	bm := Run(disasm.Disassemble(code), 0, Options{})
	if len(bm.Nodes) != 3 { // entry + two successors
		t.Fatalf("expected 3 nodes (entry + 2 forks), got %d", len(bm.Nodes))
	}
	if len(bm.Nodes[0].Successors) != 2 {
		t.Errorf("expected entry node to fork into 2 successors, got %d", len(bm.Nodes[0].Successors))
	}
}

func TestRunMaxVisitedPCsGuardrail(t *testing.T) {
	code := infiniteLoop()
	bm := Run(disasm.Disassemble(code), 0, Options{MaxVisitedPCs: 5, MaxWallTime: time.Second})
	var cut bool
	for _, n := range bm.Nodes {
		if n.Terminal == TerminalBudgetExceeded {
			cut = true
		}
	}
	if !cut {
		t.Error("expected MaxVisitedPCs to cut exploration")
	}
}

// calldataGatedLoop is a loop whose exit condition depends on calldata (so
// the executor can't concretely decide it and forks both ways every
// iteration): JUMPDEST PUSH1 0 CALLDATALOAD ISZERO PUSH2<exit> JUMPI
// PUSH2<head> JUMP; exit: JUMPDEST PUSH1 0x20 PUSH1 0 RETURN. Every
// iteration the taken branch returns immediately and the fallthrough branch
// loops back, so past opts.LoopBound revisits the loop path is cut while
// every exit branch taken along the way still returns normally.
func calldataGatedLoop() []byte {
	var code []byte
	head := len(code)
	code = append(code, byte(disasm.JUMPDEST))
	code = append(code, byte(disasm.PUSH1), 0x00)
	code = append(code, byte(disasm.CALLDATALOAD))
	code = append(code, byte(disasm.ISZERO))
	pushExitAt := len(code)
	code = append(code, byte(disasm.PUSH2), 0x00, 0x00)
	code = append(code, byte(disasm.JUMPI))
	pushHeadAt := len(code)
	code = append(code, byte(disasm.PUSH2), 0x00, 0x00)
	code = append(code, byte(disasm.JUMP))
	exit := len(code)
	code = append(code, byte(disasm.JUMPDEST))
	code = append(code, byte(disasm.PUSH1), 0x20)
	code = append(code, byte(disasm.PUSH1), 0x00)
	code = append(code, byte(disasm.RETURN))

	code[pushExitAt+1] = byte(exit >> 8)
	code[pushExitAt+2] = byte(exit)
	code[pushHeadAt+1] = byte(head >> 8)
	code[pushHeadAt+2] = byte(head)
	return code
}

func TestRunOrdinaryLoopCutDoesNotReportBudgetExceeded(t *testing.T) {
	code := calldataGatedLoop()
	bm := Run(disasm.Disassemble(code), 0, Options{LoopBound: 3, MaxWallTime: time.Second})

	var sawLoop, sawReturn, sawBudget bool
	for _, n := range bm.Nodes {
		switch n.Terminal {
		case TerminalLoop:
			sawLoop = true
		case TerminalReturn:
			sawReturn = true
		case TerminalBudgetExceeded:
			sawBudget = true
		}
	}
	if !sawLoop {
		t.Error("expected the over-long path to be cut as TerminalLoop")
	}
	if !sawReturn {
		t.Error("expected at least one sibling leaf to terminate normally via RETURN")
	}
	if sawBudget {
		t.Error("an ordinary bounded loop must never report TerminalBudgetExceeded")
	}
}
