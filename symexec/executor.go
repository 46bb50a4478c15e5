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

// Package symexec abstractly interprets EVM bytecode starting from a
// function entry point, forking at unconstrained JUMPIs, to produce a
// branch map (an arena of basic-block nodes) and the jumpdest set it
// touched. It records the side effects spec §4.E asks the function
// analyzer to later collapse: calldata argument reads, storage touches,
// logs, returns, and custom-error reverts.
package symexec

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/trailbytes/evmdecomp/disasm"
)

// Options bounds exploration so that pathological or adversarial bytecode
// (this project's whole reason for existing is to analyze bytecode nobody
// vetted) can't make a decompile run forever.
type Options struct {
	// MaxVisitedPCs caps the number of (pc) visits across the whole walk.
	MaxVisitedPCs int
	// MaxForkDepth caps how many unconstrained JUMPI forks one path may
	// accumulate.
	MaxForkDepth int
	// MaxWallTime caps real time spent in Run.
	MaxWallTime time.Duration
	// LoopBound caps how many times a (pc, stack-height) pair may recur on
	// one path before that path is cut. Zero means DefaultLoopBound.
	LoopBound int
}

const (
	DefaultMaxVisitedPCs = 20000
	DefaultMaxForkDepth  = 64
	DefaultMaxWallTime   = 2 * time.Second
	DefaultLoopBound     = 3
)

func (o Options) withDefaults() Options {
	if o.MaxVisitedPCs <= 0 {
		o.MaxVisitedPCs = DefaultMaxVisitedPCs
	}
	if o.MaxForkDepth <= 0 {
		o.MaxForkDepth = DefaultMaxForkDepth
	}
	if o.MaxWallTime <= 0 {
		o.MaxWallTime = DefaultMaxWallTime
	}
	if o.LoopBound <= 0 {
		o.LoopBound = DefaultLoopBound
	}
	return o
}

// loopKey identifies a revisit of the same PC at the same stack height, the
// repetition signature spec's loop-bound guardrail cuts on.
type loopKey struct {
	pc          uint64
	stackHeight int
}

// frame is one pending path of execution: a PC to resume at, the abstract
// stack and memory state at that point, and the bookkeeping needed to
// enforce the fork-depth and loop-count guardrails independently per path.
type frame struct {
	pc         uint64
	stack      []value
	memory     map[uint64][32]byte
	forkDepth  int
	cond       PathCondition
	loopCounts map[loopKey]int
}

func (f frame) push(v value) frame {
	f.stack = append(append([]value{}, f.stack...), v)
	return f
}

func (f *frame) pop() value {
	if len(f.stack) == 0 {
		return unknownValue()
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

func copyMemory(m map[uint64][32]byte) map[uint64][32]byte {
	out := make(map[uint64][32]byte, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Run symbolically executes code starting at entryPC, returning the
// resulting branch map. The map's JumpdestSet is the full disassembly's
// JumpdestSet, computed here from d (spec's "(branch_map, jumpdest_set)"
// pair).
func Run(d disasm.Disassembly, entryPC uint64, opts Options) BranchMap {
	opts = opts.withDefaults()
	index := d.Index()
	jumpdests := d.JumpdestSet()

	// The worklist always starts with exactly the entry frame, so the first
	// node the loop below produces (index 0) is always the entry node.
	bm := BranchMap{JumpdestSet: jumpdests, EntryNode: 0}

	deadline := time.Now().Add(opts.MaxWallTime)
	visited := 0

	worklist := []frame{{
		pc:         entryPC,
		memory:     map[uint64][32]byte{},
		loopCounts: map[loopKey]int{},
	}}

	for len(worklist) > 0 {
		fr := worklist[0]
		worklist = worklist[1:]

		if time.Now().After(deadline) {
			bm.Nodes = append(bm.Nodes, Node{
				ID: len(bm.Nodes), EntryPC: fr.pc, Terminal: TerminalBudgetExceeded, Effects: newEffects(),
			})
			continue
		}

		produced, cont := runBlock(d, index, &fr, &visited, opts)
		bm.Nodes = append(bm.Nodes, produced)
		thisIdx := len(bm.Nodes) - 1
		bm.Nodes[thisIdx].ID = thisIdx

		// worklist is a single FIFO queue and every dequeue produces exactly
		// one node, so a frame's eventual node index is predictable from the
		// queue's length at the moment it's enqueued: len(bm.Nodes) nodes
		// already exist, plus one for every frame still ahead of it in line.
		for _, next := range cont {
			worklist = append(worklist, next)
			bm.Nodes[thisIdx].Successors = append(bm.Nodes[thisIdx].Successors, len(bm.Nodes)+len(worklist)-1)
		}
	}

	return bm
}

// runBlock executes instructions from fr.pc until a branch or terminal
// opcode, mutating fr in place, and returns the produced node plus zero,
// one, or two continuation frames for the caller to enqueue.
func runBlock(d disasm.Disassembly, index map[uint64]int, fr *frame, visited *int, opts Options) (Node, []frame) {
	node := Node{EntryPC: fr.pc, Cond: fr.cond, Effects: newEffects()}

	if fr.pc == loopCutSentinel {
		node.Terminal = TerminalLoop
		return node, nil
	}

	for {
		i, ok := index[fr.pc]
		if !ok {
			node.Terminal = TerminalStop
			return node, nil
		}
		ins := d[i]
		*visited++
		if *visited > opts.MaxVisitedPCs {
			node.Terminal = TerminalBudgetExceeded
			return node, nil
		}

		if ins.Op == disasm.JUMPDEST {
			fr.pc += uint64(1 + ins.Op.ImmediateSize())
			continue
		}

		if ins.Op.IsPush() {
			n := new(uint256.Int).SetBytes(ins.Immediate)
			*fr = fr.push(value{kind: kindConcrete, num: n})
			fr.pc += uint64(1 + ins.Op.ImmediateSize())
			continue
		}
		if ins.Op == disasm.PUSH0 {
			*fr = fr.push(concreteValue(0))
			fr.pc++
			continue
		}
		if ins.Op.IsDup() {
			n := int(ins.Op-disasm.DUP1) + 1
			if n <= len(fr.stack) {
				*fr = fr.push(fr.stack[len(fr.stack)-n])
			} else {
				*fr = fr.push(unknownValue())
			}
			fr.pc++
			continue
		}
		if ins.Op.IsSwap() {
			n := int(ins.Op-disasm.SWAP1) + 1
			if n < len(fr.stack) {
				top := len(fr.stack) - 1
				other := top - n
				fr.stack[top], fr.stack[other] = fr.stack[other], fr.stack[top]
			}
			fr.pc++
			continue
		}

		switch ins.Op {
		case disasm.STOP:
			node.Terminal = TerminalStop
			return node, nil

		case disasm.POP:
			fr.pop()

		case disasm.ADD, disasm.SUB, disasm.MUL, disasm.DIV, disasm.SDIV,
			disasm.MOD, disasm.SMOD, disasm.EXP, disasm.SIGNEXTEND,
			disasm.LT, disasm.GT, disasm.SLT, disasm.SGT, disasm.OR, disasm.XOR,
			disasm.SHL, disasm.SHR, disasm.SAR, disasm.BYTE:
			a, b := fr.pop(), fr.pop()
			*fr = fr.push(foldBinary(ins.Op, a, b))

		case disasm.AND:
			a, b := fr.pop(), fr.pop()
			*fr = fr.push(foldAnd(a, b, &node))

		case disasm.EQ:
			a, b := fr.pop(), fr.pop()
			*fr = fr.push(foldEq(a, b))

		case disasm.ISZERO:
			a := fr.pop()
			*fr = fr.push(foldIsZero(a))

		case disasm.NOT:
			a := fr.pop()
			if a.kind == kindConcrete {
				r := new(uint256.Int).Not(a.num)
				*fr = fr.push(value{kind: kindConcrete, num: r})
			} else {
				*fr = fr.push(unknownValue())
			}

		case disasm.KECCAK256:
			fr.pop()
			fr.pop()
			*fr = fr.push(unknownValue())

		case disasm.ADDRESS, disasm.CALLER, disasm.ORIGIN, disasm.GASPRICE,
			disasm.COINBASE, disasm.TIMESTAMP, disasm.NUMBER, disasm.DIFFICULTY,
			disasm.GASLIMIT, disasm.CHAINID, disasm.SELFBALANCE, disasm.BASEFEE,
			disasm.CODESIZE, disasm.RETURNDATASIZE, disasm.CALLDATASIZE,
			disasm.MSIZE, disasm.GAS, disasm.PC:
			node.Effects.SawEnvRead = true
			*fr = fr.push(unknownValue())

		case disasm.BALANCE, disasm.EXTCODESIZE, disasm.EXTCODEHASH, disasm.BLOCKHASH:
			fr.pop()
			node.Effects.SawEnvRead = true
			*fr = fr.push(unknownValue())

		case disasm.CALLVALUE:
			node.Effects.SawCallValue = true
			*fr = fr.push(value{kind: kindCallValue})

		case disasm.CALLDATALOAD:
			off := fr.pop()
			v := value{kind: kindCalldata}
			if n, ok := off.asUint64(); ok {
				v.offset = n
				slot := n / 32
				if _, exists := node.Effects.Args[slot]; !exists {
					node.Effects.Args[slot] = ArgInfo{Slot: slot}
				}
			}
			*fr = fr.push(v)

		case disasm.CALLDATACOPY, disasm.CODECOPY, disasm.EXTCODECOPY, disasm.RETURNDATACOPY:
			popArity := 3
			if ins.Op == disasm.EXTCODECOPY {
				popArity = 4
			}
			for k := 0; k < popArity; k++ {
				fr.pop()
			}

		case disasm.MLOAD:
			off := fr.pop()
			loaded := false
			if n, ok := off.asUint64(); ok && n%32 == 0 {
				if word, ok := fr.memory[n]; ok {
					x := new(uint256.Int).SetBytes(word[:])
					*fr = fr.push(value{kind: kindConcrete, num: x})
					loaded = true
				}
			}
			if !loaded {
				*fr = fr.push(unknownValue())
			}

		case disasm.MSTORE:
			off, val := fr.pop(), fr.pop()
			if n, ok := off.asUint64(); ok && n%32 == 0 && val.kind == kindConcrete {
				var word [32]byte
				b := val.num.Bytes32()
				copy(word[:], b[:])
				fr.memory[n] = word
			}

		case disasm.MSTORE8:
			fr.pop()
			fr.pop()

		case disasm.SLOAD:
			key := fr.pop()
			node.Effects.SawSload = true
			v := value{kind: kindStorage}
			if n, ok := key.asUint64(); ok {
				v.slot = n
				node.Effects.Storage[n] = true
			}
			*fr = fr.push(v)

		case disasm.SSTORE, disasm.TSTORE:
			key := fr.pop()
			fr.pop()
			node.Effects.SawSstore = true
			if n, ok := key.asUint64(); ok {
				node.Effects.Storage[n] = true
			}

		case disasm.TLOAD:
			fr.pop()
			*fr = fr.push(unknownValue())

		case disasm.MCOPY:
			fr.pop()
			fr.pop()
			fr.pop()

		case disasm.JUMP:
			dest := fr.pop()
			node.Terminal = TerminalFallthrough
			if n, ok := dest.asUint64(); ok {
				return node, []frame{continuePath(*fr, n, fr.cond, fr.forkDepth, opts)}
			}
			node.Terminal = TerminalInvalid
			return node, nil

		case disasm.JUMPI:
			dest, condv := fr.pop(), fr.pop()
			n, ok := dest.asUint64()
			if !ok {
				node.Terminal = TerminalInvalid
				return node, nil
			}
			takenCond, fallCond := branchConditions(condv)
			node.Terminal = TerminalFallthrough

			forkDepth := fr.forkDepth
			if takenCond == Unconstrained {
				forkDepth++
			}
			if forkDepth > opts.MaxForkDepth {
				node.Terminal = TerminalBudgetExceeded
				return node, nil
			}

			fallPC := fr.pc + 1
			taken := continuePath(*fr, n, takenCond, forkDepth, opts)
			fall := continuePath(*fr, fallPC, fallCond, forkDepth, opts)
			return node, []frame{taken, fall}

		case disasm.LOG0, disasm.LOG1, disasm.LOG2, disasm.LOG3, disasm.LOG4:
			fr.pop() // offset
			fr.pop() // size
			n := int(ins.Op - disasm.LOG0)
			ev := LogEvent{Topics: n}
			if n >= 1 {
				t := fr.pop()
				if t.kind == kindConcrete {
					ev.Topic0 = t.num.Bytes32()
					ev.HasTopic0 = true
				}
				for k := 1; k < n; k++ {
					fr.pop()
				}
			}
			node.Effects.SawLog = true
			node.Effects.Logs = append(node.Effects.Logs, ev)

		case disasm.CREATE:
			fr.pop()
			fr.pop()
			fr.pop()
			*fr = fr.push(unknownValue())

		case disasm.CREATE2:
			fr.pop()
			fr.pop()
			fr.pop()
			fr.pop()
			*fr = fr.push(unknownValue())

		case disasm.CALL, disasm.CALLCODE:
			fr.pop() // gas
			fr.pop() // address
			v := fr.pop()
			fr.pop() // argsOffset
			fr.pop() // argsSize
			fr.pop() // retOffset
			fr.pop() // retSize
			if !v.isZero() {
				node.Effects.SawCallWithValue = true
			}
			*fr = fr.push(unknownValue())

		case disasm.DELEGATECALL, disasm.STATICCALL:
			fr.pop()
			fr.pop()
			fr.pop()
			fr.pop()
			fr.pop()
			fr.pop()
			*fr = fr.push(unknownValue())

		case disasm.RETURN:
			off, size := fr.pop(), fr.pop()
			_ = off
			ret := &ReturnInfo{}
			if n, ok := size.asUint64(); ok {
				ret.Size = n
			}
			node.Effects.Return = ret
			node.Terminal = TerminalReturn
			return node, nil

		case disasm.REVERT:
			off, size := fr.pop(), fr.pop()
			node.Terminal = TerminalRevert
			if n, ok := off.asUint64(); ok && n%32 == 0 {
				if sz, ok := size.asUint64(); ok && sz == 4 {
					if word, present := fr.memory[n]; present {
						var sel [4]byte
						copy(sel[:], word[:4])
						node.Effects.CustomErrorSelector = sel
						node.Effects.HasCustomError = true
					}
				}
			}
			return node, nil

		case disasm.SELFDESTRUCT:
			fr.pop()
			node.Terminal = TerminalSelfdestruct
			return node, nil

		case disasm.INVALID:
			node.Terminal = TerminalInvalid
			return node, nil

		default:
			// Unassigned opcode byte: treat like INVALID, matching the EVM's
			// own behavior for undefined instructions.
			node.Terminal = TerminalInvalid
			return node, nil
		}

		fr.pc += uint64(1 + ins.Op.ImmediateSize())
	}
}

// continuePath builds the continuation frame for a successor PC, applying
// the loop-bound guardrail: a (pc, stack-height) pair recurring more than
// opts.LoopBound times on this path is cut by returning a frame that will
// immediately terminate as TerminalLoop. This is routine — any loop over a
// dynamic array or a compiler-emitted copy loop hits it — and distinct from
// TerminalBudgetExceeded, which means the hard wall-time/PC-count/fork-depth
// wall was hit.
func continuePath(fr frame, pc uint64, cond PathCondition, forkDepth int, opts Options) frame {
	key := loopKey{pc: pc, stackHeight: len(fr.stack)}
	counts := make(map[loopKey]int, len(fr.loopCounts)+1)
	for k, v := range fr.loopCounts {
		counts[k] = v
	}
	counts[key]++

	next := frame{
		pc:         pc,
		stack:      append([]value{}, fr.stack...),
		memory:     copyMemory(fr.memory),
		forkDepth:  forkDepth,
		cond:       cond,
		loopCounts: counts,
	}
	if counts[key] > opts.LoopBound {
		next.pc = loopCutSentinel
	}
	return next
}

// loopCutSentinel is an out-of-range PC that marks a frame cut by the loop
// bound: runBlock checks for it before executing anything and ends the
// path immediately as TerminalLoop. Using a sentinel PC rather than a
// separate "cut" flag keeps the frame struct unchanged.
const loopCutSentinel = ^uint64(0)

// branchConditions interprets a JUMPI condition value, recognizing the
// CALLVALUE and ISZERO(CALLVALUE) shapes spec's payable-downgrade rule
// needs; every other condition is left Unconstrained so the executor forks
// both ways.
func branchConditions(cond value) (taken, fall PathCondition) {
	switch cond.kind {
	case kindCallValue:
		return CallValueNonZero, CallValueZero
	case kindUnknown:
		if cond.isZeroOfCallValue {
			return CallValueZero, CallValueNonZero
		}
	}
	return Unconstrained, Unconstrained
}
