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

// Package analyzer collapses a symexec.BranchMap's per-branch evidence into
// one function entry's fields: its argument slots, storage footprint,
// return shape, and pure/view/payable flags.
package analyzer

import (
	"sort"

	"github.com/trailbytes/evmdecomp/symexec"
)

// Argument is one recovered calldata slot, with enough evidence for the
// parameter matcher to later narrow it to a concrete ABI type.
type Argument struct {
	Slot      uint64
	MaskBits  int
	Heuristic string
}

// LogSite is one LOG*'s shape: topic count and, when constant, the
// event-selector topic.
type LogSite struct {
	Topics    int
	Topic0    [32]byte
	HasTopic0 bool
}

// CustomError is one REVERT-with-4-byte-prefix site.
type CustomError struct {
	Selector [4]byte
}

// Function is the analyzer's output for one entry point: the branch map's
// per-branch Effects collapsed into one dense record.
type Function struct {
	EntryPC uint64

	Arguments []Argument
	Storage   []uint64
	Returns   *uint64 // byte size of the widest RETURN; nil if every leaf reverts

	Logs   []LogSite
	Errors []CustomError

	Pure    bool
	View    bool
	Payable bool
}

// Analyze walks bm once, in the topological order the worklist already
// produced it in (a node never appears before a node that reaches it,
// since Run only ever appends successors after their parent), collapsing
// every branch's Effects into one Function per spec's rules in §4.F.
func Analyze(bm symexec.BranchMap) Function {
	fn := Function{
		EntryPC: entryPC(bm),
		Pure:    true,
		View:    true,
		Payable: false,
	}

	argSeen := map[uint64]*Argument{}
	argOrder := []uint64{}
	storageSeen := map[uint64]bool{}
	var widestReturn *uint64
	anyReturn := false
	payableProven := false

	for _, n := range bm.Nodes {
		eff := n.Effects

		for slot, info := range eff.Args {
			a, ok := argSeen[slot]
			if !ok {
				a = &Argument{Slot: slot}
				argSeen[slot] = a
				argOrder = append(argOrder, slot)
			}
			if info.MaskBits > 0 && (a.MaskBits == 0 || info.MaskBits < a.MaskBits) {
				a.MaskBits = info.MaskBits
				a.Heuristic = heuristicForMask(info.MaskBits)
			}
		}

		for slot := range eff.Storage {
			storageSeen[slot] = true
		}

		for _, log := range eff.Logs {
			fn.Logs = append(fn.Logs, LogSite{Topics: log.Topics, Topic0: log.Topic0, HasTopic0: log.HasTopic0})
		}

		if eff.HasCustomError {
			fn.Errors = append(fn.Errors, CustomError{Selector: eff.CustomErrorSelector})
		}

		if eff.Return != nil {
			anyReturn = true
			if widestReturn == nil || eff.Return.Size > *widestReturn {
				sz := eff.Return.Size
				widestReturn = &sz
			}
		}

		if eff.SawSload || eff.SawSstore || eff.SawEnvRead {
			fn.Pure = false
		}
		if eff.SawSstore || eff.SawLog || eff.SawCallWithValue {
			fn.View = false
		}

		// payable is proven true the moment we see a leaf that is reached
		// under CallValueNonZero and does NOT terminate in an early revert;
		// spec's rule is "no early revert when CALLVALUE != 0", i.e. a
		// non-reverting path exists that's conditioned on a nonzero call
		// value.
		if n.Cond == symexec.CallValueNonZero && n.Terminal != symexec.TerminalRevert {
			payableProven = true
		}
	}
	// payable defaults to false and is upgraded only on proof of
	// acceptance: a function whose every CallValueNonZero-tagged leaf
	// reverts stays nonpayable, and so does one with no CallValueNonZero-
	// tagged branch at all (a contract invisible to our CALLVALUE-guard
	// detector is conservatively treated as nonpayable).
	if payableProven {
		fn.Payable = true
	}
	// pure implies view: a function that touched storage or read the
	// environment can't be pure even if it never wrote storage, logged, or
	// sent value, so closing !view => !pure (the converse already holds
	// since env-reads/SLOAD also downgrade pure directly above).
	if !fn.View {
		fn.Pure = false
	}

	sort.Slice(argOrder, func(i, j int) bool { return argOrder[i] < argOrder[j] })
	for _, slot := range argOrder {
		fn.Arguments = append(fn.Arguments, *argSeen[slot])
	}

	for slot := range storageSeen {
		fn.Storage = append(fn.Storage, slot)
	}
	sort.Slice(fn.Storage, func(i, j int) bool { return fn.Storage[i] < fn.Storage[j] })

	if anyReturn {
		fn.Returns = widestReturn
	}

	return fn
}

func entryPC(bm symexec.BranchMap) uint64 {
	if bm.EntryNode < 0 || bm.EntryNode >= len(bm.Nodes) {
		return 0
	}
	return bm.Nodes[bm.EntryNode].EntryPC
}

// heuristicForMask maps an AND-mask width, in bits, to the coarse ABI
// heuristic tag spec §4.F names as examples.
func heuristicForMask(bits int) string {
	switch {
	case bits == 8:
		return "bool"
	case bits == 160:
		return "address"
	case bits > 0 && bits < 160 && bits%8 == 0:
		return "uint" // narrower-than-address integer width, exact width TBD by parammatch
	case bits == 256:
		return "dynamic" // unmasked full word: could be uint256, bytes32, or a dynamic-type head
	default:
		return "bytesN"
	}
}
