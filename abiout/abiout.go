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

// Package abiout assembles the final, deterministically ordered sequence
// of ABI structures (functions, events, errors) a decompile run produces.
package abiout

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Kind distinguishes the three ABI structure categories spec §4.H names.
type Kind string

const (
	KindFunction Kind = "function"
	KindEvent    Kind = "event"
	KindError    Kind = "error"
)

// Entry is one ABI structure: a function, event, or error, normalized to
// the fields spec §4.H lists regardless of kind (Outputs/StateMutability
// are meaningless for events/errors and left at their zero value).
type Entry struct {
	Kind            Kind          `json:"kind"`
	Name            string        `json:"name"`
	Selector        [4]byte       `json:"selector,omitempty"`
	Topic           [32]byte      `json:"topic,omitempty"`
	Inputs          abi.Arguments `json:"inputs"`
	Outputs         abi.Arguments `json:"outputs,omitempty"`
	StateMutability string        `json:"stateMutability,omitempty"`
}

// Assemble sorts the three recovered collections into one ordered list:
// functions by selector ascending, events by topic, errors by selector,
// per spec §4.H's deterministic-ordering requirement. The three
// collections are kept internally sorted and simply concatenated, since
// the only cross-kind ordering spec requires is stable within each kind.
func Assemble(functions, events, errs []Entry) []Entry {
	fns := append([]Entry{}, functions...)
	evs := append([]Entry{}, events...)
	es := append([]Entry{}, errs...)

	sort.Slice(fns, func(i, j int) bool { return bytes.Compare(fns[i].Selector[:], fns[j].Selector[:]) < 0 })
	sort.Slice(evs, func(i, j int) bool { return bytes.Compare(evs[i].Topic[:], evs[j].Topic[:]) < 0 })
	sort.Slice(es, func(i, j int) bool { return bytes.Compare(es[i].Selector[:], es[j].Selector[:]) < 0 })

	out := make([]Entry, 0, len(fns)+len(evs)+len(es))
	out = append(out, fns...)
	out = append(out, evs...)
	out = append(out, es...)
	return out
}

// jsonEntry mirrors Entry but renders Selector/Topic as hex strings,
// since raw byte arrays marshal to JSON number arrays by default and
// spec's external consumers expect hex.
type jsonEntry struct {
	Kind            Kind           `json:"kind"`
	Name            string         `json:"name"`
	Selector        string         `json:"selector,omitempty"`
	Topic           string         `json:"topic,omitempty"`
	Inputs          []jsonArgument `json:"inputs"`
	Outputs         []jsonArgument `json:"outputs,omitempty"`
	StateMutability string         `json:"stateMutability,omitempty"`
}

type jsonArgument struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// MarshalJSON renders the assembled entry list as the JSON artifact
// written under the --output directory (spec.md §6, "Output").
func MarshalJSON(entries []Entry) ([]byte, error) {
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		je := jsonEntry{Kind: e.Kind, Name: e.Name, StateMutability: e.StateMutability}
		if e.Kind == KindFunction || e.Kind == KindError {
			je.Selector = hexSelector(e.Selector)
		}
		if e.Kind == KindEvent {
			je.Topic = hexTopic(e.Topic)
		}
		for _, in := range e.Inputs {
			je.Inputs = append(je.Inputs, jsonArgument{Name: in.Name, Type: in.Type.String()})
		}
		for _, o := range e.Outputs {
			je.Outputs = append(je.Outputs, jsonArgument{Name: o.Name, Type: o.Type.String()})
		}
		out = append(out, je)
	}
	return json.MarshalIndent(out, "", "  ")
}

func hexSelector(sel [4]byte) string {
	return hexutil.Encode(sel[:])
}

func hexTopic(topic [32]byte) string {
	return hexutil.Encode(topic[:])
}
