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

package pipeline

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/trailbytes/evmdecomp/abiout"
	"github.com/trailbytes/evmdecomp/analyzer"
	"github.com/trailbytes/evmdecomp/sigdb"
)

// assembleABI collapses every analyzed function's recovered logs and
// custom errors into the event/error collections, resolves their names
// (unless SkipResolving), and hands everything to abiout.Assemble for the
// final deterministic ordering (spec.md §4.H).
func (p *Pipeline) assembleABI(ctx context.Context, results []FunctionResult) []abiout.Entry {
	var functions []abiout.Entry
	topics := map[[32]byte]bool{}
	errSelectors := map[[4]byte]bool{}

	for _, fr := range results {
		if fr.BudgetExhausted {
			continue
		}
		functions = append(functions, functionEntry(fr))
		for _, log := range fr.Function.Logs {
			if log.HasTopic0 {
				topics[log.Topic0] = true
			}
		}
		for _, ce := range fr.Function.Errors {
			errSelectors[ce.Selector] = true
		}
	}

	var events, errs []abiout.Entry
	for topic := range topics {
		events = append(events, eventEntry(topic, p.resolveEvent(ctx, topic)))
	}
	for sel := range errSelectors {
		errs = append(errs, errorEntry(sel, p.resolveCustomError(ctx, sel)))
	}

	return abiout.Assemble(functions, events, errs)
}

func (p *Pipeline) resolveEvent(ctx context.Context, topic [32]byte) []sigdb.ResolvedSig {
	if p.sig == nil || p.cfg.SkipResolving {
		return nil
	}
	sigs, err := p.sig.ResolveEvent(ctx, topic)
	if err != nil {
		return nil
	}
	return sigs
}

func (p *Pipeline) resolveCustomError(ctx context.Context, selector [4]byte) []sigdb.ResolvedSig {
	if p.sig == nil || p.cfg.SkipResolving {
		return nil
	}
	sigs, err := p.sig.ResolveError(ctx, selector)
	if err != nil {
		return nil
	}
	return sigs
}

// functionEntry builds the abiout.Entry for one analyzed, (possibly)
// parameter-matched function. Unresolved functions still get an entry: the
// name falls back to "unknown_<selector>" and Inputs to one unnamed
// argument per recovered slot, so every recovered entry point always
// appears in the final artifact, per spec.md §4.H.
func functionEntry(fr FunctionResult) abiout.Entry {
	e := abiout.Entry{
		Kind:            abiout.KindFunction,
		Selector:        fr.Selector,
		StateMutability: stateMutability(fr.Function),
	}

	switch {
	case fr.Chosen != nil:
		e.Name = functionNameOf(fr.Chosen.Signature)
		e.Inputs = fr.Chosen.Inputs
	case !fr.HasSelector:
		e.Name = "fallback"
	default:
		e.Name = fmt.Sprintf("unknown_%x", fr.Selector)
		e.Inputs = unnamedArguments(fr.Function)
	}

	if fr.Function.Returns != nil {
		e.Outputs = unnamedReturn(*fr.Function.Returns)
	}
	return e
}

// unnamedArguments synthesizes one bytes32 placeholder input per recovered
// argument slot for a function whose signature never resolved, so the
// artifact still reports the correct arity.
func unnamedArguments(fn analyzer.Function) abi.Arguments {
	if len(fn.Arguments) == 0 {
		return nil
	}
	t, _ := abi.NewType("bytes32", "", nil)
	out := make(abi.Arguments, len(fn.Arguments))
	for i := range fn.Arguments {
		out[i] = abi.Argument{Type: t}
	}
	return out
}

// unnamedReturn synthesizes a single placeholder output representing the
// widest observed RETURN, spec.md §4.F's "return shape" recorded only as a
// byte size rather than a decoded type.
func unnamedReturn(size uint64) abi.Arguments {
	name := "bytes"
	if size == 32 {
		name = "bytes32"
	}
	t, _ := abi.NewType(name, "", nil)
	return abi.Arguments{{Type: t}}
}

// functionNameOf extracts the identifier portion of a full text signature,
// e.g. "transfer(address,uint256)" -> "transfer".
func functionNameOf(signature string) string {
	for i, r := range signature {
		if r == '(' {
			return signature[:i]
		}
	}
	return signature
}

// eventEntry and errorEntry attach a resolved human-readable name (when
// sigdb found one) to an otherwise-anonymous log site or custom-error
// selector. An unresolved event still reports its topic; an unresolved
// custom error still reports its selector. Picking the last resolved
// candidate matches spec.md §4.G's --default "highest specificity" rule,
// reused here since events/errors have no argument evidence to narrow
// against.
func eventEntry(topic [32]byte, resolved []sigdb.ResolvedSig) abiout.Entry {
	e := abiout.Entry{Kind: abiout.KindEvent, Topic: topic, Name: fmt.Sprintf("event_%x", topic[:4])}
	if len(resolved) > 0 {
		e.Name = resolved[len(resolved)-1].Name
	}
	return e
}

func errorEntry(selector [4]byte, resolved []sigdb.ResolvedSig) abiout.Entry {
	e := abiout.Entry{Kind: abiout.KindError, Selector: selector, Name: fmt.Sprintf("error_%x", selector)}
	if len(resolved) > 0 {
		e.Name = resolved[len(resolved)-1].Name
	}
	return e
}
