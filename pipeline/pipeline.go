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
	"sync"

	gethlog "github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/trailbytes/evmdecomp/abiout"
	"github.com/trailbytes/evmdecomp/analyzer"
	"github.com/trailbytes/evmdecomp/bytecode"
	"github.com/trailbytes/evmdecomp/disasm"
	"github.com/trailbytes/evmdecomp/fingerprint"
	"github.com/trailbytes/evmdecomp/parammatch"
	"github.com/trailbytes/evmdecomp/selector"
	"github.com/trailbytes/evmdecomp/sigdb"
	"github.com/trailbytes/evmdecomp/symexec"
)

// Pipeline wires bytecode resolution, disassembly, dispatcher scanning,
// symbolic execution, function analysis, signature resolution, and
// parameter matching into the single Decompile operation spec.md §2
// describes end to end.
type Pipeline struct {
	cfg      Config
	sig      *sigdb.Client
	provider bytecode.Provider
	log      gethlog.Logger
}

// New builds a Pipeline. sig may be nil, in which case every resolution
// step behaves as if cfg.SkipResolving were set. provider may be nil if
// every target Decompile is called with is raw hex or a file path.
func New(cfg Config, sig *sigdb.Client, provider bytecode.Provider) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		sig:      sig,
		provider: provider,
		log:      gethlog.New("component", "pipeline"),
	}
}

// Decompile resolves target, disassembles it, recovers its dispatcher's
// functions, and resolves and matches their human-readable signatures,
// returning the deterministically ordered ABI artifact alongside the raw
// per-function analysis. The only error it can return beyond what
// bytecode.Resolve surfaces is ErrNoFunctionsRecovered.
func (p *Pipeline) Decompile(ctx context.Context, target string) (Result, error) {
	t, err := bytecode.Resolve(ctx, target, p.provider)
	if err != nil {
		return Result{}, err
	}

	fp := fingerprint.Scan(t.Bytes)

	// spec.md §8 boundary scenario 1: literal empty bytecode succeeds with
	// an empty function list, no further stages run.
	if len(t.Bytes) == 0 {
		return Result{Target: t, Fingerprint: fp, ABI: []abiout.Entry{}}, nil
	}

	d := disasm.Disassemble(t.Bytes)
	jumpdests := d.JumpdestSet()

	entries := p.liveSelectorEntries(d, jumpdests)

	var results []FunctionResult
	if len(entries) == 0 {
		// spec.md §8 boundary scenario 3: no live dispatcher entries at
		// all (a fallback-only contract, or every discovered entry was a
		// false positive) still yields one fallback function analyzed
		// from PC 0.
		results = []FunctionResult{p.analyzeFallback(d)}
	} else {
		resolved := p.resolveSelectors(ctx, entries)
		results = make([]FunctionResult, 0, len(entries))
		for _, e := range entries {
			results = append(results, p.analyzeSelector(d, e, resolved[e.Selector]))
		}
	}

	abiEntries := p.assembleABI(ctx, results)

	res := Result{Target: t, Fingerprint: fp, Functions: results, ABI: abiEntries}

	if !anyRecovered(results) {
		return res, ErrNoFunctionsRecovered
	}
	return res, nil
}

// liveSelectorEntries scans for dispatcher entries and drops any whose
// jump destination isn't actually a registered JUMPDEST: a PUSH4/EQ/JUMPI
// shape that coincidentally occurs inside function-body bytecode (rather
// than the real dispatcher prologue) can never be reached via JUMPI, so
// treating it as a selector would analyze garbage. This is the false-
// positive filter spec.md's selector data model calls for, applied here
// rather than inside the analyzer so analyzer.Function's EntryPC keeps its
// plain, literal meaning.
func (p *Pipeline) liveSelectorEntries(d disasm.Disassembly, jumpdests map[uint64]bool) []selector.Entry {
	all := selector.Find(d)
	live := make([]selector.Entry, 0, len(all))
	for _, e := range all {
		if !jumpdests[e.Destination] {
			p.log.Warn("pipeline: dropping false-positive dispatcher entry", "selector", e.Selector, "destination", e.Destination)
			continue
		}
		live = append(live, e)
	}
	return live
}

// resolveSelectors pre-resolves every live selector's candidate signatures
// concurrently, joined with an errgroup.Group before the per-selector
// analysis loop begins (spec.md §5). A resolution failure never aborts the
// batch: sigdb.Client.Resolve itself never returns an error for network
// failures (it degrades to an empty result), so the errgroup is here only
// to bound and join the fan-out, not to propagate failure.
func (p *Pipeline) resolveSelectors(ctx context.Context, entries []selector.Entry) map[[4]byte][]sigdb.ResolvedSig {
	out := make(map[[4]byte][]sigdb.ResolvedSig, len(entries))
	if p.sig == nil || p.cfg.SkipResolving {
		return out
	}

	var mu concurrentMap
	mu.m = out

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			sigs, err := p.sig.Resolve(gctx, e.Selector)
			if err != nil {
				return nil
			}
			mu.set(e.Selector, sigs)
			return nil
		})
	}
	_ = g.Wait() // errors are never returned by Resolve; nothing to surface

	return mu.m
}

// analyzeSelector symbolically executes and analyzes one live dispatcher
// entry, then narrows preResolved against the recovered argument evidence.
func (p *Pipeline) analyzeSelector(d disasm.Disassembly, e selector.Entry, preResolved []sigdb.ResolvedSig) FunctionResult {
	bm := symexec.Run(d, e.Destination, p.cfg.Symexec)
	if budgetExhausted(bm) {
		return FunctionResult{Selector: e.Selector, HasSelector: true, BudgetExhausted: true}
	}

	fn := analyzer.Analyze(bm)
	fr := FunctionResult{Selector: e.Selector, HasSelector: true, Function: fn}
	p.matchParameters(&fr, preResolved)
	return fr
}

// analyzeFallback analyzes the contract's implicit fallback entry at PC 0,
// spec.md §8 boundary scenario 3. Fallback functions have no selector to
// resolve a signature against.
func (p *Pipeline) analyzeFallback(d disasm.Disassembly) FunctionResult {
	bm := symexec.Run(d, 0, p.cfg.Symexec)
	if budgetExhausted(bm) {
		return FunctionResult{BudgetExhausted: true}
	}
	fn := analyzer.Analyze(bm)
	return FunctionResult{Function: fn}
}

// matchParameters applies spec.md §4.G's candidate filtering and the
// --default auto-selection rule to fr in place.
func (p *Pipeline) matchParameters(fr *FunctionResult, resolved []sigdb.ResolvedSig) {
	if len(resolved) == 0 {
		return
	}
	var candidates []parammatch.Candidate
	for _, r := range resolved {
		candidates = append(candidates, parammatch.ParseCandidate(r.Signature))
	}
	matched := parammatch.Match(fr.Function, candidates)
	fr.Candidates = matched

	switch {
	case len(matched) == 0:
		fr.Unresolved = true
	case len(matched) == 1:
		fr.Chosen = &matched[0]
	default:
		fr.Ambiguous = true
		if p.cfg.Default {
			chosen, _ := parammatch.Default(matched)
			fr.Chosen = &chosen
			fr.Ambiguous = false
		}
	}
}

// budgetExhausted reports whether bm's walk hit the hard wall-time/PC-count/
// fork-depth guardrail (spec.md §5's "timeouts in E are hard" rule) and so
// must be discarded entirely. An ordinary bounded-loop cut (TerminalLoop) is
// not a reason to throw away an otherwise fully analyzed function: a loop
// over a dynamic array or a compiler-emitted copy loop hits the loop bound
// on every call, and every other branch in the same function still analyzed
// fine.
func budgetExhausted(bm symexec.BranchMap) bool {
	for _, n := range bm.Nodes {
		if n.Terminal == symexec.TerminalBudgetExceeded {
			return true
		}
	}
	return false
}

func anyRecovered(results []FunctionResult) bool {
	for _, r := range results {
		if !r.BudgetExhausted {
			return true
		}
	}
	return false
}

// concurrentMap is a minimal mutex-guarded map used only to collect
// resolveSelectors' errgroup fan-out results; the map is never read until
// after g.Wait() returns, but each goroutine's write still needs the lock
// since map writes themselves aren't safe for concurrent use.
type concurrentMap struct {
	mu sync.Mutex
	m  map[[4]byte][]sigdb.ResolvedSig
}

func (c *concurrentMap) set(k [4]byte, v []sigdb.ResolvedSig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[k] = v
}
