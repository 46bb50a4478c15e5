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

// Package sigdb resolves 4-byte function selectors and 32-byte event
// topics against an external signature database over HTTPS, memoizing
// results process-wide and coalescing concurrent lookups for the same
// key. Network failures are never fatal: they log a warning and resolve
// to an empty result, matching the degraded-mode contract every other
// component of this project expects from the signature resolver.
package sigdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	gethlog "github.com/ethereum/go-ethereum/log"
	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the signature database this project talks to absent
// explicit configuration. It is a plain HTTPS GET API keyed by selector or
// topic, matching the contract in spec §4.D.
const DefaultBaseURL = "https://api.openchain.xyz/signature-database/v1/lookup"

// cacheSize bounds the in-memory LRU so a long-running batch decompile of
// many contracts can't grow it unboundedly; a few thousand selectors is
// already more than any single audit run resolves.
const cacheSize = 4096

// ResolvedSig is one candidate human-readable signature for a selector or
// topic, per spec's glossary entry.
type ResolvedSig struct {
	// Signature is the full text signature, e.g. "transfer(address,uint256)".
	Signature string
	// Name is the identifier portion of Signature, before the parameter list.
	Name string
}

// kind distinguishes the two lookup namespaces the database exposes.
type kind string

const (
	kindFunction kind = "function"
	kindEvent    kind = "event"
)

// Client resolves selectors and event topics against a signature database.
// The zero value is not usable; construct with New.
type Client struct {
	http    *retryablehttp.Client
	cache   *lru.Cache
	group   singleflight.Group
	baseURL string
	log     gethlog.Logger
}

// New builds a Client against baseURL (pass "" for DefaultBaseURL).
func New(baseURL string) (*Client, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("sigdb: building cache: %w", err)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := retryablehttp.NewClient()
	hc.Logger = nil // the teacher's gethlog.Logger speaks for this client instead
	return &Client{
		http:    hc,
		cache:   cache,
		baseURL: baseURL,
		log:     gethlog.New("component", "sigdb"),
	}, nil
}

// Resolve looks up a 4-byte function selector.
func (c *Client) Resolve(ctx context.Context, selector [4]byte) ([]ResolvedSig, error) {
	return c.lookup(ctx, kindFunction, fmt.Sprintf("0x%x", selector[:]))
}

// ResolveError looks up a 4-byte custom-error selector. Errors share the
// function namespace on-chain (both are keccak-prefix dispatched the same
// way), so this is Resolve under another name kept distinct for callers
// that care about intent.
func (c *Client) ResolveError(ctx context.Context, selector [4]byte) ([]ResolvedSig, error) {
	return c.lookup(ctx, kindFunction, fmt.Sprintf("0x%x", selector[:]))
}

// ResolveEvent looks up a 32-byte event topic.
func (c *Client) ResolveEvent(ctx context.Context, topic [32]byte) ([]ResolvedSig, error) {
	return c.lookup(ctx, kindEvent, fmt.Sprintf("0x%x", topic[:]))
}

func (c *Client) lookup(ctx context.Context, k kind, key string) ([]ResolvedSig, error) {
	cacheKey := string(k) + ":" + key
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]ResolvedSig), nil
	}

	v, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		sigs := c.fetch(ctx, k, key)
		c.cache.Add(cacheKey, sigs)
		return sigs, nil
	})
	if err != nil {
		// fetch itself never returns an error (degraded mode instead); this
		// branch only exists because singleflight.Do's signature requires it.
		return nil, err
	}
	return v.([]ResolvedSig), nil
}

// lookupResponse is the wire shape from spec §4.D: {ok, result: {function |
// event: {selector: [{name}]}}}.
type lookupResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		Function map[string][]struct {
			Name string `json:"name"`
		} `json:"function"`
		Event map[string][]struct {
			Name string `json:"name"`
		} `json:"event"`
	} `json:"result"`
}

// fetch performs the network round trip and never fails outwardly: a 404,
// a non-2xx status, a transport error, or malformed JSON all log a warning
// and resolve to nil, per spec's "transient failures ... never fatal".
func (c *Client) fetch(ctx context.Context, k kind, key string) []ResolvedSig {
	url := fmt.Sprintf("%s?%s=%s&filter=false", c.baseURL, k, key)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Warn("sigdb: building request failed", "err", err)
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("sigdb: request failed", "url", url, "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("sigdb: non-2xx response", "status", resp.StatusCode)
		return nil
	}

	var decoded lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Warn("sigdb: malformed response", "err", err)
		return nil
	}
	if !decoded.OK {
		return nil
	}

	var names []string
	switch k {
	case kindFunction:
		names = namesFor(decoded.Result.Function, key)
	case kindEvent:
		names = namesFor(decoded.Result.Event, key)
	}
	return rank(names)
}

func namesFor(m map[string][]struct {
	Name string `json:"name"`
}, key string) []string {
	entries, ok := m[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

// rank orders candidates by (signature-shortness, lexicographic ascending)
// so that a caller picking "the default" (spec's --default flag) gets a
// deterministic order to choose from; parammatch.Default takes the last
// entry of that order.
func rank(names []string) []ResolvedSig {
	if len(names) == 0 {
		return nil
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})
	out := make([]ResolvedSig, len(names))
	for i, n := range names {
		out[i] = ResolvedSig{Signature: n, Name: functionName(n)}
	}
	return out
}

// functionName strips the parameter list from a text signature.
func functionName(sig string) string {
	if idx := strings.IndexByte(sig, '('); idx >= 0 {
		return sig[:idx]
	}
	return sig
}
