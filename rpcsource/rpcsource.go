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

// Package rpcsource implements bytecode.Provider against a real JSON-RPC 2.0
// endpoint, using the go-ethereum rpc client the same way cmd/evm and
// ethclient do: eth_getCode and eth_getTransactionByHash.
package rpcsource

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client resolves addresses and transaction hashes against a go-ethereum
// compatible JSON-RPC endpoint.
type Client struct {
	rpc *rpc.Client
	log log.Logger
}

// Dial connects to the given RPC URL (http(s):// or ws(s)://).
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("rpcsource: dial %q: %w", url, err)
	}
	return &Client{rpc: c, log: log.New("component", "rpcsource")}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// GetCode implements bytecode.Provider.
func (c *Client) GetCode(ctx context.Context, address common.Address) ([]byte, error) {
	var result hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &result, "eth_getCode", address, "latest"); err != nil {
		c.log.Warn("eth_getCode failed", "address", address, "err", err)
		return nil, err
	}
	return []byte(result), nil
}

// rpcTransaction mirrors the subset of fields returned by
// eth_getTransactionByHash that we need: destination and calldata.
type rpcTransaction struct {
	To    *common.Address `json:"to"`
	Input hexutil.Bytes    `json:"input"`
}

// GetTransaction implements bytecode.Provider.
func (c *Client) GetTransaction(ctx context.Context, hash common.Hash) (common.Address, []byte, error) {
	var tx rpcTransaction
	if err := c.rpc.CallContext(ctx, &tx, "eth_getTransactionByHash", hash); err != nil {
		c.log.Warn("eth_getTransactionByHash failed", "hash", hash, "err", err)
		return common.Address{}, nil, err
	}
	var to common.Address
	if tx.To != nil {
		to = *tx.To
	}
	return to, []byte(tx.Input), nil
}
