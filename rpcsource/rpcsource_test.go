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

package rpcsource

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

type jsonrpcRequest struct {
	Method string          `json:"method"`
	ID     json.RawMessage `json:"id"`
}

func jsonrpcServer(t *testing.T, code string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonrpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		switch req.Method {
		case "eth_getCode":
			w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":"` + code + `"}`))
		case "eth_getTransactionByHash":
			w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":{"to":"0x00000000000000000000000000000000000000aa","input":"` + code + `"}}`))
		default:
			w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"error":{"code":-32601,"message":"method not found"}}`))
		}
	}))
}

func TestClientGetCode(t *testing.T) {
	srv := jsonrpcServer(t, "0x6001600201")
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	code, err := c.GetCode(context.Background(), common.HexToAddress("0xaa"))
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}
	if !bytes.Equal(code, []byte{0x60, 0x01, 0x60, 0x02, 0x01}) {
		t.Errorf("got %x", code)
	}
}

func TestClientGetTransaction(t *testing.T) {
	srv := jsonrpcServer(t, "0x6001600201")
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	to, input, err := c.GetTransaction(context.Background(), common.HexToHash("0x01"))
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if to != common.HexToAddress("0xaa") {
		t.Errorf("got to=%v", to)
	}
	if !bytes.Equal(input, []byte{0x60, 0x01, 0x60, 0x02, 0x01}) {
		t.Errorf("got input=%x", input)
	}
}
