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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/trailbytes/evmdecomp/abiout"
	"github.com/trailbytes/evmdecomp/pipeline"
)

func TestWriteArtifactCreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	res := pipeline.Result{ABI: []abiout.Entry{{Kind: abiout.KindFunction, Name: "fallback"}}}

	if err := writeArtifact(dir, res); err != nil {
		t.Fatalf("writeArtifact: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "decompiled.json"))
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty artifact contents")
	}
}

func TestWriteArtifactEmptyABIStillWritesValidJSON(t *testing.T) {
	dir := t.TempDir()
	res := pipeline.Result{ABI: []abiout.Entry{}}
	if err := writeArtifact(dir, res); err != nil {
		t.Fatalf("writeArtifact: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "decompiled.json"))
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected an empty JSON array, got %q", data)
	}
}
