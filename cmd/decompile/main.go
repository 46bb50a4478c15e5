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

// Command decompile recovers a best-effort ABI (functions, events, custom
// errors) from raw or on-chain EVM bytecode: disassemble, find the
// dispatcher, symbolically execute each entry, and resolve human-readable
// signatures against a signature database.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/trailbytes/evmdecomp/bytecode"
	"github.com/trailbytes/evmdecomp/pipeline"
	"github.com/trailbytes/evmdecomp/rpcsource"
	"github.com/trailbytes/evmdecomp/sigdb"
)

func main() {
	if err := buildApp().Run(os.Args); err != nil {
		// app.Run already invoked os.Exit for any cli.ExitCoder (every
		// error path below returns one); reaching here means flag parsing
		// itself failed, which urfave/cli doesn't tag with an exit code.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildApp() *cli.App {
	verbosity := 0
	return &cli.App{
		Name:      "decompile",
		Usage:     "recover a best-effort ABI from EVM bytecode",
		ArgsUsage: "TARGET",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Usage: "directory to write the decompiled ABI artifact into"},
			&cli.StringFlag{Name: "rpc-url", Usage: "JSON-RPC endpoint used to resolve an address or transaction-hash TARGET"},
			&cli.BoolFlag{Name: "default", Usage: "auto-select the last (highest-specificity) candidate on an ambiguous signature match"},
			&cli.BoolFlag{Name: "skip-resolving", Usage: "never query the signature database"},
			&cli.BoolFlag{Name: "v", Aliases: []string{"verbose"}, Count: &verbosity, Usage: "increase logging verbosity; repeatable up to -vvvvv"},
		},
		Action: func(c *cli.Context) error {
			setupLogging(verbosity)
			return run(c)
		},
	}
}

func run(c *cli.Context) error {
	target := c.Args().First()
	if target == "" {
		return cli.Exit("decompile: TARGET is required", 1)
	}

	var provider bytecode.Provider
	if rpcURL := c.String("rpc-url"); rpcURL != "" {
		client, err := rpcsource.Dial(c.Context, rpcURL)
		if err != nil {
			return cli.Exit(fmt.Sprintf("decompile: %v", err), 2)
		}
		defer client.Close()
		provider = client
	}

	var sig *sigdb.Client
	if !c.Bool("skip-resolving") {
		s, err := sigdb.New("")
		if err != nil {
			return cli.Exit(fmt.Sprintf("decompile: %v", err), 2)
		}
		sig = s
	}

	cfg := pipeline.Config{
		Default:       c.Bool("default"),
		SkipResolving: c.Bool("skip-resolving"),
	}
	p := pipeline.New(cfg, sig, provider)

	res, err := p.Decompile(c.Context, target)
	if code := exitCode(err, res); code != 0 {
		msg := "decompile: analysis budget entirely exhausted, no functions recovered"
		if err != nil && code != 3 {
			msg = fmt.Sprintf("decompile: %v", err)
		}
		if err == nil {
			msg = "decompile: ambiguous signature match left unresolved"
		}
		return cli.Exit(msg, code)
	}

	if out := c.String("output"); out != "" {
		if err := writeArtifact(out, res); err != nil {
			return cli.Exit(fmt.Sprintf("decompile: writing output: %v", err), 1)
		}
	}

	log.Info("decompile: finished", "target", target, "functions", len(res.Functions), "abiEntries", len(res.ABI))
	return nil
}
