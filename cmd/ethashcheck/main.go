// Copyright 2024 The ethashengine Authors
// This file is part of the ethashengine library.
//
// The ethashengine library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// The ethashengine library is distributed in the hope that it will be
// useful, but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU Lesser
// General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ethashengine library. If not, see
// <http://www.gnu.org/licenses/>.

// Command ethashcheck is a small inspection tool around the ethash engine:
// it derives epoch parameters and evaluates hashimoto light verification
// against hex-encoded header material, without touching a real chain.
package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ethashcore/ethashengine/consensus/ethash"
	"github.com/ethashcore/ethashengine/internal/log"
)

func main() {
	app := &cli.App{
		Name:  "ethashcheck",
		Usage: "inspect and verify Ethash proof-of-work parameters",
		Commands: []*cli.Command{
			epochCommand,
			seedCommand,
			cacheSizeCommand,
			datasetSizeCommand,
			cacheHashCommand,
			verifyCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Root().Error("ethashcheck failed", "err", err)
		os.Exit(1)
	}
}

var blockFlag = &cli.Uint64Flag{
	Name:     "block",
	Usage:    "block number whose epoch parameters to derive",
	Required: true,
}

var epochCommand = &cli.Command{
	Name:  "epoch",
	Usage: "print the epoch a block number falls in",
	Flags: []cli.Flag{blockFlag},
	Action: func(ctx *cli.Context) error {
		fmt.Println(ethash.Epoch(ctx.Uint64("block")))
		return nil
	},
}

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "print the epoch seed hash for a block number, hex-encoded",
	Flags: []cli.Flag{blockFlag},
	Action: func(ctx *cli.Context) error {
		fmt.Println(hex.EncodeToString(ethash.Seed(ctx.Uint64("block"))))
		return nil
	},
}

var cacheSizeCommand = &cli.Command{
	Name:  "cache-size",
	Usage: "print the verification cache size, in bytes, for a block number",
	Flags: []cli.Flag{blockFlag},
	Action: func(ctx *cli.Context) error {
		fmt.Println(ethash.CacheSize(ctx.Uint64("block")))
		return nil
	},
}

var datasetSizeCommand = &cli.Command{
	Name:  "dataset-size",
	Usage: "print the full dataset size, in bytes, for a block number",
	Flags: []cli.Flag{blockFlag},
	Action: func(ctx *cli.Context) error {
		fmt.Println(ethash.DatasetSize(ctx.Uint64("block")))
		return nil
	},
}

var cacheHashCommand = &cli.Command{
	Name:  "cache-hash",
	Usage: "print the Keccak-512 hash of the first 64 bytes of a block's verification cache",
	Flags: []cli.Flag{blockFlag},
	Action: func(ctx *cli.Context) error {
		block := ctx.Uint64("block")
		head, err := ethash.CacheHead(block)
		if err != nil {
			return err
		}
		fmt.Println(hex.EncodeToString(head))
		return nil
	},
}

var verifyCommand = &cli.Command{
	Name:  "verify",
	Usage: "evaluate hashimoto-light and check the result against a claimed difficulty",
	Flags: []cli.Flag{
		blockFlag,
		&cli.StringFlag{Name: "prehash", Usage: "32-byte header prehash, hex-encoded", Required: true},
		&cli.Uint64Flag{Name: "nonce", Usage: "64-bit nonce to evaluate"},
		&cli.StringFlag{Name: "difficulty", Usage: "decimal difficulty to check the proof against", Required: true},
		&cli.StringFlag{Name: "mix-digest", Usage: "expected mix digest, hex-encoded, to compare against the computed one"},
	},
	Action: func(ctx *cli.Context) error {
		prehash, err := hex.DecodeString(ctx.String("prehash"))
		if err != nil {
			return fmt.Errorf("decoding prehash: %w", err)
		}
		difficulty, ok := new(big.Int).SetString(ctx.String("difficulty"), 10)
		if !ok {
			return fmt.Errorf("invalid difficulty %q", ctx.String("difficulty"))
		}

		e := ethash.New(ethash.Config{PowMode: ethash.ModeNormal})
		proof, err := e.HashimotoLight(ctx.Uint64("block"), prehash, ctx.Uint64("nonce"))
		if err != nil {
			return err
		}
		fmt.Printf("mix-digest: %s\n", hex.EncodeToString(proof.MixDigest[:]))
		fmt.Printf("boundary:   %s\n", hex.EncodeToString(proof.Boundary[:]))

		mixDigest := proof.MixDigest
		if want := ctx.String("mix-digest"); want != "" {
			decoded, err := hex.DecodeString(want)
			if err != nil {
				return fmt.Errorf("decoding mix-digest: %w", err)
			}
			copy(mixDigest[:], decoded)
		}

		ok = ethash.CheckDifficulty(difficulty, mixDigest, proof)
		fmt.Printf("difficulty check: %v\n", ok)
		if !ok {
			return cli.Exit("proof does not satisfy the claimed difficulty", 1)
		}
		return nil
	},
}
