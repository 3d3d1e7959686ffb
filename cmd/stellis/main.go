// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stellis-node/stellis/chain"
	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/metrics"
	"github.com/stellis-node/stellis/state"
)

var (
	version   string
	gitCommit string
	log       = log15.New()
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%.8s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Stellis",
		Usage:     "State storage node of the Stellis network",
		Copyright: "2025 The Stellis developers",
		Flags: []cli.Flag{
			networkFlag,
			dataDirFlag,
			cacheFlag,
			verbosityFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "prune",
				Usage: "drop audit state diffs below a height",
				Flags: []cli.Flag{
					networkFlag,
					dataDirFlag,
					cacheFlag,
					verbosityFlag,
					heightFlag,
				},
				Action: pruneAction,
			},
			{
				Name:  "revert",
				Usage: "discard all blocks above a height",
				Flags: []cli.Flag{
					networkFlag,
					dataDirFlag,
					cacheFlag,
					verbosityFlag,
					heightFlag,
				},
				Action: revertAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openRepository(ctx *cli.Context) (*chain.Repository, *state.Stater, func()) {
	initLogger(ctx)
	gene := selectGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gene)

	mainDB := openMainDB(ctx, instanceDir)
	closeDB := func() {
		log.Info("closing main database...")
		mainDB.Close()
	}

	repo, err := chain.NewRepository(mainDB)
	if err != nil {
		closeDB()
		fatal(err)
	}
	stater := state.NewStater(mainDB, crypto.Pedersen)

	if _, err := gene.Bootstrap(repo, stater); err != nil {
		closeDB()
		fatal(err)
	}

	log.Info("chain opened",
		"network", gene.Name(),
		"genesis", gene.ID().AbbrevString(),
		"instance", instanceDir,
	)
	return repo, stater, closeDB
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	repo, _, closeDB := openRepository(ctx)
	defer closeDB()

	if addr := ctx.String(metricsAddrFlag.Name); addr != "" {
		metrics.InitializePrometheusMetrics()
		srv, err := startMetricsServer(addr)
		if err != nil {
			fatal(err)
		}
		log.Info("metrics service started", "addr", addr)
		defer func() {
			log.Info("stopping metrics service...")
			srv.Shutdown(context.Background())
		}()
	}

	best := repo.BestSummary()
	log.Info("serving state",
		"best", best.Header.Number,
		"root", best.Commitment.StateRoot.AbbrevString(),
	)

	exit := handleExitSignal()
	ticker := repo.NewTicker()
	for {
		select {
		case <-exit:
			return nil
		case <-ticker.C():
			best := repo.BestSummary()
			log.Info("best block updated",
				"height", best.Header.Number,
				"root", best.Commitment.StateRoot.AbbrevString(),
			)
		}
	}
}

func pruneAction(ctx *cli.Context) error {
	repo, _, closeDB := openRepository(ctx)
	defer closeDB()

	below := ctx.Uint64(heightFlag.Name)
	if err := repo.PruneDiffs(context.Background(), below); err != nil {
		return err
	}
	log.Info("diffs pruned", "below", below)
	return nil
}

func revertAction(ctx *cli.Context) error {
	repo, _, closeDB := openRepository(ctx)
	defer closeDB()

	if !ctx.IsSet(heightFlag.Name) {
		fatal("-height required")
	}
	return repo.Revert(ctx.Uint64(heightFlag.Name))
}
