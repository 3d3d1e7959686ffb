// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stellis-node/stellis/co"
	"github.com/stellis-node/stellis/genesis"
	"github.com/stellis-node/stellis/metrics"
	"github.com/stellis-node/stellis/muxdb"
)

func fatal(args ...interface{}) {
	fmt.Fprint(os.Stderr, "Fatal: ")
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) {
	logLevel := ctx.Int(verbosityFlag.Name)
	log15.Root().SetHandler(log15.LvlFilterHandler(log15.Lvl(logLevel), log15.StderrHandler))
}

func defaultDataDir() string {
	// try to get HOME env
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.stellis.node")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.stellis.node")
		default:
			return filepath.Join(home, ".org.stellis.node")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	network := ctx.String(networkFlag.Name)
	switch network {
	case "devnet":
		return genesis.NewDevnet()
	default:
		custom, err := genesis.LoadCustomGenesisFile(network)
		if err != nil {
			fatal(err)
		}
		gene, err := genesis.NewCustomNet(custom)
		if err != nil {
			fatal(err)
		}
		return gene
	}
}

// makeInstanceDir keys the instance dir by genesis id, so switching
// networks never mixes databases.
func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal("unable to infer default data dir, use -data-dir")
	}

	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%v", gene.ID().AbbrevString()))
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		fatal(errors.Wrapf(err, "create instance dir [%v]", instanceDir))
	}
	return instanceDir
}

func openMainDB(ctx *cli.Context, dir string) *muxdb.MuxDB {
	cacheMB := ctx.Int(cacheFlag.Name)
	db, err := muxdb.Open(filepath.Join(dir, "main.db"), &muxdb.Options{
		TrieNodeCacheSizeMB:    cacheMB,
		OpenFilesCacheCapacity: 500,
		ReadCacheMB:            64,
		WriteBufferMB:          64,
	})
	if err != nil {
		fatal(errors.Wrapf(err, "open main database [%v]", dir))
	}
	return db
}

func startMetricsServer(addr string) (*http.Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := http.NewServeMux()
	router.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{Handler: router}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return srv, nil
}

func handleExitSignal() <-chan struct{} {
	done := make(chan struct{})
	var goes co.Goes
	goes.Go(func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		close(done)
	})
	return done
}
