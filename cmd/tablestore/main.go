// Command tablestore runs the read-only admin HTTP surface over one table:
// snapshot inspection, the scan planner, and the merge reader, drivable
// without a compute-engine connector. It exposes no commit endpoint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tablestore/internal/config"
	"tablestore/internal/logging"
	"tablestore/pkg/adminapi"
	"tablestore/pkg/blockcodec"
	"tablestore/pkg/commit"
	"tablestore/pkg/scan"
	"tablestore/pkg/snapshot"
	"tablestore/pkg/tablepath"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := "./tablestore.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tablestore: load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Init(cfg.Logging)

	paths := tablepath.New(cfg.Table.RootPath, cfg.Table.PartitionFields)
	store := snapshot.NewStore(paths.SnapshotPath)

	coordinator, closeCoordinator, err := buildCoordinator(cfg.Commit)
	if err != nil {
		log.Error("tablestore: build commit coordinator", "error", err)
		os.Exit(1)
	}
	if closeCoordinator != nil {
		defer closeCoordinator()
	}

	latestID, hasSnapshot, err := snapshot.FindLatestID(paths.SnapshotDir())
	if err != nil {
		log.Error("tablestore: find latest snapshot", "error", err)
		os.Exit(1)
	}
	ids := commit.NewSnapshotIDAllocator(latestID)
	log.Info("tablestore: table opened", "root", cfg.Table.RootPath, "latestSnapshot", latestID, "hasSnapshot", hasSnapshot)

	algo := blockcodec.None
	if cfg.Table.BlockCompression == "zstd" {
		algo = blockcodec.Zstd
	}
	// The committer is this process's half of the write path's contract: an
	// external writer process embeds the same commit.Committer type against
	// this table root and this coordinator. NewCommitter performs no I/O, so
	// constructing it here checks neither the coordinator nor the table
	// root; this binary's HTTP surface never calls Commit itself.
	commit.NewCommitter(paths, store, coordinator, ids, algo,
		commit.WithLogger(log),
		commit.WithLookback(cfg.Commit.IdempotencyLookback),
	)
	log.Info("tablestore: commit layer ready", "coordinator", cfg.Commit.Coordinator, "lookback", cfg.Commit.IdempotencyLookback)

	planner := scan.NewPlanner(store, cfg.Scan.ManifestReadConcurrency, log)
	cache := scan.NewPlanCache()

	admin := adminapi.NewServer(planner, store, cache, cfg.Table.PartitionFields, cfg.Admin.HTTPPort,
		func() (uint64, bool) { return ids.Peek(), ids.Peek() > 0 },
		log,
	)
	if err := admin.Start(); err != nil {
		log.Error("tablestore: start admin server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("tablestore: shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := admin.Shutdown(shutdownCtx); err != nil {
		log.Error("tablestore: admin server shutdown", "error", err)
	}
}

func buildCoordinator(cfg config.CommitConfig) (commit.Coordinator, func(), error) {
	switch cfg.Coordinator {
	case "", "local":
		return commit.NewLocalCoordinator(), nil, nil
	case "zookeeper":
		zk, err := commit.NewZKCoordinator(cfg.ZooKeeperServers, time.Duration(cfg.ZooKeeperSessionSec)*time.Second, cfg.LockPath)
		if err != nil {
			return nil, nil, fmt.Errorf("tablestore: %w", err)
		}
		return zk, zk.Close, nil
	default:
		return nil, nil, fmt.Errorf("tablestore: unknown commit coordinator %q", cfg.Coordinator)
	}
}
