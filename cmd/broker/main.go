// Package main provides the CLI entry point for the broker.
// It handles command-line flag parsing, component initialization, and HTTP
// server setup.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Rakss1104/yak/internal/broker"
	"github.com/Rakss1104/yak/internal/config"
	"github.com/Rakss1104/yak/internal/coordination"
)

func main() {
	cfg := &config.Config{}
	flag.StringVar(&cfg.BrokerID, "broker-id", config.GetEnvOrDefault("BROKER_ID", defaultBrokerID()), "Unique identifier for this broker node")
	flag.StringVar(&cfg.ListenPort, "listen-port", config.GetEnvOrDefault("LISTEN_PORT", "5001"), "HTTP server port")
	flag.StringVar(&cfg.PeerURL, "peer-url", config.GetEnvOrDefault("PEER_URL", ""), "Base URL of the peer broker for replication (empty disables replication)")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"), "Coordination store (Redis) address")
	flag.StringVar(&cfg.DataDir, "data-dir", config.GetEnvOrDefault("DATA_DIR", "./data"), "Root directory for partition log files")
	flag.IntVar(&cfg.LeaseTimeSeconds, "lease-time-s", atoiOrDefault(config.GetEnvOrDefault("LEASE_TIME_S", "10")), "Leader lease TTL in seconds")
	flag.IntVar(&cfg.RenewIntervalSeconds, "renew-interval-s", atoiOrDefault(config.GetEnvOrDefault("RENEW_INTERVAL_S", "5")), "Leader lease renewal interval in seconds")
	flag.IntVar(&cfg.DefaultPartitions, "default-partitions", atoiOrDefault(config.GetEnvOrDefault("DEFAULT_PARTITIONS", "3")), "Partition count assigned to topics on first reference")
	flag.IntVar(&cfg.IdempotenceTTLSeconds, "idempotence-ttl-s", atoiOrDefault(config.GetEnvOrDefault("IDEMPOTENCE_TTL_S", "3600")), "msg_id dedup window in seconds")
	flag.StringVar(&cfg.ReplicationStrictness, "replication-strictness", config.GetEnvOrDefault("REPLICATION_STRICTNESS", "best-effort"), "Replication consistency mode: strict or best-effort")
	flag.IntVar(&cfg.ReplicationTimeoutMs, "replication-timeout-ms", atoiOrDefault(config.GetEnvOrDefault("REPLICATION_TIMEOUT_MS", "3000")), "Per-record replication RPC timeout in milliseconds")
	flag.IntVar(&cfg.ActivityRingSize, "activity-ring-size", atoiOrDefault(config.GetEnvOrDefault("ACTIVITY_RING_SIZE", "50")), "Number of recent activity events retained for /metrics")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	slog.Info("Starting broker",
		"broker_id", cfg.BrokerID,
		"listen_port", cfg.ListenPort,
		"peer_url", cfg.PeerURL,
		"redis_addr", cfg.RedisAddr,
		"data_dir", cfg.DataDir,
		"replication_strictness", cfg.ReplicationStrictness,
	)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	slog.Info("Connecting to coordination store", "addr", cfg.RedisAddr)
	store, err := coordination.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		slog.Error("Failed to connect to coordination store", "error", err)
		slog.Info("Tip: Start Redis with 'docker compose up -d redis'")
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Successfully connected to coordination store")

	b := broker.New(cfg, store)
	b.Start(ctx)
	defer b.Stop()

	server := broker.NewServer(cfg.ListenPort, b)

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.ListenPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down HTTP server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error shutting down server", "error", err)
		}
		slog.Info("HTTP server stopped")
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}

	slog.Info("Broker stopped")
}

func defaultBrokerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "broker-unknown"
	}
	return "broker-" + host
}

func atoiOrDefault(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
