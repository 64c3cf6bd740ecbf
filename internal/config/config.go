// Package config provides configuration parsing and validation for the broker.
package config

import (
	"fmt"
	"os"
)

// Strictness selects the replication consistency/availability tradeoff.
type Strictness string

const (
	// Strict fails a produce when the follower does not ack replication.
	Strict Strictness = "strict"
	// BestEffort commits a produce even when replication fails or times out.
	BestEffort Strictness = "best-effort"
)

// Config holds all configuration parameters for the broker.
type Config struct {
	BrokerID              string
	ListenPort            string
	PeerURL               string
	RedisAddr             string
	DataDir               string
	LeaseTimeSeconds      int
	RenewIntervalSeconds  int
	DefaultPartitions     int
	IdempotenceTTLSeconds int
	ReplicationStrictness string
	ReplicationTimeoutMs  int
	ActivityRingSize      int
}

// GetEnvOrDefault returns the environment variable value or a default if not set.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks that all required configuration fields are set and have valid values.
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.BrokerID == "" {
		return fmt.Errorf("broker-id cannot be empty")
	}
	if c.ListenPort == "" {
		return fmt.Errorf("listen-port cannot be empty")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("redis-addr cannot be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data-dir cannot be empty")
	}
	if c.LeaseTimeSeconds <= 0 {
		return fmt.Errorf("lease-time-s must be positive")
	}
	if c.RenewIntervalSeconds <= 0 {
		return fmt.Errorf("renew-interval-s must be positive")
	}
	if c.RenewIntervalSeconds*2 > c.LeaseTimeSeconds {
		return fmt.Errorf("renew-interval-s must not exceed half of lease-time-s")
	}
	if c.DefaultPartitions <= 0 {
		return fmt.Errorf("default-partitions must be positive")
	}
	if c.IdempotenceTTLSeconds <= 0 {
		return fmt.Errorf("idempotence-ttl-s must be positive")
	}
	switch Strictness(c.ReplicationStrictness) {
	case Strict, BestEffort:
	default:
		return fmt.Errorf("replication-strictness must be one of: strict, best-effort")
	}
	if c.ReplicationTimeoutMs <= 0 {
		return fmt.Errorf("replication-timeout-ms must be positive")
	}
	if c.ActivityRingSize <= 0 {
		return fmt.Errorf("activity-ring-size must be positive")
	}
	return nil
}
