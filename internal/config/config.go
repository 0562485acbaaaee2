package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // ATLAS_DATABASE_URL (required)
	HTTPAddr    string // ATLAS_HTTP_ADDR (default ":8080")
	NATSURL     string // ATLAS_NATS_URL (optional, empty = no events)
	AuthToken   string // ATLAS_AUTH_TOKEN (optional, empty = auth disabled)

	// Graph endpoint bounds
	GraphMaxNodes int // ATLAS_GRAPH_MAX_NODES (default 250; ceiling for per-request budgets)

	// Snapshot settings
	SnapshotInterval   time.Duration // ATLAS_SNAPSHOT_INTERVAL (default 5m; 0 = disabled)
	SnapshotS3Bucket   string        // ATLAS_SNAPSHOT_S3_BUCKET (enables S3 when set)
	SnapshotS3Endpoint string        // ATLAS_SNAPSHOT_S3_ENDPOINT (custom endpoint for MinIO)
	SnapshotS3Region   string        // ATLAS_SNAPSHOT_S3_REGION (default "us-east-1")
	SnapshotS3Key      string        // ATLAS_SNAPSHOT_S3_KEY (default "atlas/inventory.jsonl")
	SnapshotGitRepo    string        // ATLAS_SNAPSHOT_GIT_REPO (enables git when set; path to clone)
	SnapshotGitFile    string        // ATLAS_SNAPSHOT_GIT_FILE (default "inventory.jsonl")
	SnapshotGitBranch  string        // ATLAS_SNAPSHOT_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:        os.Getenv("ATLAS_DATABASE_URL"),
		HTTPAddr:           envOrDefault("ATLAS_HTTP_ADDR", ":8080"),
		NATSURL:            os.Getenv("ATLAS_NATS_URL"),
		AuthToken:          os.Getenv("ATLAS_AUTH_TOKEN"),
		SnapshotS3Bucket:   os.Getenv("ATLAS_SNAPSHOT_S3_BUCKET"),
		SnapshotS3Endpoint: os.Getenv("ATLAS_SNAPSHOT_S3_ENDPOINT"),
		SnapshotS3Region:   envOrDefault("ATLAS_SNAPSHOT_S3_REGION", "us-east-1"),
		SnapshotS3Key:      envOrDefault("ATLAS_SNAPSHOT_S3_KEY", "atlas/inventory.jsonl"),
		SnapshotGitRepo:    os.Getenv("ATLAS_SNAPSHOT_GIT_REPO"),
		SnapshotGitFile:    envOrDefault("ATLAS_SNAPSHOT_GIT_FILE", "inventory.jsonl"),
		SnapshotGitBranch:  envOrDefault("ATLAS_SNAPSHOT_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("ATLAS_DATABASE_URL is required")
	}

	c.GraphMaxNodes = 250
	if v := os.Getenv("ATLAS_GRAPH_MAX_NODES"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n < 1 {
			return nil, fmt.Errorf("ATLAS_GRAPH_MAX_NODES: invalid value %q", v)
		}
		c.GraphMaxNodes = n
	}

	intervalStr := envOrDefault("ATLAS_SNAPSHOT_INTERVAL", "5m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("ATLAS_SNAPSHOT_INTERVAL: %w", err)
		}
		c.SnapshotInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
