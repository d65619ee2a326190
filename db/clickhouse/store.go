// Package clickhouse provides the ClickHouse-backed cache of resolved
// complexity results, keyed by a content hash of the normalized
// algorithm description. The engine itself never touches the cache;
// the API layer reads through it and stores new results best-effort.
package clickhouse

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"complexity-engine/pkg/complexity"
)

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "complexity",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Store is the result cache.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewStore connects to ClickHouse.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the cache table if it does not exist. The
// ReplacingMergeTree keeps only the freshest row per description hash.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS complexity_results (
			description_hash FixedString(64),
			algorithm_name String,
			algorithm_type String,
			has_different_cases UInt8,
			request_id UUID,
			payload String,
			resolved_at DateTime
		) ENGINE = ReplacingMergeTree(resolved_at)
		ORDER BY description_hash
	`
	return s.conn.Exec(ctx, query)
}

// Save stores a resolved result under its description hash.
func (s *Store) Save(ctx context.Context, hash string, result *complexity.ComplexityResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	query := `
		INSERT INTO complexity_results (
			description_hash, algorithm_name, algorithm_type,
			has_different_cases, request_id, payload, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		hash,
		result.AlgorithmName,
		string(result.AlgorithmType),
		boolToUInt8(result.HasDifferentCases),
		result.Audit.RequestID,
		string(payload),
		time.Now(),
	)
}

// Lookup retrieves the freshest cached result for a description hash.
// A cache miss returns (nil, nil).
func (s *Store) Lookup(ctx context.Context, hash string) (*complexity.ComplexityResult, error) {
	query := `
		SELECT payload
		FROM complexity_results FINAL
		WHERE description_hash = ?
		ORDER BY resolved_at DESC
		LIMIT 1
	`
	row := s.conn.QueryRow(ctx, query, hash)

	var payload string
	err := row.Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up cached result: %w", err)
	}

	var result complexity.ComplexityResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}

// HashDescription produces the cache key: SHA-256 over the description
// lower-cased with whitespace collapsed, so formatting differences in
// the upstream description never split the cache.
func HashDescription(description string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(description), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
