// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	// Registers the pgx stdlib driver for integration tests.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// GetTestRedisAddr returns the Redis address for integration tests.
// TEST_REDIS_ADDR overrides the default localhost address.
func GetTestRedisAddr() string {
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// SetupTestRedis creates a Redis client for integration tests, skipping the
// test when no server is reachable. The client is closed automatically.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: GetTestRedisAddr(),
		DB:   9, // keep test data away from any local default DB
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("close redis client after ping failure: %v", cerr)
		}
		t.Skipf("Redis not available for testing at %s: %v", GetTestRedisAddr(), err)
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("close redis client: %v", err)
		}
	})
	return client
}

// SetupTestDB opens the Postgres database named by TEST_DATABASE_URL, skipping
// the test when the variable is unset or the server is unreachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("open test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			t.Logf("close db after ping failure: %v", cerr)
		}
		t.Skipf("Postgres not available for testing: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close test database: %v", err)
		}
	})
	return db
}
