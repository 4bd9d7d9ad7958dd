//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides throwaway warehouse databases for integration
// tests.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-bookdw/internal/db"
)

const (
	// DefaultTestConnString is used when PGEDGE_TEST_CONN is unset. It must
	// point at a database the test user may CREATE DATABASE from.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix is the prefix for test databases.
	TestDBPrefix = "bookdw_test_"
)

// BaseConnString returns the server connection used to create test
// databases, or "" when no server answers.
func BaseConnString() string {
	connStr := os.Getenv("PGEDGE_TEST_CONN")
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return ""
	}
	defer pool.Close()

	if pool.Ping(ctx) != nil {
		return ""
	}
	return connStr
}

// Warehouse creates a migrated database named after suffix and returns its
// connection string and pool. The pool is closed and the database dropped
// when the test ends; a failed test keeps the database for inspection.
// The test is skipped when PostgreSQL is unavailable.
func Warehouse(t *testing.T, suffix string) (string, *pgxpool.Pool) {
	t.Helper()

	base := BaseConnString()
	if base == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}

	name := databaseName(t, suffix)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	admin, err := pgxpool.New(ctx, base)
	require.NoError(t, err, "connect to %s", base)
	_, err = admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize())
	admin.Close()
	require.NoError(t, err, "create database %s", name)

	connStr, err := withDatabase(base, name)
	require.NoError(t, err)

	pool, err := db.Connect(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		if t.Failed() {
			t.Logf("Test failed - keeping database %s for diagnostics", name)
			return
		}
		dropDatabase(t, base, name)
	})

	require.NoError(t, db.Migrate(ctx, pool))
	return connStr, pool
}

func databaseName(t *testing.T, suffix string) string {
	b := make([]byte, 6)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return TestDBPrefix + suffix + "_" + hex.EncodeToString(b)
}

// withDatabase rewrites connStr to target another database. pgx's
// ConnString() does not reflect changes to ConnConfig.Database.
func withDatabase(connStr, name string) (string, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return "", err
	}
	cc := config.ConnConfig
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cc.Host, strconv.Itoa(int(cc.Port))),
		Path:   "/" + name,
		User:   url.User(cc.User),
	}
	if cc.Password != "" {
		u.User = url.UserPassword(cc.User, cc.Password)
	}
	return u.String(), nil
}

func dropDatabase(t *testing.T, base, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, base)
	if err != nil {
		t.Logf("Warning: could not connect to drop %s: %v", name, err)
		return
	}
	defer pool.Close()

	_, _ = pool.Exec(ctx, `
        SELECT pg_terminate_backend(pid)
        FROM pg_stat_activity
        WHERE datname = $1 AND pid <> pg_backend_pid()
    `, name)

	if _, err := pool.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()); err != nil {
		t.Logf("Warning: could not drop %s: %v", name, err)
	}
}
