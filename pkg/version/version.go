//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package version provides build and version information for pgedge-bookdw.
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name reported to users and to PostgreSQL.
const Name = "pgedge-bookdw"

// Build information set at compile time via ldflags.
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns formatted version information.
func Info() string {
	return fmt.Sprintf(
		"%s %s (commit: %s, built: %s, go: %s)",
		Name, Version, Commit, BuildDate, runtime.Version(),
	)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// ApplicationName returns the application_name used for warehouse
// sessions, so pipeline connections are identifiable in pg_stat_activity.
func ApplicationName() string {
	return Name + "/" + Version
}
