// Package migrations holds the versioned schema files for each SQL dialect.
package migrations

import "embed"

// FS contains sqlite/, postgres/ and mysql/ migration directories.
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
