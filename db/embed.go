// Package db provides the embedded database schema for the settings store.
package db

import _ "embed"

// Schema contains the DDL statements for all settings tables.
//
//go:embed migrations/001_schema.sql
var Schema string
