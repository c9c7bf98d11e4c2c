// Package utils provides common utility functions for the equipment-inventory application.
// It includes helpers to normalize raw column values (flags, strings, timestamps) read
// from either SQLite or PostgreSQL into Go types.
package utils
