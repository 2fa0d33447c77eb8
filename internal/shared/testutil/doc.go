// Package testutil provides a capturing slog handler and assertions for
// tests that check what a component logged.
package testutil
