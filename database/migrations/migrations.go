// Package migrations holds the storefront schema. Each migration registers
// itself from init(); import the package for its side effect before running
// a migration.Runner.
package migrations
