// Package util provides small helpers shared across the authcore packages.
//
// This package contains string manipulation and normalization functions
// that don't fit into domain-specific packages. These utilities are used
// internally by multiple packages to keep behavior consistent across the
// codebase.
//
// Key utilities:
//   - SafeTruncate: safely truncates strings for logging sensitive data
//   - NormalizePath: normalizes request paths for comparison
package util
