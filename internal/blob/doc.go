// Package blob stores uploaded document bytes, either in a local directory
// or in an S3 compatible bucket. Keys are flat names produced by NewKey.
package blob
