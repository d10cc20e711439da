// Package repository provides the source-tree side of the pipeline:
// cloning or updating the content repository and rendering depth-limited
// structure snapshots for the oracle.
package repository
