// Package workspace owns the on-disk layout of a trackalign run: where
// segment caches, adjusted tracks and the results ledger live, the lock that
// keeps two runs from sharing one work directory, and the preflight checks
// run before any media is touched.
package workspace
