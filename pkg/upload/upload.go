// Package upload publishes generated dataset directories to remote storage.
package upload

import "context"

// Publisher uploads a local dataset directory to remote storage.
type Publisher interface {
	// Preflight verifies that the remote storage is reachable and writable.
	// Writes a small test object to the bucket to fail fast on
	// misconfiguration.
	Preflight(ctx context.Context) error

	// Publish uploads all files in localDir. The directory basename becomes
	// a sub-prefix under the configured remote prefix.
	Publish(ctx context.Context, localDir string) error
}
