package library

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryInterval = 100 * time.Millisecond

// acquireImportLock takes an exclusive file lock guarding writes to the
// library. Concurrent importers block until the holder releases or the
// context expires. The caller must call the returned release func.
func acquireImportLock(ctx context.Context, path string) (release func(), err error) {
	lock := flock.New(path)

	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquire import lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("import lock %s held by another process", path)
	}

	return func() { _ = lock.Unlock() }, nil
}
