// Package lock serializes balance movements per wallet. Both lockers hand out
// a release func that is safe to call once and never blocks on the caller's
// context.
package lock

import "errors"

var ErrNotAcquired = errors.New("lock: not acquired before deadline")
