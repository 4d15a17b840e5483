package bridge

import (
	"strconv"
	"sync/atomic"
)

// Identifiers are opaque to the host and to callers; the counter only
// guarantees that no two calls in one process return the same string.
var lastID uint64

func nextID() string {
	return "tmb-" + strconv.FormatUint(atomic.AddUint64(&lastID, 1), 10)
}
