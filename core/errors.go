package core

import "github.com/cockroachdb/errors"

// Sentinel errors for the fatal-invariant class (§7.4): these denote
// programmer bugs, not domain errors. They are panic values, not returned
// errors — a caller that hits one has already violated a precondition the
// rest of the engine assumes holds, so unwinding the stack immediately and
// loudly is more useful than threading an error return through every call
// site on the hot path, matching the teacher's own log.Panic-at-the-fault
// practice rather than inventing an internal error-return convention the
// teacher doesn't use.
var (
	ErrWrongShard       = errors.New("core: transaction submitted to wrong shard")
	ErrAccountNotFound  = errors.New("core: attempt to move a non-existent account")
	ErrAddressUnindexed = errors.New("core: address unknown to the global index")
)
