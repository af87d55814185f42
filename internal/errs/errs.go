// Package errs defines the pipeline error taxonomy. Every failure surfaced
// by the core packages wraps one of these sentinels so the CLI boundary can
// report the failure class without local recovery.
package errs

import "github.com/rotisserie/eris"

var (
	// ErrState indicates a target directory that must be fresh already
	// contains files. Never retried; no partial output is written.
	ErrState = eris.New("state: target directory not empty")

	// ErrSchema indicates a collaborator contract violation: wrong number
	// of input files or a required column missing from a download.
	ErrSchema = eris.New("schema: input does not match expected shape")

	// ErrVolume indicates a row or item count below the configured sanity
	// threshold, guarding against truncated upstream fetches.
	ErrVolume = eris.New("volume: input below expected minimum")

	// ErrLookup indicates an internal invariant violation: an id expected
	// to have aggregated rows has none. A defect, not a recoverable state.
	ErrLookup = eris.New("lookup: no rows for expected key")
)

// IsState reports whether err wraps ErrState.
func IsState(err error) bool { return eris.Is(err, ErrState) }

// IsSchema reports whether err wraps ErrSchema.
func IsSchema(err error) bool { return eris.Is(err, ErrSchema) }

// IsVolume reports whether err wraps ErrVolume.
func IsVolume(err error) bool { return eris.Is(err, ErrVolume) }

// IsLookup reports whether err wraps ErrLookup.
func IsLookup(err error) bool { return eris.Is(err, ErrLookup) }
