package cmix

import (
	"github.com/pkg/errors"

	"github.com/mewkiz/cmix/internal/invariant"
)

// Sentinel errors for the failure kinds spec.md §7 names. Compare against
// these with errors.Cause(err) == ErrXxx (pkg/errors v0.8.0 predates the
// stdlib errors.Is convention); Compress/Decompress always wrap the
// underlying cause with errors.WithStack or errors.Wrap so a caller can
// still print a trace.
var (
	// ErrTruncatedInput is returned when the container ends mid-header or
	// mid-payload instead of at an EOF header.
	ErrTruncatedInput = errors.New("cmix: truncated input")

	// ErrCorruptHeader is returned when a block header's profile byte does
	// not name one of the five defined profile codes.
	ErrCorruptHeader = errors.New("cmix: corrupt block header")

	// ErrLengthOverflow is returned when a decoded length exceeds what the
	// platform's int can represent.
	ErrLengthOverflow = errors.New("cmix: block length overflow")

	// ErrInternalInvariant wraps a recovered invariant.Violation: a bug in
	// the coder, not a property of the input. See internal/invariant.
	ErrInternalInvariant = errors.New("cmix: internal invariant violated")

	// ErrSkipUnsupported is returned by Decompress when the container
	// contains a Skip block. Reconstructing a Skip block's bytes requires
	// the match-offset side channel spec.md §9 names as the explicitly
	// out-of-scope "MatchFinder/MatchEncoder LZ abstraction" — the wire
	// format itself carries no offset field for Skip (spec.md §6: "Skip
	// payloads have zero bytes on the wire"), so there is nothing in the
	// container for a decoder to recover those bytes from. Compress still
	// emits Skip blocks when the Analyzer's deduplicator finds one (the
	// block list and its entropy-coding savings are real); decoding such a
	// stream is out of this core's scope, matching the spec precisely
	// rather than inventing an unscoped reconstruction mechanism.
	ErrSkipUnsupported = errors.New("cmix: Skip block reconstruction is out of scope")
)

// wrapInvariantViolation rewrites a just-recovered internal/invariant.
// Violation into ErrInternalInvariant wrapped with a stack trace, the
// single panic/recover boundary spec.md §7 describes ("should abort with
// diagnostics" without unchecked error returns deep in the per-bit coder
// loop). Errors of any other kind pass through unchanged.
//
// Callers must defer invariant.Recover(&err) directly — recover() only has
// an effect when called by the function given to defer itself, so this
// helper cannot call recover on Recover's behalf; it only reshapes whatever
// Recover already placed into err, via a second, later-running defer:
//
//	defer func() { err = wrapInvariantViolation(err) }()
//	defer invariant.Recover(&err)
func wrapInvariantViolation(err error) error {
	if _, ok := err.(invariant.Violation); ok {
		return errors.Wrap(ErrInternalInvariant, err.Error())
	}
	return err
}
