package frame

import "errors"

// Sentinel errors identifying the wire-level failure categories from §7.
// transport wraps these with %w; the session façade reports them under
// its general error category, not a category of their own. Code that
// needs to distinguish "was this a malformed frame" from "was this a
// type mismatch" can match on these directly with errors.Is.
var (
	// ErrMalformedFrame covers truncated length-prefixed fields, invalid
	// UTF-8 strings, unknown error codes, result kinds and event types,
	// and out-of-range enumerations (consistency, type descriptor id).
	ErrMalformedFrame = errors.New("frame: malformed frame")

	// ErrConversion covers CQL value <-> host type mismatches.
	ErrConversion = errors.New("frame: value conversion failed")
)
