// Package errs defines the error taxonomy shared by the pagination pipeline.
//
// pkg/ezip and pkg/book report the failures they detect themselves as
// *Error values carrying one of the Kind values below, returned without
// further wrapping. Errors from the operating system are instead wrapped
// with github.com/pkg/errors for a stack trace and carry no Kind.
// pkg/xmlpull, pkg/convert and pkg/layout do not use this package.
package errs

import (
	"fmt"
)

// Kind identifies the category of failure. Hosts branch on Kind (via
// KindOf), never on Error().
type Kind string

const (
	// KindNotFound means a referenced resource (chapter, file within the
	// archive, manifest entry) does not exist.
	KindNotFound Kind = "not_found"
	// KindNotAnArchive means the input does not begin with a valid ZIP
	// end-of-central-directory structure.
	KindNotAnArchive Kind = "not_an_archive"
	// KindCorrupt means the input is a recognized container but its
	// contents fail an integrity check (bad CRC, truncated stream,
	// malformed XML/CSS that cannot be recovered from).
	KindCorrupt Kind = "corrupt"
	// KindUnsupported means the input uses a feature this implementation
	// deliberately does not handle (encryption, a compression method other
	// than stored/DEFLATE, a CSS construct outside the supported subset).
	KindUnsupported Kind = "unsupported"
	// KindOOM means an operation was refused because it would exceed a
	// configured memory bound (oversized manifest, a record wider than the
	// streaming window).
	KindOOM Kind = "oom"
	// KindExtractionFailed means decompression started but failed partway
	// through (flate stream error, short write to the extraction cache).
	KindExtractionFailed Kind = "extraction_failed"
	// KindInvalidParam means a caller passed an argument outside its
	// documented domain (negative position, zero-width page).
	KindInvalidParam Kind = "invalid_param"
)

// Error is the concrete error type every Kind constructor below returns.
// Resource names the specific file, chapter, or parameter involved; it is
// included in Error() but also kept unwrapped so hosts can format it
// themselves.
type Error struct {
	Kind     Kind
	Resource string
	Message  string
}

func (e *Error) Error() string {
	if e.Resource == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

// Is makes errors.Is(err, &Error{Kind: KindNotFound}) work for sentinel-style
// matching on Kind alone (Resource/Message are ignored when target leaves
// them empty).
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	if te.Kind != e.Kind {
		return false
	}
	if te.Resource != "" && te.Resource != e.Resource {
		return false
	}
	if te.Message != "" && te.Message != e.Message {
		return false
	}
	return true
}

// As supports errors.As(err, &target).
func (e *Error) As(target interface{}) bool {
	te, ok := target.(**Error)
	if !ok {
		return false
	}
	*te = e
	return true
}

// KindOf extracts the Kind from err, walking wrapped errors. It returns
// ("", false) for errors that never originated from this package.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !AsError(err, &e) {
		return "", false
	}
	return e.Kind, true
}

// AsError is a small indirection over errors.As kept local so callers don't
// need to import both errs and the stdlib errors package for one call.
func AsError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// NotFound reports that resource could not be located.
func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Resource: resource, Message: "not found"}
}

// NotAnArchive reports that path does not look like a ZIP container.
func NotAnArchive(resource string) error {
	return &Error{Kind: KindNotAnArchive, Resource: resource, Message: "not a zip archive"}
}

// Corrupt reports structural damage within an otherwise recognized
// resource, with detail describing what failed.
func Corrupt(resource, detail string) error {
	return &Error{Kind: KindCorrupt, Resource: resource, Message: detail}
}

// Unsupported reports a recognized-but-unhandled feature.
func Unsupported(resource, feature string) error {
	return &Error{Kind: KindUnsupported, Resource: resource, Message: feature + " is not supported"}
}

// OOM reports that honoring the request would exceed a memory bound.
func OOM(resource string) error {
	return &Error{Kind: KindOOM, Resource: resource, Message: "exceeds memory bound"}
}

// ExtractionFailed reports a mid-stream decompression or cache-write
// failure.
func ExtractionFailed(resource, detail string) error {
	return &Error{Kind: KindExtractionFailed, Resource: resource, Message: detail}
}

// InvalidParam reports an argument outside its documented domain.
func InvalidParam(param, detail string) error {
	return &Error{Kind: KindInvalidParam, Resource: param, Message: detail}
}
