// Package errors defines the typed error taxonomy for the case lifecycle
// pipeline, with classification and retry behavior per kind.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a pipeline error. Each kind has defined behavior for
// retry policy and fatality.
type Kind int

const (
	// KindTemplateNotFound indicates a missing prompt, form, or few-shot
	// file for a requested (module, version[, diagnosis]) triple.
	KindTemplateNotFound Kind = iota

	// KindProfileParse indicates LLM output that could not be coerced to
	// structured form after boundary stripping and null pruning.
	KindProfileParse

	// KindBlobStore indicates a failure propagated from the blob store
	// adapter. Writes are idempotent at the key level, so retries are safe.
	KindBlobStore

	// KindGateway indicates an LLM call failure. Aborts the current turn
	// or extraction question.
	KindGateway

	// KindSchemaMismatch indicates a construct lacking a rubric field after
	// normalization. Non-fatal: the field scores 0 and is flagged.
	KindSchemaMismatch
)

var kindNames = map[Kind]string{
	KindTemplateNotFound: "template_not_found",
	KindProfileParse:     "profile_parse",
	KindBlobStore:        "blob_store",
	KindGateway:          "gateway",
	KindSchemaMismatch:   "schema_mismatch",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Behavior defines the handling policy for an error kind.
type Behavior struct {
	ShouldRetry bool
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Fatal       bool
}

// DefaultBehaviors returns the handling policy for each kind.
func DefaultBehaviors() map[Kind]Behavior {
	return map[Kind]Behavior{
		KindTemplateNotFound: {Fatal: true},
		KindProfileParse:     {Fatal: true},
		KindBlobStore: {
			ShouldRetry: true,
			MaxRetries:  3,
			BaseBackoff: 100 * time.Millisecond,
			MaxBackoff:  5 * time.Second,
			Fatal:       true,
		},
		KindGateway: {
			ShouldRetry: true,
			MaxRetries:  3,
			BaseBackoff: 500 * time.Millisecond,
			MaxBackoff:  30 * time.Second,
			Fatal:       true,
		},
		KindSchemaMismatch: {Fatal: false},
	}
}

// Error wraps an underlying error with a pipeline kind and call context.
type Error struct {
	Kind       Kind
	Op         string
	Message    string
	Underlying error
	Context    map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.Underlying != nil && e.Message != "":
		return fmt.Sprintf("[%s] %s: %s: %v", e.Kind, e.Op, e.Message, e.Underlying)
	case e.Underlying != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Underlying)
	default:
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Op, e.Message)
	}
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches another *Error by kind.
func (e *Error) Is(target error) bool {
	var pe *Error
	if errors.As(target, &pe) {
		return e.Kind == pe.Kind
	}
	return false
}

// WithContext adds a context key-value pair to the error.
func (e *Error) WithContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// New creates an Error with the given kind, operation, and message.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an Error wrapping an underlying cause.
func Wrap(kind Kind, op string, underlying error) *Error {
	return &Error{Kind: kind, Op: op, Underlying: underlying}
}

// TemplateNotFound builds a template_not_found error for a lookup.
func TemplateNotFound(module, version, diagnosis string) *Error {
	e := New(KindTemplateNotFound, "templates.resolve", "no matching template file")
	e.WithContext("module", module)
	e.WithContext("version", version)
	if diagnosis != "" {
		e.WithContext("diagnosis", diagnosis)
	}
	return e
}

// GetKind extracts the Kind from an error, defaulting to KindGateway for
// unclassified failures crossing an I/O boundary.
func GetKind(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindGateway
}

// GetBehavior returns the handling policy for an error's kind.
func GetBehavior(err error) Behavior {
	return DefaultBehaviors()[GetKind(err)]
}

// IsRetryable reports whether an error should be retried based on its kind.
func IsRetryable(err error) bool {
	return GetBehavior(err).ShouldRetry
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
