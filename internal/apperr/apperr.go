package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a failure into the four outcomes the API can express.
type Kind int

const (
	// Validation covers missing, malformed, or out-of-range input. Field
	// scoped and never escalated beyond a warning log.
	Validation Kind = iota + 1
	// Constraint covers identity collisions, duplicate cohort members, and
	// unique-key violations surfaced by the store.
	Constraint
	// NotFound covers missing rows, including assignments that exist but do
	// not belong to the activity named in the request.
	NotFound
	// Unexpected covers everything else. Fully logged, shown to the user
	// only as a generic message unless the text is known to be safe.
	Unexpected
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Constraint:
		return "constraint"
	case NotFound:
		return "not_found"
	case Unexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Error is a classified application error. Message, when set, is safe to
// show to the user as-is.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted user-facing message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithFields creates a Validation error carrying per-field messages.
func WithFields(fields map[string]string) *Error {
	return &Error{Kind: Validation, Fields: fields}
}

// Wrap attaches a kind to an underlying cause.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors are
// Unexpected.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unexpected
}

// Classify maps a low-level failure to a classified error. Already
// classified errors pass through unchanged, so it is safe to call once at
// the boundary regardless of where the error originated.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: NotFound, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &Error{Kind: Constraint, Err: err}
		case "23503": // foreign_key_violation
			return &Error{Kind: Constraint, Err: err}
		}
	}

	return &Error{Kind: Unexpected, Err: err}
}

// safePhrases are substrings of error texts produced by collaborators that
// were written for end users. An Unexpected error matching one of these may
// be surfaced verbatim instead of the generic failure message.
var safePhrases = []string{
	"sudah digunakan",
	"tidak ditemukan",
	"tidak terdaftar",
	"sudah ada",
}

// SafeMessage returns a user-facing message for err. Classified errors with
// an explicit Message are always safe. Unexpected errors are only surfaced
// when their text matches the allow-list; otherwise ok is false and the
// caller should render a generic message.
func SafeMessage(err error) (string, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message, true
	}

	text := err.Error()
	lower := strings.ToLower(text)
	for _, phrase := range safePhrases {
		if strings.Contains(lower, phrase) {
			return text, true
		}
	}
	return "", false
}

// IsResourceExhausted reports whether err indicates the store is out of a
// resource (connections, memory, disk). Used to pick critical over error
// severity when logging Unexpected failures.
func IsResourceExhausted(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 53 — insufficient resources.
		return strings.HasPrefix(pgErr.Code, "53")
	}
	return false
}
