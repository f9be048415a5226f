package catalog

import (
	"sort"

	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	KindMissingField      ErrorKind = "MissingField"
	KindTooShort          ErrorKind = "TooShort"
	KindTooLong           ErrorKind = "TooLong"
	KindInvalidFormat     ErrorKind = "InvalidFormat"
	KindOutOfRange        ErrorKind = "OutOfRange"
	KindOrderingViolation ErrorKind = "OrderingViolation"
	KindEnumMismatch      ErrorKind = "EnumMismatch"
)

// Violation is a single rule failure with its user-facing message.
type Violation struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (v *Violation) Error() string {
	if v == nil {
		return ""
	}
	return v.Message
}

func violation(kind ErrorKind, message string) *Violation {
	return &Violation{Kind: kind, Message: message}
}

// FieldErrors maps a dotted field path to its message. Empty means valid.
type FieldErrors map[string]string

func (fe FieldErrors) add(path string, v *Violation) {
	if v != nil {
		fe[path] = v.Message
	}
}

func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// Fields returns the failing paths in sorted order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Err converts a non-empty map into a VALIDATION_ERROR carrying the map as
// details; an empty map yields nil.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	details := make(map[string]string, len(fe))
	for k, v := range fe {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "product validation failed").WithDetails(details)
}
