package apierror

import "errors"

// Kind classifies a domain error so handlers can map it to an HTTP status
// without string-matching messages.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindForbidden
	KindInternal
)

// DomainError carries a user-safe message plus its classification.
type DomainError struct {
	Kind    Kind
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func Validation(msg string) error { return &DomainError{Kind: KindValidation, Message: msg} }
func NotFound(msg string) error   { return &DomainError{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) error  { return &DomainError{Kind: KindForbidden, Message: msg} }
func Internal(msg string) error   { return &DomainError{Kind: KindInternal, Message: msg} }

// KindOf returns the classification of err, defaulting to KindInternal for
// errors that did not originate in the domain layer.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
