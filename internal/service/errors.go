// Package service implements the application operations over a
// storage.Store. Every operation takes the authenticated principal as
// an explicit parameter and exchanges typed request/response structs
// with the HTTP layer.
package service

// Kind classifies a service failure so the transport layer can map it
// to a status code without inspecting messages.
type Kind int

const (
	// KindInvalid rejects malformed or missing input; nothing was
	// mutated.
	KindInvalid Kind = iota + 1
	// KindUnauthorized rejects requests without a resolvable principal.
	KindUnauthorized
	// KindForbidden rejects a principal acting outside its role.
	KindForbidden
	// KindNotFound rejects references to absent rows.
	KindNotFound
	// KindConflict rejects operations against state that already
	// advanced past them.
	KindConflict
)

// Error is a classified, caller-visible failure. Datastore failures are
// never wrapped in an Error; they surface as-is and the transport
// reports a generic internal failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func invalid(message string) error      { return &Error{Kind: KindInvalid, Message: message} }
func unauthorized(message string) error { return &Error{Kind: KindUnauthorized, Message: message} }
func forbidden(message string) error    { return &Error{Kind: KindForbidden, Message: message} }
func notFound(message string) error     { return &Error{Kind: KindNotFound, Message: message} }
func conflict(message string) error     { return &Error{Kind: KindConflict, Message: message} }
