package core

import stderrors "errors"

var (
	// ErrUnexpectedChild is returned when a child slot holds something other
	// than a Node, a View, or a string.
	ErrUnexpectedChild = stderrors.New("unexpected child")
	// ErrInvalidBody is returned when Body does not reduce to a Node.
	ErrInvalidBody = stderrors.New("invalid body")
	// ErrTooDeep is returned when view resolution or nesting exceeds the
	// owner's MaxDepth, which usually means a cyclic composition.
	ErrTooDeep = stderrors.New("composition too deep or cyclic")
	// ErrInvalidKey is returned for keys that are neither strings nor integers.
	ErrInvalidKey = stderrors.New("invalid key")
	// ErrInvalidValue is returned for non-primitive attribute or style values
	// and nil handlers.
	ErrInvalidValue = stderrors.New("invalid value")
	// ErrInvalidModifier is returned when a modifier returns nil.
	ErrInvalidModifier = stderrors.New("modifier returned nil")
	// ErrNotMaterialized is returned when reconciling a node that was never
	// rendered into the live tree.
	ErrNotMaterialized = stderrors.New("node not materialized")
	// ErrLiveMismatch is returned when a live node does not have the shape
	// of the node it is paired with.
	ErrLiveMismatch = stderrors.New("live node does not match node")
	// ErrDetached is returned when a live node must be replaced but has no
	// parent.
	ErrDetached = stderrors.New("live node has no parent")
	// ErrNoDocument is returned when materializing without a dom.Document.
	ErrNoDocument = stderrors.New("owner has no document")
)
