package mediator

import (
	"fmt"
	"reflect"
)

// NoHandlerError is returned by Send when the request's exact runtime type
// has no registered handler. Handler lookup never falls back to a supertype;
// a handler registered for an embedded or interface type does not satisfy a
// concrete request.
type NoHandlerError struct {
	// Request is the request value that could not be dispatched.
	Request any
}

func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("mediator: no handler registered for request type %T", e.Request)
}

// NoNotificationHandlersError is returned by Publish when strict mode is
// enabled (WithStrictPublish) and no handler matched the notification.
type NoNotificationHandlersError struct {
	// Notification is the notification value that found no handlers.
	Notification any
}

func (e *NoNotificationHandlersError) Error() string {
	return fmt.Sprintf("mediator: no handlers registered for notification type %T", e.Notification)
}

// HandlerTypeError reports a registration or instantiation problem: a nil
// handler, a request handler keyed by an interface type, or a factory product
// that does not implement the registered handler's interface.
type HandlerTypeError struct {
	// Type is the handler or factory-product type involved, nil when the
	// handler itself was nil.
	Type reflect.Type

	// Reason describes what went wrong.
	Reason string
}

func (e *HandlerTypeError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("mediator: %s", e.Reason)
	}
	return fmt.Sprintf("mediator: %s: %s", e.Type, e.Reason)
}
