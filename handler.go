package mediator

import "context"

// RequestHandler handles a request of type T and produces a response of
// type R. Every request type has exactly one handler; registering a second
// handler for the same request type replaces the first.
//
// The type parameters form the handler's association: T is the request type
// used as the registry key, R is the response type callers receive from Send.
//
// Example:
//
//	type LookupUser struct {
//	    UserID string
//	}
//
//	type LookupUserHandler struct {
//	    client IdentityClient
//	}
//
//	func (h *LookupUserHandler) Handle(ctx context.Context, req LookupUser) (*User, error) {
//	    return h.client.GetUser(ctx, req.UserID)
//	}
type RequestHandler[T, R any] interface {
	Handle(ctx context.Context, request T) (R, error)
}

// RequestHandlerFunc is a function adapter for RequestHandler. Use for simple
// handlers that don't need a struct:
//
//	mediator.RegisterRequestHandlerFunc(m, func(ctx context.Context, req Ping) (Pong, error) {
//	    return Pong{}, nil
//	})
type RequestHandlerFunc[T, R any] func(ctx context.Context, request T) (R, error)

// Handle implements the RequestHandler interface.
func (f RequestHandlerFunc[T, R]) Handle(ctx context.Context, request T) (R, error) {
	return f(ctx, request)
}

// NotificationHandler handles a notification of type T. A notification type
// may have any number of handlers, including zero; Publish invokes each one
// sequentially and returns nothing to the caller.
//
// T may be an interface type, in which case the handler receives every
// published notification whose concrete type implements it.
//
// Example:
//
//	type OrderShippedMailer struct {
//	    mail Mailer
//	}
//
//	func (h *OrderShippedMailer) Handle(ctx context.Context, n OrderShipped) error {
//	    return h.mail.Send(ctx, n.CustomerEmail, "your order shipped")
//	}
type NotificationHandler[T any] interface {
	Handle(ctx context.Context, notification T) error
}

// NotificationHandlerFunc is a function adapter for NotificationHandler.
type NotificationHandlerFunc[T any] func(ctx context.Context, notification T) error

// Handle implements the NotificationHandler interface.
func (f NotificationHandlerFunc[T]) Handle(ctx context.Context, notification T) error {
	return f(ctx, notification)
}

// Next continues the pipeline. Invoking it runs the rest of the chain (the
// remaining behaviors and finally the request handler) and yields its result.
// A behavior that never invokes its Next short-circuits the pipeline: nothing
// downstream runs, and the behavior's own return value becomes the response.
type Next func(ctx context.Context) (any, error)

// PipelineBehavior wraps request handler execution with cross-cutting logic:
// logging, metrics, validation, caching, transactions.
//
// Behaviors are keyed by the request type T they declare but apply to T and
// every type that satisfies it: register a behavior for an interface type to
// cover all requests implementing that interface, or for `any` to cover every
// request. Because behaviors spanning several request types cannot share one
// response type, the result flows through as `any`; behaviors that forward
// next's result untouched need not inspect it.
//
// Example:
//
//	type Timing struct{}
//
//	func (Timing) Handle(ctx context.Context, req any, next mediator.Next) (any, error) {
//	    start := time.Now()
//	    resp, err := next(ctx)
//	    log.Printf("%T took %v", req, time.Since(start))
//	    return resp, err
//	}
type PipelineBehavior[T any] interface {
	Handle(ctx context.Context, request T, next Next) (any, error)
}

// PipelineBehaviorFunc is a function adapter for PipelineBehavior.
type PipelineBehaviorFunc[T any] func(ctx context.Context, request T, next Next) (any, error)

// Handle implements the PipelineBehavior interface.
func (f PipelineBehaviorFunc[T]) Handle(ctx context.Context, request T, next Next) (any, error) {
	return f(ctx, request, next)
}
