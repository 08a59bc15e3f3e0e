// Package mediator provides an in-process mediator for request/response and
// notification dispatch.
//
// The mediator package decouples callers from handler implementations behind a
// single coordination point. It routes two message shapes: requests, which
// have exactly one handler and return a typed response, and notifications,
// which fan out to zero or more handlers and return nothing. Cross-cutting
// logic composes around request handlers as pipeline behaviors, chained like
// middleware in a deterministic global order.
//
// # Quick Start
//
// Define a request and its handler:
//
//	type LookupUser struct {
//	    UserID string
//	}
//
//	type LookupUserHandler struct{}
//
//	func (h *LookupUserHandler) Handle(ctx context.Context, req LookupUser) (*User, error) {
//	    return &User{ID: req.UserID}, nil
//	}
//
// Create a mediator, register handlers, and dispatch:
//
//	m := mediator.New()
//
//	mediator.RegisterRequestHandler(m, &LookupUserHandler{})
//
//	user, err := mediator.Send[*User](ctx, m, LookupUser{UserID: "123"})
//
// # Design Philosophy
//
// The package separates concerns into three layers:
//
//   - Messages: plain data types with no behavior
//   - Mediator: matches message types to handlers, orchestrates the pipeline
//   - Handlers and behaviors: business logic and cross-cutting logic
//
// This separation allows:
//   - Callers that depend on message types, never on handler types
//   - Cross-cutting concerns written once as behaviors
//   - Handlers constructed per dispatch, so DI containers control their deps
//   - Easy testing with function adapters
//
// There is no transport, persistence, or retry machinery here: the mediator
// is a pure in-process call-routing abstraction meant to be embedded behind
// whatever edge (HTTP, queue consumer, CLI) the application already has.
//
// # Requests
//
// Request handlers implement RequestHandler with typed request and response:
//
//	type RequestHandler[T, R any] interface {
//	    Handle(ctx context.Context, request T) (R, error)
//	}
//
// Handler lookup is by the request's exact runtime type, with no supertype
// fallback; Send returns NoHandlerError when the type is unregistered.
// Registering a second handler for a request type replaces the first.
//
// Use RegisterRequestHandlerFunc for simple cases without a struct:
//
//	mediator.RegisterRequestHandlerFunc(m, func(ctx context.Context, req Ping) (Pong, error) {
//	    return Pong{}, nil
//	})
//
// # Pipeline Behaviors
//
// Behaviors wrap request handler execution. Each behavior receives the request
// and a Next continuation for the rest of the chain; it may run logic before
// or after invoking it, translate errors around it, or never invoke it at all
// and produce the response itself (short-circuit), in which case nothing
// downstream is constructed or run.
//
//	mediator.RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req any, next mediator.Next) (any, error) {
//	    start := time.Now()
//	    resp, err := next(ctx)
//	    log.Printf("%T took %v", req, time.Since(start))
//	    return resp, err
//	})
//
// A behavior registered for type T applies to T and every type satisfying it:
// register for an interface type to cover all requests implementing it, or
// for `any` to cover every request. When a request matches behaviors under
// several keys, the merged chain runs in global registration order: the
// order of the RegisterPipelineBehavior calls, regardless of key.
//
// # Notifications
//
// Notification handlers implement NotificationHandler:
//
//	type NotificationHandler[T any] interface {
//	    Handle(ctx context.Context, notification T) error
//	}
//
// Publish resolves every handler whose registered type is the notification's
// exact type or an interface it implements, and invokes them sequentially,
// each completing before the next starts. Fan-out is fail-fast: the first
// error stops the remaining handlers and propagates to the caller. Matched
// keys run in first-registration order, handlers within a key in
// registration order.
//
// Publishing with zero matches is a silent no-op by default. Build the
// mediator with WithStrictPublish to get NoNotificationHandlersError instead.
//
// # Factories
//
// Every dispatch constructs a fresh instance of each participating handler
// and behavior. The default factory performs zero-argument construction of
// the registered type; substitute factories to build instances from a
// dependency-injection container:
//
//	m := mediator.New(
//	    mediator.WithRequestHandlerFactory(func(ctx context.Context, t reflect.Type) (any, error) {
//	        return container.Resolve(ctx, t)
//	    }),
//	)
//
// Because instances are rebuilt per dispatch, handlers must not rely on state
// surviving between calls. Function adapters are the exception: a function
// has no usable zero value, so func registrations are bound at registration
// time and bypass the factory.
//
// # Resolution Caching
//
// The behaviors and notification handlers matching a message type are
// resolved once per exact type and cached for the mediator's lifetime. The
// intended usage is configure-then-dispatch: register everything at startup,
// then serve traffic. Registering after a type has been dispatched yields
// stale results for that type.
//
// # Hooks
//
// Hooks provide observability without coupling to specific logging or metrics
// systems. Use functional options to configure hooks:
//
//	m := mediator.New(
//	    mediator.WithOnSend(func(ctx context.Context, t reflect.Type) context.Context {
//	        return logx.WithCtx(ctx, slog.String("request", t.String()))
//	    }),
//	    mediator.WithOnSuccess(func(ctx context.Context, t reflect.Type, d time.Duration) {
//	        metrics.Timing("mediator.success", d, "type:"+t.String())
//	    }),
//	    mediator.WithOnFailure(func(ctx context.Context, t reflect.Type, err error, d time.Duration) {
//	        metrics.Incr("mediator.error", "type:"+t.String())
//	    }),
//	)
//
// Available hooks:
//   - WithOnSend: Called before a request's pipeline runs, enriches context
//   - WithOnPublish: Called before a notification fans out, enriches context
//   - WithOnSuccess: Called after a dispatch succeeds
//   - WithOnFailure: Called after a dispatch fails
//
// Multiple hooks of the same type are called in order. Hooks observe; they
// never swallow or translate errors. That is what behaviors are for.
//
// # Error Handling
//
// The mediator performs no catching, wrapping, or retrying. Errors from
// handlers, behaviors, and factories propagate unmodified to the Send or
// Publish caller. Its own failures are typed:
//
//   - NoHandlerError: Send found no handler for the request's exact type
//   - NoNotificationHandlersError: strict Publish matched zero handlers
//   - HandlerTypeError: a registration or factory product was unusable
//
// # Thread Safety
//
// Mediator is safe for concurrent dispatch after configuration is complete.
// Do not call the Register functions after the first Send or Publish.
package mediator
