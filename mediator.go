package mediator

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// Factory produces a handler or behavior instance from its type descriptor.
// The default factory performs zero-argument construction; substitute one to
// build instances from a dependency-injection container. The context is the
// dispatch context, so container lookups may block or be cancelled with it.
//
// Example:
//
//	mediator.WithRequestHandlerFactory(func(ctx context.Context, t reflect.Type) (any, error) {
//	    return container.Resolve(ctx, t)
//	})
type Factory func(ctx context.Context, t reflect.Type) (any, error)

// Mediator routes requests to their single handler and fans notifications out
// to every matching handler, running registered pipeline behaviors around each
// request dispatch.
//
// Usage:
//  1. Create a mediator with New
//  2. Register handlers and behaviors with the package-level Register functions
//  3. Dispatch with Send and Publish
//
// Mediator is safe for concurrent dispatch after configuration. Do not call
// the Register functions after the first Send or Publish: resolved handler
// lists are cached per message type, so later registrations yield stale
// results for types already dispatched.
type Mediator struct {
	requestHandlers      map[reflect.Type]*requestRegistration
	behaviors            map[reflect.Type][]*behaviorRegistration
	behaviorKeys         []reflect.Type
	behaviorPosition     int
	notificationHandlers map[reflect.Type][]*notificationRegistration
	notificationKeys     []reflect.Type

	requestFactory      Factory
	behaviorFactory     Factory
	notificationFactory Factory
	strictPublish       bool

	hooks hooks

	// Memoized resolution, keyed by exact message type.
	resolvedBehaviors     sync.Map // reflect.Type -> []*behaviorRegistration
	resolvedNotifications sync.Map // reflect.Type -> []*notificationRegistration
}

// Option configures a Mediator.
type Option func(*Mediator)

// New creates a Mediator with the given options.
//
// Example:
//
//	m := mediator.New(
//	    mediator.WithRequestHandlerFactory(containerFactory),
//	    mediator.WithOnFailure(func(ctx context.Context, t reflect.Type, err error, d time.Duration) {
//	        metrics.Incr("mediator.error", "type:"+t.String())
//	    }),
//	)
func New(opts ...Option) *Mediator {
	m := &Mediator{
		requestHandlers:      make(map[reflect.Type]*requestRegistration),
		behaviors:            make(map[reflect.Type][]*behaviorRegistration),
		notificationHandlers: make(map[reflect.Type][]*notificationRegistration),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithRequestHandlerFactory sets the factory used to instantiate request
// handlers. Defaults to zero-argument construction.
func WithRequestHandlerFactory(f Factory) Option {
	return func(m *Mediator) {
		m.requestFactory = f
	}
}

// WithPipelineBehaviorFactory sets the factory used to instantiate pipeline
// behaviors. Defaults to zero-argument construction.
func WithPipelineBehaviorFactory(f Factory) Option {
	return func(m *Mediator) {
		m.behaviorFactory = f
	}
}

// WithNotificationHandlerFactory sets the factory used to instantiate
// notification handlers. Defaults to zero-argument construction.
func WithNotificationHandlerFactory(f Factory) Option {
	return func(m *Mediator) {
		m.notificationFactory = f
	}
}

// WithStrictPublish makes Publish fail with NoNotificationHandlersError when
// a notification matches zero handlers. By default such a publish is a no-op.
func WithStrictPublish() Option {
	return func(m *Mediator) {
		m.strictPublish = true
	}
}

// Send dispatches a request to its registered handler, running any matching
// pipeline behaviors around it, and returns the handler's response.
//
// The handler is looked up by the request's exact runtime type. If none is
// registered, Send returns NoHandlerError. Errors from behaviors, the handler,
// or a factory propagate unmodified.
//
// The response is typed `any` because methods cannot have type parameters
// independent of the receiver; the package-level Send function recovers the
// static response type.
func (m *Mediator) Send(ctx context.Context, request any) (any, error) {
	t := reflect.TypeOf(request)
	if t == nil {
		return nil, &NoHandlerError{Request: request}
	}
	reg, ok := m.requestHandlers[t]
	if !ok {
		return nil, &NoHandlerError{Request: request}
	}

	ctx = m.callOnSend(ctx, t)

	// The handler is instantiated up front so factory failures surface even
	// when a behavior would short-circuit.
	handler, err := m.instantiate(ctx, m.requestFactory, reg.registration)
	if err != nil {
		return nil, err
	}

	behaviors := m.resolveBehaviors(t)

	start := time.Now()
	resp, err := m.runChain(ctx, request, reg, handler, behaviors)
	duration := time.Since(start)

	if err != nil {
		m.callOnFailure(ctx, t, err, duration)
	} else {
		m.callOnSuccess(ctx, t, duration)
	}

	return resp, err
}

// Send dispatches a request and returns its response as R.
//
// This is a package-level function (not a method) due to Go generics
// limitations: methods cannot have type parameters independent of the
// receiver. R must be the response type the handler was registered with;
// if the produced value is not assignable to R, which is possible only when
// a behavior short-circuits with a foreign value, Send returns a
// HandlerTypeError.
//
// Example:
//
//	user, err := mediator.Send[*User](ctx, m, LookupUser{UserID: "123"})
func Send[R any](ctx context.Context, m *Mediator, request any) (R, error) {
	var zero R
	v, err := m.Send(ctx, request)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	resp, ok := v.(R)
	if !ok {
		return zero, &HandlerTypeError{
			Type:   reflect.TypeOf(v),
			Reason: "response is not assignable to " + reflect.TypeOf((*R)(nil)).Elem().String(),
		}
	}
	return resp, nil
}

// Publish dispatches a notification to every matching handler, sequentially,
// each handler completing before the next starts.
//
// Handlers match when their registered notification type is the
// notification's exact type or an interface it implements. Matched keys run
// in first-registration order, handlers within a key in registration order.
//
// Fan-out is fail-fast: the first handler error stops the remaining handlers
// and propagates unmodified. With zero matches Publish returns nil, unless
// the mediator was built with WithStrictPublish.
func (m *Mediator) Publish(ctx context.Context, notification any) error {
	t := reflect.TypeOf(notification)

	var handlers []*notificationRegistration
	if t != nil {
		handlers = m.resolveNotificationHandlers(t)
	}
	if len(handlers) == 0 {
		if m.strictPublish {
			return &NoNotificationHandlersError{Notification: notification}
		}
		return nil
	}

	ctx = m.callOnPublish(ctx, t)

	start := time.Now()
	for _, reg := range handlers {
		instance, err := m.instantiate(ctx, m.notificationFactory, reg.registration)
		if err == nil {
			err = reg.invoke(ctx, instance, notification)
		}
		if err != nil {
			m.callOnFailure(ctx, t, err, time.Since(start))
			return err
		}
	}
	m.callOnSuccess(ctx, t, time.Since(start))

	return nil
}

// instantiate produces a fresh participant instance for one dispatch.
// Function adapters have no usable zero value, so func-kind registrations
// are bound at registration time and bypass the factory.
func (m *Mediator) instantiate(ctx context.Context, f Factory, reg registration) (any, error) {
	if reg.typ.Kind() == reflect.Func {
		return reg.instance, nil
	}
	if f == nil {
		return zeroConstruct(reg), nil
	}
	v, err := f(ctx, reg.typ)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &HandlerTypeError{Type: reg.typ, Reason: "factory returned nil"}
	}
	return v, nil
}

// zeroConstruct is the default factory: zero-argument construction of the
// registered type. Kinds that cannot be usefully zero-constructed fall back
// to the registered instance.
func zeroConstruct(reg registration) any {
	switch reg.typ.Kind() {
	case reflect.Pointer:
		return reflect.New(reg.typ.Elem()).Interface()
	case reflect.Struct:
		return reflect.New(reg.typ).Elem().Interface()
	default:
		return reg.instance
	}
}
