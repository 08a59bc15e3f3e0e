package mediator

import (
	"context"
	"reflect"
)

// registration records the dynamic type of a registered handler or behavior.
// The instance serves as a type exemplar: except for function adapters it is
// never invoked, only its type is handed to the factory each dispatch.
type registration struct {
	typ      reflect.Type
	instance any
}

// requestRegistration erases a typed request handler so handlers of different
// types can share one map. The invoke closure restores the static types.
type requestRegistration struct {
	registration
	invoke func(ctx context.Context, handler, request any) (any, error)
}

// behaviorRegistration carries the behavior's key and its global position.
// Positions increase monotonically across all keys, so behaviors registered
// for a broad key and a narrow key interleave by registration order.
type behaviorRegistration struct {
	registration
	key      reflect.Type
	position int
	invoke   func(ctx context.Context, behavior, request any, next Next) (any, error)
}

type notificationRegistration struct {
	registration
	key    reflect.Type
	invoke func(ctx context.Context, handler, notification any) error
}

// typeOf resolves the type parameter to its reflect.Type, including
// interface types, which reflect.TypeOf on a value cannot name.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterRequestHandler registers a handler for the request type T. The
// handler value is a type exemplar: each Send constructs a fresh instance of
// its type through the request handler factory, so any state on the value
// passed here is not visible at dispatch time (function adapters excepted).
//
// Registering a second handler for the same request type replaces the first.
//
// This is a package-level function (not a method) due to Go generics
// limitations: methods cannot have type parameters independent of the
// receiver.
//
// Example:
//
//	mediator.RegisterRequestHandler(m, &LookupUserHandler{})
func RegisterRequestHandler[T, R any](m *Mediator, h RequestHandler[T, R]) error {
	t := reflect.TypeOf(h)
	if t == nil {
		return &HandlerTypeError{Reason: "nil request handler"}
	}
	key := typeOf[T]()
	if key.Kind() == reflect.Interface {
		return &HandlerTypeError{Type: t, Reason: "request type " + key.String() + " is an interface; request handlers require a concrete request type"}
	}

	m.requestHandlers[key] = &requestRegistration{
		registration: registration{typ: t, instance: h},
		invoke: func(ctx context.Context, handler, request any) (any, error) {
			th, ok := handler.(RequestHandler[T, R])
			if !ok {
				return nil, &HandlerTypeError{Type: reflect.TypeOf(handler), Reason: "factory product does not implement RequestHandler for " + key.String()}
			}
			return th.Handle(ctx, request.(T))
		},
	}
	return nil
}

// RegisterRequestHandlerFunc registers a handler function for the request
// type T. The function itself is invoked on every Send; no factory
// construction takes place.
//
// Example:
//
//	mediator.RegisterRequestHandlerFunc(m, func(ctx context.Context, req Ping) (Pong, error) {
//	    return Pong{}, nil
//	})
func RegisterRequestHandlerFunc[T, R any](m *Mediator, fn func(ctx context.Context, request T) (R, error)) error {
	if fn == nil {
		return &HandlerTypeError{Reason: "nil request handler"}
	}
	return RegisterRequestHandler(m, RequestHandlerFunc[T, R](fn))
}

// RegisterNotificationHandler registers a handler for the notification type
// T. Handlers append: a notification type may accumulate any number, and
// Publish invokes them in registration order. T may be an interface type, in
// which case the handler matches every notification implementing it.
//
// As with request handlers, the value is a type exemplar and each Publish
// constructs a fresh instance through the notification handler factory.
func RegisterNotificationHandler[T any](m *Mediator, h NotificationHandler[T]) error {
	t := reflect.TypeOf(h)
	if t == nil {
		return &HandlerTypeError{Reason: "nil notification handler"}
	}
	key := typeOf[T]()

	if _, seen := m.notificationHandlers[key]; !seen {
		m.notificationKeys = append(m.notificationKeys, key)
	}
	m.notificationHandlers[key] = append(m.notificationHandlers[key], &notificationRegistration{
		registration: registration{typ: t, instance: h},
		key:          key,
		invoke: func(ctx context.Context, handler, notification any) error {
			th, ok := handler.(NotificationHandler[T])
			if !ok {
				return &HandlerTypeError{Type: reflect.TypeOf(handler), Reason: "factory product does not implement NotificationHandler for " + key.String()}
			}
			return th.Handle(ctx, notification.(T))
		},
	})
	return nil
}

// RegisterNotificationHandlerFunc registers a handler function for the
// notification type T.
func RegisterNotificationHandlerFunc[T any](m *Mediator, fn func(ctx context.Context, notification T) error) error {
	if fn == nil {
		return &HandlerTypeError{Reason: "nil notification handler"}
	}
	return RegisterNotificationHandler(m, NotificationHandlerFunc[T](fn))
}

// RegisterPipelineBehavior registers a behavior for the request type T and
// every type satisfying it. Register for an interface type to cover all
// requests implementing it, or for `any` to cover every request.
//
// Each behavior receives a global position at registration. When a request
// matches behaviors registered under several keys, the merged chain runs in
// ascending position order: the order the RegisterPipelineBehavior calls were
// made, regardless of which key each call used.
func RegisterPipelineBehavior[T any](m *Mediator, b PipelineBehavior[T]) error {
	t := reflect.TypeOf(b)
	if t == nil {
		return &HandlerTypeError{Reason: "nil pipeline behavior"}
	}
	key := typeOf[T]()

	if _, seen := m.behaviors[key]; !seen {
		m.behaviorKeys = append(m.behaviorKeys, key)
	}
	m.behaviors[key] = append(m.behaviors[key], &behaviorRegistration{
		registration: registration{typ: t, instance: b},
		key:          key,
		position:     m.behaviorPosition,
		invoke: func(ctx context.Context, behavior, request any, next Next) (any, error) {
			tb, ok := behavior.(PipelineBehavior[T])
			if !ok {
				return nil, &HandlerTypeError{Type: reflect.TypeOf(behavior), Reason: "factory product does not implement PipelineBehavior for " + key.String()}
			}
			return tb.Handle(ctx, request.(T), next)
		},
	})
	m.behaviorPosition++
	return nil
}

// RegisterPipelineBehaviorFunc registers a behavior function for the request
// type T.
func RegisterPipelineBehaviorFunc[T any](m *Mediator, fn func(ctx context.Context, request T, next Next) (any, error)) error {
	if fn == nil {
		return &HandlerTypeError{Reason: "nil pipeline behavior"}
	}
	return RegisterPipelineBehavior(m, PipelineBehaviorFunc[T](fn))
}
