package mediator

import (
	"context"
	"reflect"
	"time"
)

// OnSendFunc is called after handler lookup succeeds, before the pipeline
// runs. Use this to enrich the context with logging fields or trace spans.
// The returned context is used for the rest of the dispatch.
type OnSendFunc func(ctx context.Context, requestType reflect.Type) context.Context

// OnPublishFunc is called before notification fan-out begins, once at least
// one handler matched. The returned context is used for the fan-out.
type OnPublishFunc func(ctx context.Context, notificationType reflect.Type) context.Context

// OnSuccessFunc is called after a dispatch completes successfully.
type OnSuccessFunc func(ctx context.Context, messageType reflect.Type, duration time.Duration)

// OnFailureFunc is called after a dispatch fails.
type OnFailureFunc func(ctx context.Context, messageType reflect.Type, err error, duration time.Duration)

// hooks holds all configured hook functions.
type hooks struct {
	onSend    []OnSendFunc
	onPublish []OnPublishFunc
	onSuccess []OnSuccessFunc
	onFailure []OnFailureFunc
}

// WithOnSend adds a hook called before a request's pipeline runs. Multiple
// hooks are called in order, with context chaining through each.
//
// Example:
//
//	mediator.WithOnSend(func(ctx context.Context, t reflect.Type) context.Context {
//	    return logx.WithCtx(ctx, slog.String("request", t.String()))
//	})
func WithOnSend(fn OnSendFunc) Option {
	return func(m *Mediator) {
		m.hooks.onSend = append(m.hooks.onSend, fn)
	}
}

// WithOnPublish adds a hook called before a notification fans out. Multiple
// hooks are called in order, with context chaining through each.
func WithOnPublish(fn OnPublishFunc) Option {
	return func(m *Mediator) {
		m.hooks.onPublish = append(m.hooks.onPublish, fn)
	}
}

// WithOnSuccess adds a hook called after a Send or Publish completes
// successfully. Multiple hooks are called in order.
//
// Example:
//
//	mediator.WithOnSuccess(func(ctx context.Context, t reflect.Type, d time.Duration) {
//	    metrics.Timing("mediator.success", d, "type:"+t.String())
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(m *Mediator) {
		m.hooks.onSuccess = append(m.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after a Send or Publish fails. The error
// still propagates to the caller; hooks observe, they do not handle.
func WithOnFailure(fn OnFailureFunc) Option {
	return func(m *Mediator) {
		m.hooks.onFailure = append(m.hooks.onFailure, fn)
	}
}

func (m *Mediator) callOnSend(ctx context.Context, t reflect.Type) context.Context {
	for _, fn := range m.hooks.onSend {
		ctx = fn(ctx, t)
	}
	return ctx
}

func (m *Mediator) callOnPublish(ctx context.Context, t reflect.Type) context.Context {
	for _, fn := range m.hooks.onPublish {
		ctx = fn(ctx, t)
	}
	return ctx
}

func (m *Mediator) callOnSuccess(ctx context.Context, t reflect.Type, d time.Duration) {
	for _, fn := range m.hooks.onSuccess {
		fn(ctx, t, d)
	}
}

func (m *Mediator) callOnFailure(ctx context.Context, t reflect.Type, err error, d time.Duration) {
	for _, fn := range m.hooks.onFailure {
		fn(ctx, t, err, d)
	}
}
