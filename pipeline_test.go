package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// keyedResponse collects behavior writes in completion order.
type keyedResponse struct {
	Keys []string
}

type keyedRequest struct {
	ID string
}

// auditable marks requests covered by interface-keyed behaviors.
type auditable interface {
	AuditName() string
}

func (keyedRequest) AuditName() string { return "keyed" }

func TestPipeline(t *testing.T) {
	t.Run("zero behaviors returns the raw handler result", func(t *testing.T) {
		m := New()
		want := &keyedResponse{Keys: []string{"raw"}}
		RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (*keyedResponse, error) {
			return want, nil
		})

		resp, err := m.Send(context.Background(), keyedRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp != any(want) {
			t.Errorf("response = %v, want the handler's own value", resp)
		}
	})

	t.Run("behaviors wrap in registration order", func(t *testing.T) {
		m := New()
		var order []string
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			order = append(order, "p1 before")
			resp, err := next(ctx)
			order = append(order, "p1 after")
			return resp, err
		})
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			order = append(order, "p2 before")
			resp, err := next(ctx)
			order = append(order, "p2 after")
			return resp, err
		})
		RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (*keyedResponse, error) {
			order = append(order, "handler")
			return &keyedResponse{}, nil
		})

		if _, err := m.Send(context.Background(), keyedRequest{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"p1 before", "p2 before", "handler", "p2 after", "p1 after"}
		if !reflect.DeepEqual(order, want) {
			t.Errorf("order = %v, want %v", order, want)
		}
	})

	t.Run("post-continuation writes land inner first", func(t *testing.T) {
		m := New()
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			resp, err := next(ctx)
			if err != nil {
				return nil, err
			}
			kr := resp.(*keyedResponse)
			kr.Keys = append(kr.Keys, "test")
			return kr, nil
		})
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			resp, err := next(ctx)
			if err != nil {
				return nil, err
			}
			kr := resp.(*keyedResponse)
			kr.Keys = append(kr.Keys, "other_test")
			return kr, nil
		})
		RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (*keyedResponse, error) {
			return &keyedResponse{}, nil
		})

		resp, err := Send[*keyedResponse](context.Background(), m, keyedRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The first-registered behavior is outermost, so its append runs last.
		want := []string{"other_test", "test"}
		if !reflect.DeepEqual(resp.Keys, want) {
			t.Errorf("Keys = %v, want %v", resp.Keys, want)
		}
	})

	t.Run("behaviors for matching keys interleave by global position", func(t *testing.T) {
		m := New()
		var order []string
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			order = append(order, "concrete")
			return next(ctx)
		})
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req any, next Next) (any, error) {
			order = append(order, "any")
			return next(ctx)
		})
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req auditable, next Next) (any, error) {
			order = append(order, "interface")
			return next(ctx)
		})
		RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (string, error) {
			return "done", nil
		})

		if _, err := m.Send(context.Background(), keyedRequest{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"concrete", "any", "interface"}
		if !reflect.DeepEqual(order, want) {
			t.Errorf("order = %v, want %v", order, want)
		}
	})

	t.Run("short-circuit skips later behaviors and the handler", func(t *testing.T) {
		m := New()
		var handlerCalled, laterCalled bool
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			return &keyedResponse{Keys: []string{"cached"}}, nil
		})
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			laterCalled = true
			return next(ctx)
		})
		RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (*keyedResponse, error) {
			handlerCalled = true
			return &keyedResponse{}, nil
		})

		resp, err := Send[*keyedResponse](context.Background(), m, keyedRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if handlerCalled {
			t.Error("handler ran despite short-circuit")
		}
		if laterCalled {
			t.Error("later behavior ran despite short-circuit")
		}
		if !reflect.DeepEqual(resp.Keys, []string{"cached"}) {
			t.Errorf("Keys = %v, want the short-circuit response", resp.Keys)
		}
	})

	t.Run("short-circuit skips construction of later behaviors", func(t *testing.T) {
		var built []string
		m := New(WithPipelineBehaviorFactory(func(ctx context.Context, typ reflect.Type) (any, error) {
			built = append(built, typ.String())
			return reflect.New(typ.Elem()).Interface(), nil
		}))
		RegisterPipelineBehavior[keyedRequest](m, &shortCircuitBehavior{})
		RegisterPipelineBehavior[keyedRequest](m, &passThroughBehavior{})
		RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (*keyedResponse, error) {
			return &keyedResponse{}, nil
		})

		if _, err := m.Send(context.Background(), keyedRequest{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(built) != 1 {
			t.Errorf("behaviors built = %v, want only the first", built)
		}
	})

	t.Run("handler factory runs even when a behavior short-circuits", func(t *testing.T) {
		handlerBuilt := 0
		m := New(WithRequestHandlerFactory(func(ctx context.Context, typ reflect.Type) (any, error) {
			handlerBuilt++
			return &lookupHandler{}, nil
		}))
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req lookupRequest, next Next) (any, error) {
			return lookupResponse{Result: "cached"}, nil
		})
		RegisterRequestHandler(m, &lookupHandler{})

		if _, err := m.Send(context.Background(), lookupRequest{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if handlerBuilt != 1 {
			t.Errorf("handler factory calls = %d, want 1", handlerBuilt)
		}
	})

	t.Run("behavior error propagates unmodified", func(t *testing.T) {
		m := New()
		wantErr := errors.New("behavior error")
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			return nil, wantErr
		})
		RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (string, error) {
			return "", nil
		})

		_, err := m.Send(context.Background(), keyedRequest{})

		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
	})

	t.Run("behavior may translate downstream errors", func(t *testing.T) {
		m := New()
		downstream := errors.New("downstream")
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			resp, err := next(ctx)
			if err != nil {
				return nil, fmt.Errorf("translated: %w", err)
			}
			return resp, nil
		})
		RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (string, error) {
			return "", downstream
		})

		_, err := m.Send(context.Background(), keyedRequest{})

		if !errors.Is(err, downstream) {
			t.Errorf("error = %v, want wrapped %v", err, downstream)
		}
		if err == nil || err.Error() != "translated: downstream" {
			t.Errorf("error = %v, want the behavior's translation", err)
		}
	})

	t.Run("context values flow through the chain", func(t *testing.T) {
		m := New()
		type ctxKey struct{}
		var seen string
		RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req keyedRequest, next Next) (any, error) {
			return next(context.WithValue(ctx, ctxKey{}, "from-behavior"))
		})
		RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (string, error) {
			seen, _ = ctx.Value(ctxKey{}).(string)
			return "", nil
		})

		if _, err := m.Send(context.Background(), keyedRequest{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen != "from-behavior" {
			t.Errorf("handler saw %q, want %q", seen, "from-behavior")
		}
	})
}

type shortCircuitBehavior struct{}

func (b *shortCircuitBehavior) Handle(ctx context.Context, req keyedRequest, next Next) (any, error) {
	return &keyedResponse{Keys: []string{"cached"}}, nil
}

type passThroughBehavior struct{}

func (b *passThroughBehavior) Handle(ctx context.Context, req keyedRequest, next Next) (any, error) {
	return next(ctx)
}

func TestMediator_ConcurrentDispatch(t *testing.T) {
	m := New()
	RegisterPipelineBehaviorFunc(m, func(ctx context.Context, req any, next Next) (any, error) {
		return next(ctx)
	})
	RegisterRequestHandlerFunc(m, func(ctx context.Context, req keyedRequest) (string, error) {
		return req.ID, nil
	})
	RegisterNotificationHandlerFunc(m, func(ctx context.Context, n userCreated) error {
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("req-%d", i)
			resp, err := m.Send(context.Background(), keyedRequest{ID: id})
			if err != nil {
				t.Errorf("send: %v", err)
				return
			}
			if resp != id {
				t.Errorf("response = %v, want %q", resp, id)
			}
			if err := m.Publish(context.Background(), userCreated{}); err != nil {
				t.Errorf("publish: %v", err)
			}
		}(i)
	}
	wg.Wait()
}
