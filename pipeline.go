package mediator

import "context"

// runChain executes the behavior chain around the handler invocation.
//
// The chain is a linked continuation structure built iteratively from the
// handler backward: the continuation for behavior i runs behavior i+1, the
// last one runs the handler. Each behavior is instantiated only when the
// continuation enclosing it is actually invoked, so a behavior that
// short-circuits keeps everything downstream from being constructed or run.
func (m *Mediator) runChain(ctx context.Context, request any, reg *requestRegistration, handler any, behaviors []*behaviorRegistration) (any, error) {
	next := Next(func(ctx context.Context) (any, error) {
		return reg.invoke(ctx, handler, request)
	})

	for i := len(behaviors) - 1; i >= 0; i-- {
		b := behaviors[i]
		inner := next
		next = func(ctx context.Context) (any, error) {
			instance, err := m.instantiate(ctx, m.behaviorFactory, b.registration)
			if err != nil {
				return nil, err
			}
			return b.invoke(ctx, instance, request, inner)
		}
	}

	return next(ctx)
}
