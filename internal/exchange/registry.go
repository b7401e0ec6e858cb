package exchange

import (
	"context"
	"fmt"
	"sync"

	"crossarb/internal/domain"
)

// Registry holds one client per exchange. It is immutable after construction,
// so lookups need no locking.
type Registry struct {
	clients map[domain.ExchangeType]Client
	order   []domain.ExchangeType
}

// NewRegistry builds a registry from the given clients. A later client with
// the same type replaces an earlier one.
func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[domain.ExchangeType]Client, len(clients))}
	for _, c := range clients {
		if _, ok := r.clients[c.Type()]; !ok {
			r.order = append(r.order, c.Type())
		}
		r.clients[c.Type()] = c
	}
	return r
}

// Get returns the client for an exchange, if registered.
func (r *Registry) Get(t domain.ExchangeType) (Client, bool) {
	c, ok := r.clients[t]
	return c, ok
}

// All returns the registered clients in registration order.
func (r *Registry) All() []Client {
	out := make([]Client, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.clients[t])
	}
	return out
}

// Types returns the registered exchange types in registration order.
func (r *Registry) Types() []domain.ExchangeType {
	out := make([]domain.ExchangeType, len(r.order))
	copy(out, r.order)
	return out
}

// HealthyOne probes a single registered exchange.
func (r *Registry) HealthyOne(ctx context.Context, t domain.ExchangeType) (bool, error) {
	c, ok := r.clients[t]
	if !ok {
		return false, fmt.Errorf("exchange: %s: %w", t, domain.ErrExchangeUnavailable)
	}
	return c.Healthy(ctx), nil
}

// Healthy probes every registered exchange concurrently and reports each
// one's liveness.
func (r *Registry) Healthy(ctx context.Context) map[domain.ExchangeType]bool {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		status = make(map[domain.ExchangeType]bool, len(r.clients))
	)
	for _, c := range r.clients {
		wg.Add(1)
		go func(c Client) {
			defer wg.Done()
			ok := c.Healthy(ctx)
			mu.Lock()
			status[c.Type()] = ok
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return status
}
