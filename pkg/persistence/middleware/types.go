// Package middleware wraps a ScenarioStore with cross-cutting behavior.
package middleware

import "github.com/aretw0/rescuegrid/pkg/ports"

// Middleware allows wrapping a ScenarioStore to add behavior.
type Middleware func(ports.ScenarioStore) ports.ScenarioStore

// Chain applies mws to store. The first middleware is the outermost.
func Chain(store ports.ScenarioStore, mws ...Middleware) ports.ScenarioStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
