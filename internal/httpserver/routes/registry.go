package routes

import (
	"fmt"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
)

// Registrar mounts one group of routes on the router.
type Registrar func(r chi.Router, d deps.Deps)

var registry = map[string]Registrar{}

// Register adds a named route group. Groups register themselves from init,
// so a duplicate name is a programming error.
func Register(group string, reg Registrar) {
	if _, dup := registry[group]; dup {
		panic(fmt.Sprintf("routes: group %q registered twice", group))
	}
	registry[group] = reg
}

// Groups lists the registered group names in mount order.
func Groups() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterAll mounts every group. Called once from httpserver.New.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, group := range Groups() {
		registry[group](r, d)
		d.Logger.Debug("routes mounted", logger.String("group", group))
	}
}
