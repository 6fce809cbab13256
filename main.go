package main

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/keelframe/keel/framework/app"
	"github.com/keelframe/keel/framework/container"
	keelhttp "github.com/keelframe/keel/framework/http"
	"github.com/keelframe/keel/framework/routing"
)

// Greeter composes greetings; resolved out of the container below.
type Greeter struct {
	Prefix string
}

func (g *Greeter) Greet(name string) string {
	return g.Prefix + ", " + name + "!"
}

func main() {
	application := app.New() // loads .env automatically

	// ── Container bindings ───────────────────────────────────────────────────

	// Transient: a fresh Greeter per resolution.
	application.Bind("greeter", func(c *container.Container) any {
		return &Greeter{Prefix: "Hello"}
	})

	// Declared-dependency closure: receives the resolved "greeter" and
	// the application logger, in that order.
	application.Singleton("greeting-service", container.NewClosure(func(args ...any) any {
		greeter := args[0].(*Greeter)
		logger := args[1].(*zap.Logger)
		logger.Info("greeting service constructed")
		return greeter
	}, "greeter", "log"))

	// ── Routes ───────────────────────────────────────────────────────────────

	r := application.Router()

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		res := keelhttp.NewResponse(w)
		res.Success(map[string]any{"message": "Welcome to keel"})
	})

	r.Prefix("/api/v1", func(api *routing.Router) {

		// GET /api/v1/greet/{name}
		api.Get("/greet/{name}", func(w http.ResponseWriter, req *http.Request) {
			res := keelhttp.NewResponse(w)
			g, err := container.TryResolve[*Greeter](application.Container, "greeting-service")
			if err != nil {
				res.FromError(err)
				return
			}
			res.Success(map[string]any{"greeting": g.Greet(routing.Param(req, "name"))})
		})

		// GET /api/v1/bindings — container diagnostics
		api.Get("/bindings", func(w http.ResponseWriter, req *http.Request) {
			res := keelhttp.NewResponse(w)
			res.Success(application.GetBindings())
		})
	})

	if err := application.Run(); err != nil {
		application.Log().Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
