package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jmduarte/taskhub-be/internal/api/handlers"
	"github.com/jmduarte/taskhub-be/internal/auth"
	"github.com/jmduarte/taskhub-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	tokens *auth.TokenManager,
	userService services.UserServiceProvider,
	todoService services.TodoServiceProvider,
	eventService services.EventServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Clients may call /todos/ or /todos interchangeably.
	r.Use(middleware.StripSlashes)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(userService, eventService, tokens)
	todoHandler := handlers.NewTodoHandler(todoService, userService, eventService)
	eventHandler := handlers.NewEventHandler(eventService, userService)

	// Public endpoints
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/token/refresh", authHandler.Refresh)

	// Endpoints requiring a bearer access token
	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware())

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", todoHandler.List)
			r.Post("/", todoHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", todoHandler.Get)
				r.Put("/", todoHandler.Update)
				r.Delete("/", todoHandler.Delete)
				r.Put("/complete", todoHandler.ToggleComplete)
			})
		})

		r.Get("/events", eventHandler.GetRecent)
	})

	return r
}
