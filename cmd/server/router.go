package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api"
	apimiddleware "github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/middleware"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	rateLimiter := apimiddleware.NewRateLimiter(
		app.config.Server.RateLimitPerSecond,
		app.config.Server.RateLimitBurst,
	)
	r.Use(rateLimiter.Limit)

	appointmentHandler := api.NewAppointmentHandler(
		app.appointmentService,
		app.appointmentStore,
		app.categoryStore,
		app.userStore,
		app.commentStore,
		app.logger,
	)
	categoryHandler := api.NewCategoryHandler(app.categoryStore, app.logger)
	authorHandler := api.NewAuthorHandler(app.userStore, app.logger)
	commentHandler := api.NewCommentHandler(
		app.commentStore,
		app.appointmentStore,
		app.userStore,
		app.logger,
	)
	authHandler := api.NewAuthHandler(
		app.userStore,
		app.tokenStore,
		app.jwtService,
		app.passwordHasher,
		app.passwordVerifier,
		app.logger,
	)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService, app.tokenStore)

	r.Route("/api/v1", func(r chi.Router) {
		// Authentication endpoints (public, plain JSON bodies)
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)

		// Public read endpoints
		r.Get("/appointments", appointmentHandler.List)
		r.Get("/appointments/{id}", appointmentHandler.Get)
		r.Get("/appointments/{id}/relationships/category", appointmentHandler.GetCategoryRelationship)
		r.Get("/appointments/{id}/category", appointmentHandler.GetCategory)
		r.Get("/appointments/{id}/relationships/author", appointmentHandler.GetAuthorRelationship)
		r.Get("/appointments/{id}/author", appointmentHandler.GetAuthor)
		r.Get("/appointments/{id}/relationships/comments", appointmentHandler.GetCommentsRelationship)
		r.Get("/appointments/{id}/comments", appointmentHandler.GetComments)

		r.Get("/categories", categoryHandler.List)
		r.Get("/categories/{id}", categoryHandler.Get)

		r.Get("/authors", authorHandler.List)
		r.Get("/authors/{id}", authorHandler.Get)

		r.Get("/comments", commentHandler.List)
		r.Get("/comments/{id}", commentHandler.Get)
		r.Get("/comments/{id}/relationships/appointment", commentHandler.GetAppointmentRelationship)
		r.Get("/comments/{id}/appointment", commentHandler.GetAppointment)
		r.Get("/comments/{id}/relationships/author", commentHandler.GetAuthorRelationship)
		r.Get("/comments/{id}/author", commentHandler.GetAuthor)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/logout", authHandler.Logout)
			r.Get("/user", authorHandler.CurrentUser)

			// JSON:API resource writes require the JSON:API media type
			r.Group(func(r chi.Router) {
				r.Use(apimiddleware.RequireJSONAPIContentType)

				r.Post("/appointments", appointmentHandler.Create)
				r.Patch("/appointments/{id}", appointmentHandler.Update)
				r.Delete("/appointments/{id}", appointmentHandler.Delete)
				r.Patch("/appointments/{id}/relationships/category", appointmentHandler.PatchCategoryRelationship)
				r.Patch("/appointments/{id}/relationships/author", appointmentHandler.PatchAuthorRelationship)
				r.Patch("/appointments/{id}/relationships/comments", appointmentHandler.PatchCommentsRelationship)

				r.Post("/comments", commentHandler.Create)
				r.Patch("/comments/{id}", commentHandler.Update)
				r.Delete("/comments/{id}", commentHandler.Delete)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	return r
}

// notFoundHandler renders unmatched routes. API paths get a JSON:API
// errors document so clients never see chi's plain-text fallback;
// anything outside /api gets a plain JSON message.
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(api.MessageResponse{
			Message: "The route " + r.URL.Path + " could not be found.",
		})
		return
	}
	api.RespondError(w, r, jsonapi.NewRouteNotFound(r.URL.Path))
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(http.StatusMethodNotAllowed)
	doc := jsonapi.ErrorDocument{Errors: []jsonapi.ErrorObject{{
		Status: "405",
		Title:  "Method Not Allowed",
		Detail: "The " + r.Method + " method is not supported for this route.",
	}}}
	_ = json.NewEncoder(w).Encode(doc)
}
