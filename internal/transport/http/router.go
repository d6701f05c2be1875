package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"blogsite-backend/internal/handler"
	"blogsite-backend/internal/httputil"
	authmw "blogsite-backend/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	PostHandler         *handler.PostHandler
	CommentHandler      *handler.CommentHandler
	NotificationHandler *handler.NotificationHandler
	TaxonomyHandler     *handler.TaxonomyHandler
	AssetHandler        *handler.AssetHandler // nil when R2 is not configured
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Public content reads; optional auth so admins can see drafts and
	// authenticated visitors get attributed comments
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))

		r.Get("/posts", cfg.PostHandler.List)
		r.Get("/posts/trending", cfg.PostHandler.Trending)
		r.Get("/posts/{slug}", cfg.PostHandler.GetBySlug)
		r.Get("/posts/{slug}/comments", cfg.CommentHandler.List)
		r.Post("/posts/{slug}/comments", cfg.CommentHandler.Create)
	})

	r.Get("/tags", cfg.TaxonomyHandler.ListTags)
	r.Get("/tags/{slug}", cfg.TaxonomyHandler.GetTag)
	r.Get("/categories", cfg.TaxonomyHandler.ListCategories)
	r.Get("/categories/{slug}", cfg.TaxonomyHandler.GetCategory)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/me", cfg.AuthHandler.Me)

		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Post authoring
		r.Post("/posts", cfg.PostHandler.Create)
		r.Patch("/posts/{slug}", cfg.PostHandler.Update)
		r.Delete("/posts/{slug}", cfg.PostHandler.Delete)

		// Comment moderation (service enforces the admin check)
		r.Delete("/posts/{slug}/comments/{commentId}", cfg.CommentHandler.Delete)

		// Taxonomy management
		r.Post("/tags", cfg.TaxonomyHandler.CreateTag)
		r.Delete("/tags/{id}", cfg.TaxonomyHandler.DeleteTag)
		r.Post("/categories", cfg.TaxonomyHandler.CreateCategory)
		r.Delete("/categories/{id}", cfg.TaxonomyHandler.DeleteCategory)

		// Image uploads
		if cfg.AssetHandler != nil {
			r.Post("/assets/posts", cfg.AssetHandler.UploadPostImage)
		}

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Get("/count", cfg.NotificationHandler.UnreadCount)
			r.Put("/{id}/read", cfg.NotificationHandler.MarkRead)
			r.Put("/read-all", cfg.NotificationHandler.MarkAllRead)
		})
	})

	return r
}
