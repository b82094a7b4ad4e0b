package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes wires HTTP handlers into the provided router.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions}
	videos := VideoHandler{Service: deps.Videos, Sessions: deps.Sessions}
	uploads := UploadHandler{Signer: deps.Uploads}

	r.Get("/healthz", health.Handle)

	r.Post("/api/v1/auth/register", auth.Register)
	r.Post("/api/v1/auth/login", auth.Login)
	r.Post("/api/v1/auth/refresh", auth.Refresh)

	r.Get("/api/v1/videos", videos.List)
	r.Post("/api/v1/videos", videos.Create)
	r.Get("/api/v1/videos/{id}", videos.Get)
	r.Patch("/api/v1/videos/{id}", videos.Update)
	r.Delete("/api/v1/videos/{id}", videos.Delete)

	r.Get("/api/v1/imagekit-auth", uploads.Auth)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users    UserStore
	Sessions SessionManager
	Videos   VideoService
	Uploads  UploadSigner
}
