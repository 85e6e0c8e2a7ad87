package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/JobScout/internal/middleware"
)

// NewRouter constructs the HTTP handler that serves the JobScout API.
//
// Routes:
//
//	GET    /                                          health check
//	POST   /api/register                              userHandler.Register
//	POST   /api/login                                 userHandler.Login
//	GET    /api/users/{email}                         userHandler.Profile
//	PUT    /api/users/{email}/resume                  userHandler.SaveResume
//	POST   /api/users/{email}/resume/upload-analyze   userHandler.UploadAnalyze
//	GET    /api/users/{email}/filters                 userHandler.Filters
//	PUT    /api/users/{email}/filters                 userHandler.SaveFilters
//	GET    /api/users/{email}/job-offers              offerHandler.List
//	GET    /api/users/{email}/job-sources             sourceHandler.List
//	POST   /api/job-sources                           sourceHandler.Create
//	DELETE /api/job-sources/{id}                      sourceHandler.Delete
//	POST   /api/job-offers/load-new                   offerHandler.LoadNew
//	POST   /api/cover-letter/generate                 offerHandler.GenerateCoverLetter
func NewRouter(
	userHandler *UserHandler,
	sourceHandler *SourceHandler,
	offerHandler *OfferHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok", "service": "jobscout-backend"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)

		r.Route("/users/{email}", func(r chi.Router) {
			r.Get("/", userHandler.Profile)
			r.Put("/resume", userHandler.SaveResume)
			r.Post("/resume/upload-analyze", userHandler.UploadAnalyze)
			r.Get("/filters", userHandler.Filters)
			r.Put("/filters", userHandler.SaveFilters)
			r.Get("/job-offers", offerHandler.List)
			r.Get("/job-sources", sourceHandler.List)
		})

		r.Post("/job-sources", sourceHandler.Create)
		r.Delete("/job-sources/{id}", sourceHandler.Delete)
		r.Post("/job-offers/load-new", offerHandler.LoadNew)
		r.Post("/cover-letter/generate", offerHandler.GenerateCoverLetter)
	})

	return r
}
