package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"secretsanta/internal/delivery/http/controllers"
	"secretsanta/internal/delivery/http/middleware"
	"secretsanta/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Draw      *controllers.DrawController
	Result    *controllers.ResultController
	Exclusion *controllers.ExclusionController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	optionalAuth := middleware.OptionalAuth(verifier, logger)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Draw
	mux.HandleFunc("POST /groups/{groupID}/draw/validate", auth(c.Draw.Validate))
	mux.HandleFunc("POST /groups/{groupID}/draw/execute", auth(c.Draw.Execute))
	mux.HandleFunc("GET /groups/{groupID}/draw", auth(c.Draw.Status))
	mux.HandleFunc("GET /groups/{groupID}/participants/{participantID}/result", optionalAuth(c.Result.GetResult))

	// Exclusions
	mux.HandleFunc("GET /groups/{groupID}/exclusions", auth(c.Exclusion.List))
	mux.HandleFunc("POST /groups/{groupID}/exclusions", auth(c.Exclusion.Create))
	mux.HandleFunc("DELETE /groups/{groupID}/exclusions/{exclusionID}", auth(c.Exclusion.Delete))
	mux.HandleFunc("PUT /groups/{groupID}/participants/{participantID}/elf", auth(c.Exclusion.SetElf))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
