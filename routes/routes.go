package routes

import (
	"net/http"

	"github.com/Dosada05/swiss-pairing/docs"
	"github.com/Dosada05/swiss-pairing/handlers"
	"github.com/Dosada05/swiss-pairing/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Player     *handlers.PlayerHandler
	Match      *handlers.MatchHandler
	Pairing    *handlers.PairingHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(r chi.Router, h Handlers, opts Options) {
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	director := []func(http.Handler) http.Handler{
		middleware.Authenticate(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleDirector),
	}

	r.Post("/auth/login", h.Auth.Login)

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListTournaments)
		r.With(director...).Post("/", h.Tournament.CreateTournament)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.GetTournament)
			r.Get("/players", h.Player.ListPlayers)
			r.Get("/players/count", h.Player.CountPlayers)
			r.Get("/matches", h.Match.ListMatches)
			r.Get("/standings", h.Pairing.GetStandings)

			// Защищенные маршруты только для директора турнира
			r.Group(func(r chi.Router) {
				r.Use(director...)

				r.Delete("/", h.Tournament.DeleteTournament)
				r.Patch("/status", h.Tournament.UpdateTournamentStatus)
				r.Post("/reset", h.Tournament.ResetTournament)
				r.Post("/players", h.Player.RegisterPlayer)
				r.Delete("/players", h.Player.DeletePlayers)
				r.Post("/matches", h.Match.ReportMatch)
				r.Delete("/matches", h.Match.DeleteMatches)
				r.Post("/pairings", h.Pairing.GeneratePairings)
			})
		})
	})

	r.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	r.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.SwaggerJSON)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
