package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/tt-tournament/handlers"
	"github.com/Dosada05/tt-tournament/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type Handlers struct {
	Tournaments *handlers.TournamentHandler
	Matches     *handlers.MatchHandler
	Players     *handlers.PlayerHandler
	WebSocket   *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get(handlers.SwaggerDocPath, handlers.SwaggerDocHandler)
	router.Get("/swagger/*", handlers.SwaggerUIHandler())

	// Live updates bypass the request timeout.
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	organizer := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.Authorize(middleware.RoleOrganizer, middleware.RoleAdmin))
	}

	router.Group(func(api chi.Router) {
		if opts.RequestTimeout > 0 {
			api.Use(chiMiddleware.Timeout(opts.RequestTimeout))
		}

		api.Route("/players", func(r chi.Router) {
			r.Get("/", h.Players.RankingHandler)
			r.Get("/{playerID}", h.Players.GetByIDHandler)
			r.Group(func(r chi.Router) {
				organizer(r)
				r.Post("/", h.Players.CreateHandler)
			})
		})

		api.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournaments.ListHandler)
			r.Get("/{tournamentID}", h.Tournaments.GetByIDHandler)
			r.Get("/{tournamentID}/full", h.Tournaments.FullHandler)
			r.Get("/{tournamentID}/results", h.Tournaments.ResultsHandler)
			r.Get("/{tournamentID}/matches", h.Tournaments.ListMatchesHandler)

			r.Group(func(r chi.Router) {
				organizer(r)
				r.Post("/", h.Tournaments.CreateHandler)
				r.Delete("/{tournamentID}", h.Tournaments.DeleteHandler)
				r.Post("/{tournamentID}/bracket", h.Tournaments.GenerateBracketHandler)
				r.Post("/{tournamentID}/finalize", h.Tournaments.FinalizeHandler)
			})
		})

		api.Route("/matches", func(r chi.Router) {
			r.Get("/{matchID}", h.Matches.GetByIDHandler)
			r.Group(func(r chi.Router) {
				organizer(r)
				r.Post("/{matchID}/start", h.Matches.StartHandler)
				r.Put("/{matchID}/result", h.Matches.SubmitResultHandler)
			})
		})
	})
}
