package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

const (
	handlerTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type gameManager interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
	ResetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, row, col int) (*entity.MoveResult, *entity.Game, error)
	LegalMoves(ctx context.Context, id string) (entity.Mark, []entity.Position, error)

	GetTally(ctx context.Context) (*entity.Tally, error)
	ResetTally(ctx context.Context) error
}

type eventStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request, gameID string)
	CloseGame(gameID string)
}

type Server struct {
	logger  *slog.Logger
	manager gameManager
	events  eventStream

	router *chi.Mux
}

func New(logger *slog.Logger, manager gameManager, events eventStream) *Server {
	server := &Server{
		logger:  logger.With("component", "rest"),
		manager: manager,
		events:  events,

		router: chi.NewRouter(),
	}

	server.routes()

	return server
}

func (that *Server) routes() {
	r := that.router

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})

	timeout := chimw.Timeout(handlerTimeout)

	r.With(timeout).Get("/ping", NewPingHandler().PingHandler)

	r.Route("/games", func(r chi.Router) {
		// the event stream outlives any handler timeout
		r.Get("/{id}/events", that.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(timeout)

			r.Post("/", that.handleCreateGame)
			r.Get("/{id}", that.handleGetGame)
			r.Delete("/{id}", that.handleDeleteGame)
			r.Post("/{id}/reset", that.handleResetGame)
			r.Post("/{id}/moves", that.handleMakeMove)
			r.Get("/{id}/legal-moves", that.handleLegalMoves)
		})
	})

	r.Route("/tally", func(r chi.Router) {
		r.Use(timeout)

		r.Get("/", that.handleGetTally)
		r.Delete("/", that.handleResetTally)
	})
}

// Handler exposes the router, mostly for tests.
func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - serves HTTP on port until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	return nil
}
