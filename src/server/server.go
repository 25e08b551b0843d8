package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"swaprouter/src/admin"
	"swaprouter/src/events"
	"swaprouter/src/fees"
	"swaprouter/src/handler"
	"swaprouter/src/ledger"
	"swaprouter/src/orchestrator"
	"swaprouter/src/registry"
	"swaprouter/src/stats"
)

// Deps carries the wired application components the HTTP surface exposes.
type Deps struct {
	Ledger       *ledger.Ledger
	Orchestrator *orchestrator.Orchestrator
	Registry     *registry.Registry
	Recorder     *stats.Recorder
	Admin        *admin.Store
	AdminConfig  admin.Config
	Accountant   *fees.Accountant
	Emitter      *events.Emitter
}

// NewRouter builds the chi router with all public and admin routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("healthcheck write failed")
		}
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", handler.CreateOrderHandler(deps.Ledger))
		r.Get("/{orderID}", handler.GetOrderHandler(deps.Ledger))
		r.Get("/{orderID}/routes", handler.GetRoutesHandler(deps.Ledger))
		r.Get("/{orderID}/result", handler.GetResultHandler(deps.Ledger))
		r.Post("/{orderID}/execute", handler.ExecuteOrderHandler(deps.Orchestrator))
		r.Post("/{orderID}/refund", handler.RefundExpiredOrderHandler(deps.Orchestrator))
	})

	r.Route("/venues", func(r chi.Router) {
		r.Get("/", handler.ListVenuesHandler(deps.Registry))
		r.Get("/{venueID}", handler.GetVenueHandler(deps.Registry))
		r.Get("/{venueID}/usable", handler.VenueUsableHandler(deps.Registry))
	})

	r.Get("/stats", handler.StatsHandler(deps.Recorder))
	r.Get("/quotes/simulate", handler.SimulateSwapHandler())
	r.Get("/quotes/slippage", handler.EstimateSlippageHandler())
	r.Get("/events/ws", handler.EventsWSHandler(deps.Emitter))

	adminHandler := handler.NewAdminHandler(deps.AdminConfig, deps.Admin, deps.Registry, deps.Accountant)
	r.Route("/admin", func(r chi.Router) {
		r.Post("/venues", adminHandler.RegisterVenue)
		r.Patch("/venues/{venueID}/status", adminHandler.SetVenueStatus)
		r.Patch("/fees", adminHandler.SetFeeParams)
		r.Post("/pause", adminHandler.Pause)
		r.Post("/unpause", adminHandler.Unpause)
		r.Post("/transfer", adminHandler.TransferAdmin)
		r.Post("/treasury", adminHandler.SetTreasury)
		r.Post("/min-order", adminHandler.SetMinOrderAmount)
		r.Post("/delegates", adminHandler.SetDelegate)
	})

	return r
}

// StartServer runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully.
func StartServer(port string, deps Deps) {
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(deps),
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), GetConfig().ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
