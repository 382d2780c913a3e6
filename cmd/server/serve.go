package main

import (
	"context"
	"elsofra/internal/api"
	"elsofra/internal/clock"
	"elsofra/internal/metrics"
	"elsofra/internal/repository"
	"elsofra/internal/service"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(configFile *string) *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the stale booking sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			rt, err := setup(ctx, *configFile)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.cfg.RequireJWTSecret(); err != nil {
				return err
			}

			if migrateUp {
				if err := repository.Migrate(ctx, rt.db); err != nil {
					return err
				}
				rt.logger.Info("migrations applied")
			}
			return serve(ctx, rt)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

func serve(ctx context.Context, rt *app) error {
	cfg, logger := rt.cfg, rt.logger
	clk := clock.NewSystem(cfg.Location)
	m := metrics.New(prometheus.DefaultRegisterer)

	txManager := repository.NewTxManager(rt.db)
	scheduleRepo := repository.NewScheduleRepository(rt.db)
	ledgerRepo := repository.NewLedgerRepository(rt.db)
	bookingRepo := repository.NewReservationRepository(rt.db)
	restrictionRepo := repository.NewRestrictionRepository(rt.db)
	jobRepo := repository.NewJobRepository(rt.db)
	adminRepo := repository.NewAdminAuthRepository(rt.db)

	scheduleSvc := service.NewScheduleService(scheduleRepo, logger)
	validationSvc := service.NewValidationService(scheduleSvc, ledgerRepo, bookingRepo, clk, logger, m,
		service.WithSlotCapacity(cfg.SlotCapacity),
		service.WithLeadDays(cfg.LeadDays),
		service.WithServingSlots(cfg.ServingSlots),
	)
	reservationSvc := service.NewReservationService(bookingRepo, restrictionRepo, txManager, validationSvc, clk, logger, m,
		service.WithStayWindowDays(cfg.StayWindowDays),
	)
	adminSvc := service.NewAdminService(bookingRepo, restrictionRepo, txManager, clk, logger, m, cfg.StayWindowDays)
	authSvc := service.NewAdminAuthService(adminRepo, cfg.JWTSecret, service.DefaultTokenTTL, clk)
	jobSvc := service.NewJobService(jobRepo, clk, logger, m)

	sweeper, err := jobSvc.Start(ctx, cfg.StaleBookingCron)
	if err != nil {
		return err
	}
	defer func() { <-sweeper.Stop().Done() }()

	router := api.NewRouter(api.RouterDeps{
		Users:       api.NewUserReservationHandler(validationSvc, reservationSvc, logger),
		Admin:       api.NewAdminHandler(adminSvc, scheduleSvc, logger),
		AdminAuth:   api.NewAdminAuthHandler(authSvc, logger),
		Tokens:      authSvc,
		DB:          rt.db,
		Gatherer:    prometheus.DefaultGatherer,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
