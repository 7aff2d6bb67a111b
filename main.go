package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/c14220110/poliklinik-dashboard/config"
	"github.com/c14220110/poliklinik-dashboard/internal/announcement"
	"github.com/c14220110/poliklinik-dashboard/internal/common/middlewares"
	dokterControllers "github.com/c14220110/poliklinik-dashboard/internal/dokter/controllers"
	dokterModels "github.com/c14220110/poliklinik-dashboard/internal/dokter/models"
	dokterServices "github.com/c14220110/poliklinik-dashboard/internal/dokter/services"
	manajemenControllers "github.com/c14220110/poliklinik-dashboard/internal/manajemen/controllers"
	manajemenServices "github.com/c14220110/poliklinik-dashboard/internal/manajemen/services"
	"github.com/c14220110/poliklinik-dashboard/internal/routes"
	"github.com/c14220110/poliklinik-dashboard/pkg/clinicapi"
	"github.com/c14220110/poliklinik-dashboard/pkg/storage/mariadb"
	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
	"github.com/c14220110/poliklinik-dashboard/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "poliklinik-dashboard",
		Short: "Dashboard antrian dokter dan pengelola data referensi",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the call_history table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.CallLogEnabled() {
				return fmt.Errorf("DB_HOST is not set")
			}
			ctx := cmd.Context()
			db, err := mariadb.Connect(ctx, cfg.DSN())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := mariadb.Migrate(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "call_history is up to date")
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for DOCTOR_PASSWORD_HASH or ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, _ := cmd.Flags().GetInt("cost")
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func runServer() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(cfg.AppEnv)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Riwayat panggilan (opsional)
	calls := dokterServices.CallLogRepository(dokterServices.NopCallLog{})
	if cfg.CallLogEnabled() {
		var db *sql.DB
		db, err = mariadb.Connect(ctx, cfg.DSN())
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to database")
			return err
		}
		defer db.Close()
		if err := mariadb.Migrate(ctx, db); err != nil {
			logger.Error().Err(err).Msg("failed to migrate database")
			return err
		}
		calls = dokterServices.NewMariaDBCallLog(db)
		logger.Info().Str("host", cfg.DBHost).Msg("connected to MariaDB, call history enabled")
	} else {
		logger.Info().Msg("DB_HOST not set, call history disabled")
	}

	api := clinicapi.NewClient(cfg.ClinicAPIBaseURL, cfg.ClinicAPITimeout)
	jm := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	hub := ws.NewHub(logger)

	var speaker announcement.Speaker
	if cfg.SpeechCommand != "" {
		speaker = &announcement.CommandSpeaker{Template: cfg.SpeechCommand}
	}
	var player announcement.Player
	if cfg.ChimeCommand != "" && cfg.ChimeFile != "" {
		player = &announcement.CommandPlayer{Command: cfg.ChimeCommand, File: cfg.ChimeFile}
	}
	announcer := announcement.NewAnnouncer(player, speaker, announcement.Options{
		PadWidth: cfg.AnnouncePadWidth,
		Observer: hub,
	}, logger)
	defer announcer.Close()

	store := dokterServices.NewDashboardStore()
	store.Subscribe(func(st dokterModels.DashboardState) {
		hub.Publish(ws.EventState, st)
	})

	queueService := dokterServices.NewQueueService(api, announcer, store, calls, dokterServices.QueueOptions{
		RepeatCooldown: cfg.RepeatCooldown,
	}, logger)
	consultationService := dokterServices.NewConsultationService(api, store, calls, cfg.SuggestionRPS, logger)
	consultationService.Subscribe(func(d *dokterModels.ConsultationDraft) {
		hub.Publish(ws.EventConsultation, d)
	})
	referenceService := manajemenServices.NewReferenceService(api, logger)

	if err := queueService.Initialize(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial dashboard load incomplete")
	}
	if err := referenceService.Initialize(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial reference load incomplete")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = utils.NewValidator()

	e.Use(middlewares.Recovery(logger))
	e.Use(middlewares.RequestID())
	e.Use(middlewares.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middlewares.RequestIDHeader},
	}))

	routes.Init(e, jm, routes.Handlers{
		Dokter:     dokterControllers.NewDokterController(dokterServices.NewDokterService(cfg.DoctorUsername, cfg.DoctorPasswordHash), jm),
		Antrian:    dokterControllers.NewAntrianController(queueService),
		Konsultasi: dokterControllers.NewKonsultasiController(consultationService, queueService),
		Management: manajemenControllers.NewManagementController(manajemenServices.NewManagementService(cfg.AdminUsername, cfg.AdminPasswordHash), jm),
		Referensi:  manajemenControllers.NewReferensiController(referenceService),
		Hub:        hub,
		Upgrader:   ws.NewUpgrader(cfg.CORSOrigins),
		Snapshot:   func() interface{} { return store.Snapshot() },
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		queueService.Watch(gctx, cfg.RefreshInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Str("clinic_api", cfg.ClinicAPIBaseURL).Msg("server berjalan")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
