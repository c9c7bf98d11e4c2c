package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equipment-inventory/core/loader"
	"equipment-inventory/core/logger"
	"equipment-inventory/core/metrics"
	"equipment-inventory/core/middleware/auth"
	"equipment-inventory/core/middleware/rayid"
	"equipment-inventory/feature/equipment"
	"equipment-inventory/feature/export"
	equipSync "equipment-inventory/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "equipment-inventory/docs/swagger"
)

// @title Equipment Inventory API
// @version 1.0
// @description API for managing equipment and synchronizing the local and remote inventories.
// @host localhost:3000
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory server",
	Long: `Starts the HTTP server, the background synchronization scheduler and
all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logg, err := loadRuntime()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStores(ctx, cfg, logg, false)
		if err != nil {
			logg.Fatal("Failed to open local store", zap.Error(err))
		}
		defer st.Close()

		reg := metrics.NewRegistry()
		publisher := newPublisher(cfg, logg)
		defer publisher.Close()

		syncSvc := equipSync.NewService(st.Local, st.Remote, cfg.Sync, publisher, equipSync.NewMetrics(reg), logg)

		equipmentFeature := equipment.NewFeature(st.Local, logg)
		if syncSvc.Enabled() {
			equipmentFeature.Service().Guard(syncSvc.WriteLocker())
		}
		if cfg.Sync.OnWrite && syncSvc.Enabled() {
			equipmentFeature.Service().OnWrite(func(reason string) {
				syncSvc.Trigger(ctx, reason)
			})
		}

		exportSvc, err := newExportService(ctx, cfg, st.Local, logg)
		if err != nil {
			logg.Warn("Object storage unavailable, exports disabled", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID first so every log line carries it.
		app.Use(rayid.New())
		app.Use(logger.Middleware(logg))

		app.Get("/swagger/*", swagger.HandlerDefault)
		metrics.Register(app, reg)

		if cfg.Server.StaticDir != "" {
			app.Static("/", cfg.Server.StaticDir)
		}

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		mgr := loader.NewManager(logg)
		mgr.Register(equipmentFeature)
		mgr.Register(equipSync.NewFeature(syncSvc, cfg.Sync, logg))
		mgr.Register(export.NewFeature(exportSvc, cfg.Export, logg))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		scheduler := equipSync.NewScheduler(syncSvc, cfg.Sync, logg)
		scheduler.Start(ctx)

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		<-ctx.Done()
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}

		select {
		case <-scheduler.Done():
		case <-time.After(10 * time.Second):
			logg.Warn("Sync scheduler did not stop in time")
		}

		// triggered passes still use the stores closed on return
		waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := syncSvc.Wait(waitCtx); err != nil {
			logg.Warn("Triggered sync passes did not stop in time", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
