package builder

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/interview-mentor/internal/capability/camera"
	"github.com/futig/interview-mentor/internal/console"
	"github.com/futig/interview-mentor/internal/usecase/interview"
	"go.uber.org/zap"
)

// App represents the application with all its components
type App struct {
	console        *console.Console
	interview      *interview.InterviewUsecase
	camera         *camera.Camera
	shutdownTracer func(context.Context) error
	logger         *zap.Logger
}

// Run acquires the camera, serves the console and releases everything on exit
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.camera != nil {
		if err := a.camera.Start(ctx); err != nil {
			// Posture feedback is optional; the interview works without it.
			a.logger.Warn("camera unavailable, continuing without posture feedback", zap.Error(err))
		}
	}

	// Run console in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- a.console.Run(ctx)
	}()

	// Wait for interrupt signal or console exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case runErr = <-errChan:
		if runErr != nil {
			a.logger.Error("Console error", zap.Error(runErr))
		}
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown stops the session and releases devices
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.logger.Info("Shutting down")

	a.interview.Close()

	if a.camera != nil {
		if err := a.camera.Stop(); err != nil {
			a.logger.Warn("Camera stop error", zap.Error(err))
		}
	}

	var err error
	if a.shutdownTracer != nil {
		if err = a.shutdownTracer(ctx); err != nil {
			a.logger.Error("Tracer shutdown error", zap.Error(err))
		}
	}

	a.logger.Info("Application stopped gracefully")
	_ = a.logger.Sync()
	return err
}
