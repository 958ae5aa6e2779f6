package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rehiy/goform-simulator/config"
	"github.com/rehiy/goform-simulator/database"
	"github.com/rehiy/goform-simulator/events"
	"github.com/rehiy/goform-simulator/logger"
	"github.com/rehiy/goform-simulator/router"
	"github.com/rehiy/goform-simulator/sched"
	"github.com/rehiy/goform-simulator/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	config.Flags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(config.WithDefaults(), config.WithEnv(), config.WithFlags(fs))
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.S()

	// 归档只保存在内存中
	if cfg.Archive {
		if err := database.InitDB(database.MemoryDSN("goform")); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()

		if cfg.Webhook {
			if err := database.SetWebhookEnabled(true); err != nil {
				return err
			}
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rnd := rand.New(rand.NewPCG(seed, seed>>1|1))

	sim := service.NewSimulator(sched.New(log), rnd, service.Options{
		Tick:          cfg.Tick,
		AdminPassword: cfg.AdminPassword,
	}, log)

	el := events.NewEventListener()
	smsdb := service.NewSmsdbService()
	webhook := service.NewWebhookService()
	sim.Subscribe(el)
	if cfg.Archive {
		sim.Subscribe(smsdb)
		sim.Subscribe(webhook)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		sim.Run(ctx)
	}()

	if cfg.Updater {
		sim.Start()
	}

	srv := &http.Server{
		Addr: cfg.BindAddress,
		Handler: router.Apply(router.Deps{
			Simulator: sim,
			Events:    el,
			Smsdb:     smsdb,
			Webhook:   webhook,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("[main] goform simulator listening on %s (seed %d)", cfg.BindAddress, seed)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stop()
		<-done
		return fmt.Errorf("server failed: %w", err)
	}

	log.Infof("[main] shutting down")
	sim.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("[main] shutdown: %v", err)
	}

	<-done
	webhook.Wait()
	return nil
}
