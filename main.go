package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"warelay/app/client/gemini"
	"warelay/app/client/openrouter"
	"warelay/app/client/whatsapp"
	"warelay/app/config"
	"warelay/app/service/dispatch"
	"warelay/app/service/history"
	"warelay/app/service/queue"
	"warelay/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, whatsapp.NewClient)
	do.Provide(di, history.New)
	do.Provide(di, queue.New)
	do.Provide(di, func(di *do.Injector) (dispatch.Generator, error) {
		switch cfg.Generator.Provider {
		case "openai":
			return openrouter.NewClient(di)
		default:
			return gemini.NewClient(di)
		}
	})
	do.Provide(di, func(di *do.Injector) (dispatch.Transport, error) {
		return do.MustInvoke[*whatsapp.Client](di), nil
	})
	do.Provide(di, dispatch.New)

	waClient := do.MustInvoke[*whatsapp.Client](di)

	// Generator credentials are checked here, before any message is handled.
	dispatchSvc, err := do.Invoke[*dispatch.Service](di)
	if err != nil {
		log.Fatalf("dispatcher init failed: %v", err)
	}

	waClient.SetHandler(func(senderID, body string) {
		if err := dispatchSvc.HandleMessage(appCtx, senderID, body); err != nil {
			slog.Error("Failed to handle message",
				"sender", senderID,
				"error", err,
			)
		}
	})

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	g, runCtx := errgroup.WithContext(appCtx)

	g.Go(func() error {
		do.MustInvoke[*queue.Service](di).Run(runCtx)
		return nil
	})

	g.Go(func() error {
		return waClient.Run()
	})

	g.Go(func() error {
		<-runCtx.Done()
		return waClient.Shutdown()
	})

	if err = g.Wait(); err != nil {
		slog.Error("Service stopped", "error", err)
	}
}
