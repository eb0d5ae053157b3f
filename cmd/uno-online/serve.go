package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/kerimbalci/uno-online/internal/cache"
	"github.com/kerimbalci/uno-online/internal/database"
	"github.com/kerimbalci/uno-online/internal/game"
	"github.com/kerimbalci/uno-online/internal/ws"
)

func serve(ctx context.Context, cfg *Config) error {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	registry := game.NewRegistry(rand.New(rand.NewSource(time.Now().UnixNano())))
	hub := ws.NewHub(log)
	dispatcher := game.NewDispatcher(registry, hub, log)

	if cfg.redisURL != "" {
		historian, err := cache.New(ctx, cfg.redisURL, log)
		if err != nil {
			return fmt.Errorf("connecting action historian: %w", err)
		}
		defer historian.Close()
		dispatcher.Historian = historian
		log.Info("action historian enabled")
	}

	if cfg.postgresDSN != "" {
		store, err := database.Connect(ctx, cfg.postgresDSN)
		if err != nil {
			return fmt.Errorf("connecting match-result store: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("preparing match-result schema: %w", err)
		}
		dispatcher.Store = store
		log.Info("match-result store enabled")
	}

	wsServer := ws.NewServer(hub, dispatcher, log)

	router := httprouter.New()
	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	router.GET("/ws", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		wsServer.ServeWS(w, r)
	})
	router.GET("/join/:code/qr", joinQRHandler(cfg, dispatcher))

	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// joinQRHandler serves a QR code pointing a phone at the join URL for a
// live room.
func joinQRHandler(cfg *Config, dispatcher *game.Dispatcher) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("code")
		if !dispatcher.RoomExists(code) {
			http.NotFound(w, r)
			return
		}

		base := cfg.publicURL
		if base == "" {
			base = "http://" + r.Host
		}
		png, err := qrcode.Encode(base+"/?room="+code, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to generate QR code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}
