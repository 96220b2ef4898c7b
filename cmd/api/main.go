package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aitio.org/internal/access"
	"aitio.org/internal/googleauth"
	"aitio.org/internal/httpapi"
	"aitio.org/internal/mail"
	"aitio.org/internal/obs"
	"aitio.org/internal/store/pg"
)

var version = "0.3.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("AITIO_COMMIT"))

	var (
		store access.Store
		probe httpapi.ReadyProbe
	)
	if dsn := os.Getenv("AITIO_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		// No DSN: volatile in-memory store, for development only.
		log.Println("AITIO_PG_DSN not set, using in-memory store")
		store = access.NewMemStore()
	}

	var opts []access.Option
	if os.Getenv("AITIO_PASSWORD_HASHER") == "bcrypt" {
		opts = append(opts, access.WithHasher(access.NewBcryptHasher()))
	}
	svc, err := access.NewService(store, opts...)
	if err != nil {
		log.Fatalf("access service: %v", err)
	}

	var sender mail.Sender = mail.LogSender{}
	if addr := os.Getenv("AITIO_SMTP_ADDR"); addr != "" {
		sender = mail.NewSMTPSender(addr,
			os.Getenv("AITIO_SMTP_USERNAME"),
			os.Getenv("AITIO_SMTP_PASSWORD"))
	}

	var verifier googleauth.Verifier
	if clientID := os.Getenv("AITIO_GOOGLE_CLIENT_ID"); clientID != "" {
		verifier = googleauth.NewTokeninfoVerifier(clientID)
	}

	api := httpapi.New(httpapi.Config{
		Service:  svc,
		Verifier: verifier,
		Mailer:   sender,
		Ready:    probe,
		Version:  version,
		MailFrom: os.Getenv("AITIO_MAIL_FROM"),
	})

	addr := os.Getenv("AITIO_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting aitio-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
