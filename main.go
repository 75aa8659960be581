package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "pickupcore/internal/config"
	intdb "pickupcore/internal/db"
	"pickupcore/internal/events"
	router "pickupcore/internal/http"
	"pickupcore/internal/http/handlers"
	"pickupcore/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("Konfigurasi tidak valid: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	loc, err := env.Location()
	if err != nil {
		log.Fatalf("Zona waktu tidak valid: %v", err)
	}

	db, err := intconfig.ConnectDB(context.Background(), env.DSN(), env.Pool())
	if err != nil {
		log.Fatalf("Gagal koneksi database: %v", err)
	}
	defer intconfig.CloseDB()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	if err := intdb.EnsureSchema(schemaCtx, db); err != nil {
		cancelSchema()
		log.Fatalf("Gagal menyiapkan skema: %v", err)
	}
	cancelSchema()

	rdb, err := intconfig.ConnectRedis(env.RedisURL)
	if err != nil {
		log.Fatalf("Gagal koneksi Redis: %v", err)
	}

	clock := services.Clock{Loc: loc}
	hs := handlers.Handlers{
		DB:           db,
		Clock:        clock,
		Publisher:    events.NopPublisher{},
		Auth:         services.AuthService{DB: db, Secret: []byte(env.JWTSecret), TTL: env.JWTTTL, Clock: clock},
		PollInterval: env.DriverPollInterval,
	}
	if env.AdminUsername != "" {
		bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
		if err := hs.Auth.EnsureAdmin(bootCtx, env.AdminUsername, env.AdminPassword); err != nil {
			log.Printf("[AUTH] gagal membuat admin awal: %v", err)
		}
		cancelBoot()
	}
	if rdb != nil {
		defer rdb.Close()
		feed := events.RedisPublisher{Client: rdb}
		hs.Publisher = feed
		hs.Subscriber = feed
	}

	r := router.NewRouter(env, hs)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server berjalan di http://localhost%s (zona waktu %s)", env.AppAddr, loc)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Gagal menjalankan server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Mematikan server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Shutdown server gagal: %v", err)
	}

	log.Println("Server berhenti dengan aman.")
}
