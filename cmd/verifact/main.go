// cmd/verifact/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	fmt.Println(AppName + " v" + VERSION + " starting up...")

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := InitLogger(cfg.LogPath, cfg.LogLevel); err != nil {
		log.Printf("Warning: file logging unavailable: %v", err)
	}

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		Logger().Warning("Failed to create cache directory: %v", err)
	}

	// Shared in-memory cache: fetcher results, tag memoization, session
	// model name
	memory := NewCache(FetchCacheTTL, MemoryCacheMaxItems)

	var client ModelClient
	if cfg.OpenAIAPIKey != "" {
		client = NewModelClient(cfg.OpenAIAPIKey)
	} else {
		Logger().Error("OPENAI_API_KEY not set; verification requests will fail")
	}

	store := NewResultStore(cfg.CacheDir)
	resolver := NewModelResolver(client, NewModelCache(cfg.CacheDir), memory, cfg.KnownModels)
	fetcher := NewNewsFetcher(cfg, memory)

	verifier := NewVerifier(cfg, client, resolver, fetcher, store, memory)
	if verifier.Ready() {
		Logger().Info("Using model: %s", verifier.ModelName())
	}

	scheduler := StartScheduler(store, memory)

	var server interface {
		Shutdown(ctx context.Context) error
	}
	if cfg.EnableAPI {
		server = StartAPIServer(cfg.APIPort, verifier, store)
	}

	// Block until termination
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	Logger().Info("Shutting down...")

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			Logger().Warning("API server shutdown: %v", err)
		}
		cancel()
	}

	<-scheduler.Stop().Done()
	_ = Logger().Close()
}
