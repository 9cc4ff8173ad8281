// Command eduai runs the learning companion agent behind a WebSocket
// gateway.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhiabhi150614/edu-ai-pro/agent"
	"github.com/abhiabhi150614/edu-ai-pro/capability"
	"github.com/abhiabhi150614/edu-ai-pro/config"
	"github.com/abhiabhi150614/edu-ai-pro/gateway"
	"github.com/abhiabhi150614/edu-ai-pro/memory"
	"github.com/abhiabhi150614/edu-ai-pro/memory/persist/sqlite"
	"github.com/abhiabhi150614/edu-ai-pro/memory/semantic"
	"github.com/abhiabhi150614/edu-ai-pro/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[MAIN] Config error: %v", err)
	}

	storeOpts := []memory.StoreOption{}
	if cfg.SemanticRecall {
		storeOpts = append(storeOpts, memory.WithRecaller(semantic.NewIndex(semantic.NewHashEmbedder())))
	}

	var persistStore *sqlite.Store
	if cfg.DatabasePath != "" {
		persistStore, err = sqlite.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("[MAIN] Database error: %v", err)
		}
		defer persistStore.Close()

		graph, err := persistStore.LoadGraph(context.Background())
		if err != nil {
			log.Fatalf("[MAIN] Graph restore error: %v", err)
		}
		storeOpts = append(storeOpts, memory.WithGraph(graph))
		log.Printf("[MAIN] Restored knowledge graph with %d edges", graph.EdgeCount())
	}

	store := memory.NewStore(&memory.Config{
		WindowSize:   cfg.WindowSize,
		MaxNeighbors: cfg.MaxNeighbors,
		MaxEvents:    cfg.MaxEvents,
	}, storeOpts...)

	notes := newMemoryNotes()
	registry := capability.NewRegistry()
	defs := capability.DefaultDefinitions(capability.Providers{
		Resources:   searchLinkProvider{},
		Notes:       notes,
		Progress:    notesProgress{notes: notes},
		Assessments: templateAssessments{},
	})
	for _, def := range defs {
		if !def.SideEffecting {
			cached, err := capability.NewCachedAdapter(def.Name, def.Adapter, 0)
			if err != nil {
				log.Fatalf("[MAIN] Cache error for %s: %v", def.Name, err)
			}
			def.Adapter = cached
		}
		if err := registry.Register(def); err != nil {
			log.Fatalf("[MAIN] Registry error: %v", err)
		}
	}
	log.Printf("[MAIN] Registered capabilities: %v", registry.Names())

	service := router.NewAnthropicService(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens)
	a := agent.New(store, router.New(service, registry), registry, agent.Options{
		ContextBudget:   cfg.ContextBudget,
		SynthesisBudget: cfg.SynthesisBudget,
	})
	defer a.Close()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: gateway.New(a).Handler(),
	}

	go func() {
		log.Printf("[MAIN] Listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[MAIN] Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Printf("[MAIN] Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[MAIN] Shutdown error: %v", err)
	}

	if persistStore != nil {
		if err := persistStore.SaveGraph(shutdownCtx, store.Graph()); err != nil {
			log.Printf("[MAIN] Graph persist error: %v", err)
		} else {
			log.Printf("[MAIN] Knowledge graph persisted")
		}
	}
}
