package main

import (
	"fmt"
	"log"
	"os"

	"github.com/wellnesslens/backend/config"
	httpDelivery "github.com/wellnesslens/backend/internal/delivery/http"
	"github.com/wellnesslens/backend/internal/infrastructure/modelgw"
	"github.com/wellnesslens/backend/internal/infrastructure/prefs"
	"github.com/wellnesslens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting WellnessLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	gateway := modelgw.NewClient(
		cfg.ModelGW.BaseURL,
		cfg.ModelGW.APIKey,
		cfg.ModelGW.SummarizerModel,
		cfg.ModelGW.PromptModel,
	)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		gateway.SetDebug(true)
		log.Printf("Model gateway debug mode enabled")
	}
	log.Printf("Model gateway: %s (summarizer: %s, prompt: %s)",
		cfg.ModelGW.BaseURL, cfg.ModelGW.SummarizerModel, cfg.ModelGW.PromptModel)

	profileStore := prefs.NewMemoryStore()

	// Initialize usecase layer
	orchestrator := usecase.NewOrchestrator(
		gateway,
		gateway,
		gateway,
		nil, // payloads are returned synchronously over HTTP
		usecase.OrchestratorConfig{
			CapabilityTimeout:  cfg.Analysis.CapabilityTimeout,
			EnableDebugLogging: cfg.Analysis.EnableDebugLogging,
		},
	)

	log.Printf("Analysis: capability_timeout=%s, debug=%v",
		cfg.Analysis.CapabilityTimeout, cfg.Analysis.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(orchestrator, gateway, profileStore)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
