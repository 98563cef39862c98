package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"portfolio-assistant/controllers"
	"portfolio-assistant/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using system environment variables only")
	}

	providerFlag := flag.String("provider", os.Getenv("ASSISTANT_PROVIDER"), "generation provider: gemini or anthropic")
	modeFlag := flag.String("mode", os.Getenv("ASSISTANT_MODE"), "response contract: plain or structured")
	enableDiscord := flag.Bool("discord", false, "enable the Discord front-end")
	flag.Parse()

	mode := services.ParseMode(*modeFlag)
	generator := services.NewGenerator(*providerFlag)
	knowledgeBase := services.LoadKnowledgeBase(mode)
	sink := services.NewWebhookLeadSink()
	assistant := services.NewAssistant(generator, sink, knowledgeBase, mode)

	controller := controllers.NewController(assistant, newRateLimiter())
	if err := controller.StartServices(*enableDiscord); err != nil {
		log.Printf("Failed to start background services: %v", err)
	}
	defer controller.StopServices()

	router := mux.NewRouter()
	router.HandleFunc("/chat", controller.ChatHandler).Methods(http.MethodPost)
	router.HandleFunc("/chat", controller.ChatStatusHandler).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	handler := corsHandler.Handler(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	log.Printf("Portfolio assistant listening on %s (provider=%s, mode=%s)", port, generator.Name(), mode)
	if err := http.ListenAndServe(port, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// newRateLimiter picks the shared Redis counter when REDIS_URL is configured,
// otherwise the per-instance in-memory window.
func newRateLimiter() services.RateLimiter {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return services.NewMemoryRateLimiter()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Invalid REDIS_URL, falling back to in-memory rate limiting: %v", err)
		return services.NewMemoryRateLimiter()
	}
	log.Printf("Using Redis rate limit store at %s", opts.Addr)
	return services.NewRedisRateLimiter(redis.NewClient(opts))
}
