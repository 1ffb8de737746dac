package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"go-hazardwatch/auth"
	"go-hazardwatch/cronjobs"
	"go-hazardwatch/lifecycle"
	"go-hazardwatch/mlmodel"
	"go-hazardwatch/notify"
	"go-hazardwatch/routes"
	"go-hazardwatch/store"
	"go-hazardwatch/uploads"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func buildStore() store.Store {
	if os.Getenv("STORE_BACKEND") == "firestore" {
		client, err := store.InitFirestoreClient(context.Background())
		if err != nil {
			log.Fatalf("Failed to initialize Firestore: %v", err)
		}
		log.Println("Using Firestore report store")
		return store.NewFirestoreStore(client)
	}

	fs, err := store.NewFileStore(envOr("DATA_DIR", "data"))
	if err != nil {
		log.Fatalf("Failed to initialize report store: %v", err)
	}
	log.Println("Using flat-file report store")
	return fs
}

func buildClassifier() mlmodel.Classifier {
	if os.Getenv("CLASSIFIER_BACKEND") == "openai" {
		log.Println("Using OpenAI text classifier backend")
		return mlmodel.NewOpenAIClassifier(os.Getenv("OPENAI_API_KEY"))
	}

	timeout := mlmodel.DefaultTimeout
	if raw := os.Getenv("CLASSIFIER_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid CLASSIFIER_TIMEOUT %q: %v", raw, err)
		}
		timeout = d
	}
	url := envOr("CLASSIFIER_URL", "http://127.0.0.1:8000/verify-hazard")
	log.Printf("Using hazard model classifier at %s (timeout %s)", url, timeout)
	return mlmodel.NewHazardModel(url, timeout)
}

func buildNotifier() notify.Notifier {
	raw := os.Getenv("NOTIFY_URLS")
	if raw == "" {
		log.Println("NOTIFY_URLS not set, notifications will be logged only")
		return notify.LogNotifier{}
	}
	n, err := notify.NewShoutrrrNotifier(strings.Split(raw, ","))
	if err != nil {
		log.Fatalf("Failed to initialize notifier: %v", err)
	}
	return n
}

func main() {
	// Load .env file; absence is fine in production where env is injected.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	st := buildStore()
	defer store.CloseFirestoreClient()

	up, err := uploads.NewStorage(envOr("UPLOADS_DIR", "uploads"))
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	classifier := buildClassifier()
	manager := lifecycle.NewManager(st, buildNotifier())
	verifier := auth.NewVerifier(secret)

	cronjobs.InitCronJobs(st, up)

	r := routes.SetupRouter(st, classifier, up, manager, verifier)
	addr := ":" + envOr("PORT", "3001")
	log.Printf("Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
