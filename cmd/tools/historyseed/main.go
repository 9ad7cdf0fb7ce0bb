package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joho/godotenv"

	"github.com/hireprep/hireprep/backend/internal/config"
	"github.com/hireprep/hireprep/backend/internal/storage"
)

// Seeds a sqlite history database with sample sessions so the history
// endpoints have something to show during local development.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	dbPath := flag.String("db", cfg.History.SQLitePath, "sqlite database file to seed")
	feature := flag.String("feature", "resume", "feature partition: resume, posture, attire or interview")
	owner := flag.String("owner", "dev-user", "owner id the seeded sessions belong to")
	count := flag.Int("count", 5, "number of sessions to insert")
	spread := flag.Duration("spread", 24*time.Hour, "time window the seeded timestamps spread over")
	timeout := flag.Duration("timeout", 15*time.Second, "per-insert timeout")
	flag.Parse()

	if *count < 1 {
		log.Fatal("count must be at least 1")
	}

	backend, err := storage.OpenSQLite(*dbPath, *feature)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *dbPath, err)
	}
	defer backend.Close()

	for i := 0; i < *count; i++ {
		age := time.Duration(rand.Int63n(int64(*spread)))
		ts := time.Now().Add(-age).UTC()
		fields := map[string]any{
			"score":     float64(40 + rand.Intn(61)),
			"feedback":  fmt.Sprintf("Seeded %s session %d of %d", *feature, i+1, *count),
			"timestamp": ts.Format(time.RFC3339),
			"seeded":    true,
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		id, err := backend.Persist(ctx, *owner, fields)
		cancel()
		if err != nil {
			log.Fatalf("insert %d failed: %v", i+1, err)
		}
		log.Printf("inserted %s session id=%s owner=%s", *feature, id, *owner)
	}

	log.Printf("seeded %d %s sessions into %s", *count, *feature, *dbPath)
}
