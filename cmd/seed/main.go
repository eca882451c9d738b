// Command seed fills a development database with fake users, ads and comments.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/config"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/database"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/seed"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/service"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of users to create")
	adsPerUser := flag.Int("ads", 3, "Ads per user")
	commentsPerAd := flag.Int("comments", 2, "Comments per ad")
	shouldClean := flag.Bool("clean", false, "Delete existing users, ads and comments first")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	hash, err := service.NewBcryptHasher().Hash(seed.DefaultPassword)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	_, err = seed.NewSeeder(db).Run(context.Background(), seed.Options{
		Users:         *numUsers,
		AdsPerUser:    *adsPerUser,
		CommentsPerAd: *commentsPerAd,
		Clean:         *shouldClean,
		Seed:          *randomSeed,
	}, hash)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
