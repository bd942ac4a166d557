// Command seed fills a development database with teams and generated community data.
package main

import (
	"context"
	"flag"
	"os"

	"kbomate/internal/config"
	"kbomate/internal/database"
	"kbomate/internal/middleware"
	"kbomate/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 30, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of mate posts to create")
	shouldClean := flag.Bool("clean", false, "Delete community data before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for generated content (0 = time based)")
	flag.Parse()

	log := middleware.Logger

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.IsProduction() {
		log.Error("refusing to seed a production database")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	res, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		RandSeed:    *randSeed,
	})
	if err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	log.Info("database populated", "users", res.Users, "posts", res.Posts, "password", seed.DefaultPassword)
}
