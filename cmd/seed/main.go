// Command main fills the posts table with fake data for development.
package main

import (
	"context"
	"flag"
	"os"

	"postboard/internal/bootstrap"
	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/middleware"
	"postboard/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 30, "Number of posts to create")
	shouldClean := flag.Bool("clean", false, "Delete existing posts before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed for reproducible content (0 = random)")
	flag.Parse()

	middleware.Logger.Info("Database seeder", "posts", *numPosts, "clean", *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipRedis: true})
	if err != nil {
		middleware.Logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.EnsureSchema(db); err != nil {
		middleware.Logger.Error("Failed to ensure schema", "error", err)
		os.Exit(1)
	}

	s := seed.NewSeeder(db, seed.Options{Posts: *numPosts, Seed: *seedValue})
	if *shouldClean {
		if err := s.Clean(ctx); err != nil {
			middleware.Logger.Error("Cleanup failed", "error", err)
			os.Exit(1)
		}
	}

	if _, err := s.SeedPosts(ctx); err != nil {
		middleware.Logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	middleware.Logger.Info("All done")
}
