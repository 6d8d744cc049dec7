// Command main runs the database seeder for Friendmarket.
package main

import (
	"context"
	"flag"
	"log"

	"friendmarket/internal/config"
	"friendmarket/internal/database"
	"friendmarket/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numQuestions := flag.Int("questions", defaults.NumQuestions, "Number of questions to create")
	notesPerQuestion := flag.Int("notes", defaults.NotesPerQuestion, "Maximum notes attached to each question")
	maxDays := flag.Int("days", defaults.MaxDays, "Spread post dates over this many past days")
	randomSeed := flag.Int64("seed", 0, "Random seed for a reproducible data set (0 = clock)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d questions, clean=%v\n", *numUsers, *numQuestions, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{
		NumUsers:         *numUsers,
		NumQuestions:     *numQuestions,
		NotesPerQuestion: *notesPerQuestion,
		MaxDays:          *maxDays,
		RandomSeed:       *randomSeed,
	})
	if err != nil {
		log.Fatalf("❌ Seeder setup failed: %v", err)
	}

	ctx := context.Background()
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(ctx); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
