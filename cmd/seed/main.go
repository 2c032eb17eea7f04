// Command seed fills the database with demo members and posts.
package main

import (
	"flag"
	"log"

	"clubboard/internal/config"
	"clubboard/internal/database"
	"clubboard/internal/seed"
)

func main() {
	members := flag.Int("members", 20, "Number of members to create")
	posts := flag.Int("posts", 30, "Number of posts to create")
	clean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "YAML fixture to load instead of generated data")
	seedValue := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, *seedValue)
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	if *clean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if *fixture != "" {
		log.Printf("Loading fixture %s", *fixture)
		f, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("❌ Fixture load failed: %v", err)
		}
		if err := s.ApplyFixture(f); err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
	} else {
		log.Printf("Target: %d members, %d posts, clean=%v", *members, *posts, *clean)
		if err := s.Run(seed.Options{Members: *members, Posts: *posts}); err != nil {
			log.Fatalf("❌ Seeding failed: %v", err)
		}
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All seeded accounts have the password: %s", seed.DefaultPassword)
}
