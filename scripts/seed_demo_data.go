package main

import (
	"log"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/infrastructure/database"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/config"
)

// Seeds a couple of users with linked tracker accounts so bulk-approve
// can exercise assignee resolution locally. Run with:
//
//	go run scripts/seed_demo_data.go
func main() {
	log.Println("🚀 Seeding demo data...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	seedUsers := []struct {
		name    string
		email   string
		account string
	}{
		{"Anna Kowalska", "anna.kowalska@example.com", "5b10ac8d82e05b22cc7d4ef5"},
		{"Bob Nowak", "bob.nowak@example.com", "5b10ac8d82e05b22cc7d4ef6"},
		{"Charlie Wetherton", "charlie.wetherton@example.com", ""},
	}

	for _, s := range seedUsers {
		user := entities.NewUser(s.name)
		email := s.email
		user.Email = &email
		if s.account != "" {
			account := s.account
			user.JiraAccountID = &account
		}

		result := db.Where("display_name = ?", s.name).FirstOrCreate(user)
		if result.Error != nil {
			log.Printf("⚠️  Failed to seed user %s: %v", s.name, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			log.Printf("✅ Created user %s", s.name)
		} else {
			log.Printf("⏭️ User %s already exists", s.name)
		}
	}

	log.Println("✅ Demo data ready")
}
