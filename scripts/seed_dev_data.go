//go:build ignore

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Seeds a local database with the standard plan catalog and one demo
// profile. Run with: go run scripts/seed_dev_data.go

type planSeed struct {
	name         string
	minDeposit   string
	maxDeposit   string
	dailyReturn  string
	durationDays int
}

var planSeeds = []planSeed{
	{"Starter", "50", "999", "0.5", 14},
	{"Growth", "1000", "9999", "1.0", 30},
	{"Premium", "10000", "100000", "1.5", 60},
}

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, p := range planSeeds {
		_, err := db.ExecContext(ctx, `
			INSERT INTO plans (id, name, min_deposit, max_deposit, daily_return, duration_days, bonus_percentage, description)
			VALUES ($1, $2, $3, $4, $5, $6, 0, '')
			ON CONFLICT DO NOTHING
		`, uuid.New(), p.name, p.minDeposit, p.maxDeposit, p.dailyReturn, p.durationDays)
		if err != nil {
			log.Fatalf("Failed to seed plan %s: %v", p.name, err)
		}
		fmt.Printf("✓ Plan %s\n", p.name)
	}

	demoID := uuid.New()
	_, err = db.ExecContext(ctx, `
		INSERT INTO profiles (id, full_name, balance, profit, bonus, ref_bonus)
		VALUES ($1, 'Demo User', 5000, 0, 0, 0)
	`, demoID)
	if err != nil {
		log.Fatalf("Failed to seed demo profile: %v", err)
	}
	fmt.Printf("✓ Demo profile %s\n", demoID)

	fmt.Println("\n✅ Dev data seeded")
}
