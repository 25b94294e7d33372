// seed loads demo staff accounts and a short catalogue so the saleroom
// screens have something to show. Existing rows are left as they are.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"auction-house/internal/db"
)

// seedPassword is the password of every demo account.
const seedPassword = "hammer-time"

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding staff accounts...")
	_, err = tx.Exec(ctx, `
		INSERT INTO users (username, display_name, password_hash, role)
		VALUES
		    ('admin',      'Saleroom Admin', $1, 'admin'),
		    ('auctioneer', 'Rostrum',        $1, 'auctioneer'),
		    ('clerk',      'Sale Clerk',     $1, 'clerk')
		ON CONFLICT (username) DO NOTHING;
	`, string(hash))
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Println("Seeding catalogue...")
	_, err = tx.Exec(ctx, `
		INSERT INTO lots (lot_number, title, description, estimate_low, estimate_high)
		VALUES
		    (1, 'George III mahogany bureau',  'Fall front, fitted interior.', 400, 600),
		    (2, 'Pair of brass candlesticks',  '',                             60,  90),
		    (3, 'Victorian walnut mantel clock','Eight-day movement.',         150, 250),
		    (4, 'Oil on canvas, harbour scene','Signed lower right.',          800, 1200),
		    (5, 'Box of assorted books',       '',                             0,   0)
		ON CONFLICT (lot_number) DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to seed lots: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Printf("Seed data loaded. Demo accounts use the password %q.", seedPassword)
}
