package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"auction-house/internal/adapters/cli"
	"auction-house/internal/adapters/repl"
	"auction-house/internal/app"
	"auction-house/internal/core"
	"auction-house/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	lots := core.NewLotService(pool)
	svc := app.NewAppService(core.NewUserService(pool), lots, core.NewDisplayService(pool, lots))

	if len(os.Args) < 2 {
		if err := repl.Run(ctx, svc, os.Stdin, os.Stdout); err != nil {
			log.Fatalf("console: %v", err)
		}
		return
	}

	if err := cli.Run(ctx, svc, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, cli.Usage)
		}
		pool.Close()
		log.Fatalf("%v", err)
	}
}
