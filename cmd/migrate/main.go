package main

import (
	"context"
	"fmt"
	"os"

	"github.com/marcelsud/wallet-connector/config"
	"github.com/marcelsud/wallet-connector/wallet/postgres"
)

/* migrate creates the wallet_records table in PostgreSQL
 * Usage: go run cmd/migrate/main.go [--drop]
 * Reads POSTGRES_DSN from .env or the environment
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}
	if cfg.PostgresDSN == "" {
		fmt.Println("POSTGRES_DSN is required")
		os.Exit(1)
	}

	ctx := context.Background()
	repo, err := postgres.NewRepository(cfg.PostgresDSN)
	if err != nil {
		fmt.Printf("Error connecting to PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close(ctx)

	if len(os.Args) > 1 && os.Args[1] == "--drop" {
		if err := repo.DropTable(ctx); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println("Dropped wallet_records")
	}

	if err := repo.CreateTable(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println("wallet_records is ready")
}
