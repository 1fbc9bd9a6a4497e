package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/wallet-connector/config"
	"github.com/marcelsud/wallet-connector/internal/bootstrap"
	"github.com/marcelsud/wallet-connector/request"
)

/* cli runs one synchronous extraction for a user and prints the result
 * Usage: go run cmd/cli/main.go <user-id>
 */

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: cli <user-id>")
		os.Exit(2)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx := context.Background()

	logger := httplog.NewLogger("wallet-connector-cli", httplog.Options{
		JSON: true,
	})
	connector, err := bootstrap.NewConnector(ctx, cfg, logger)
	if err != nil {
		fmt.Println(err)
		return
	}
	acc, err := connector.Manager.Accept(ctx, request.Input{UserID: os.Args[1]})
	connector.Close(ctx)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(acc.Result, "", "  ")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("request %s\n%s\n", acc.RequestID, out)
}
