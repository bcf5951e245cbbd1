package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-logr/logr"

	"github.com/minionworks/salt-mcp/internal/config"
	"github.com/minionworks/salt-mcp/internal/logging"
	"github.com/minionworks/salt-mcp/internal/saltapi"
)

// saltstatus is a deployment smoke check: it authenticates against the
// configured salt-api endpoint and prints the reachability of every
// registered minion. Exit code 1 means the endpoint is unusable as
// configured.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	config.Init(nil)

	fmt.Println("salt-api Connection Status:")
	fmt.Println("===========================")
	fmt.Printf("📍 Endpoint: %s (eauth: %s)\n\n", config.SaltAPIURL(), config.SaltAPIEauth())

	cfg, err := saltapi.LoadConfig()
	if err != nil {
		fmt.Printf("❌ Configuration invalid: %v\n", err)
		os.Exit(1)
	}
	client, err := saltapi.New(cfg, logging.New(logr.Discard()))
	if err != nil {
		fmt.Printf("❌ Configuration invalid: %v\n", err)
		os.Exit(1)
	}

	if _, err := client.Authenticate(ctx); err != nil {
		fmt.Printf("❌ Authentication failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Authentication successful")

	status, err := client.MinionStatus(ctx)
	if err != nil {
		fmt.Printf("❌ Minion status failed: %v\n", err)
		os.Exit(1)
	}

	ids := make([]string, 0, len(status))
	for id := range status {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	up := 0
	for _, id := range ids {
		marker := "❌"
		if status[id] {
			marker = "✅"
			up++
		}
		fmt.Printf("  %s %s\n", marker, id)
	}
	fmt.Printf("\n%d minions registered, %d up, %d down\n", len(status), up, len(status)-up)
}
