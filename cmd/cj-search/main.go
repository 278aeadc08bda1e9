package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/cj"
	"github.com/zahrastore/storeapi/internal/config"
	"github.com/zahrastore/storeapi/internal/repository/postgres"
)

// Quick probe of the CJ token flow and product search against the live API.
func main() {
	keyword := flag.String("keyword", "", "Product name keyword to search for")
	page := flag.Int("page", 1, "Result page")
	size := flag.Int("size", 10, "Page size")
	country := flag.String("country", "", "Warehouse country code filter (e.g. US)")
	flag.Parse()

	if *keyword == "" {
		fmt.Println("Usage: go run cmd/cj-search/main.go --keyword \"desk lamp\" [--page 1] [--size 10] [--country US]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	client := cj.NewClient(cfg.CJ, repos.TokenCache, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := client.SearchProducts(ctx, cj.SearchParams{
		Keyword:     *keyword,
		Page:        *page,
		Size:        *size,
		CountryCode: *country,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Total hits: %d\n\n", result.Total)
	for _, p := range result.List {
		fmt.Printf("%-20s %-40s sell=%.2f sku=%s warehouse=%s\n",
			p.ProductID, truncate(p.Name, 40), p.SellPrice, p.SKU, p.WarehouseID)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
