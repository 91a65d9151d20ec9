package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/sellaris/payments/internal/config"
	pg "github.com/sellaris/payments/internal/infra/db/postgres"
	"github.com/sellaris/payments/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	pkgRepo := pg.NewPackageRepo(pool)
	pkgUC := usecase.NewPackageUseCase(pkgRepo)

	// If packages already exist, do nothing
	packages, err := pkgUC.List(ctx)
	if err != nil {
		log.Fatalf("list packages: %v", err)
	}
	if len(packages) > 0 {
		fmt.Printf("%d packages already present. No changes.\n", len(packages))
		for _, p := range packages {
			fmt.Printf("  - %s (years=%d, price=%d IDR)\n", p.Name, p.DurationYears, p.Price)
		}
		return
	}

	// Seed sample packages for testing the checkout flow
	seed := []struct {
		Name  string
		Years int
		Price int64
		Desc  string
	}{
		{"Starter", 1, 150_000, "Single store, basic reports"},
		{"Business", 1, 690_000, "Up to five stores, full reports"},
		{"Enterprise", 2, 1_890_000, "Unlimited stores, priority support"},
	}

	for _, s := range seed {
		p, err := pkgUC.Create(ctx, s.Name, s.Years, s.Price, s.Desc)
		if err != nil {
			log.Fatalf("create package %q: %v", s.Name, err)
		}
		fmt.Printf("created %s (%s)\n", p.Name, p.ID)
	}
}
