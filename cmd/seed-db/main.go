// Command seed-db creates the drinks schema and loads drinks from a JSON
// file. Files ending in .gz are decompressed on the fly.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"

	"github.com/xenking/drinks-api/internal/app"
	"github.com/xenking/drinks-api/internal/domain/drink"
)

func main() {
	var (
		storage    app.StorageConfig
		drinksFile string
		reset      bool
	)

	flag.StringVar(&storage.Driver, "driver", app.DriverPostgres, "storage driver: postgres or sqlite")
	flag.StringVar(&storage.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&storage.SQLitePath, "sqlite-path", "data/drinks.db", "SQLite database file")
	flag.StringVar(&drinksFile, "drinks-file", "db/seed/drinks.json", "path to drinks JSON file (.json or .json.gz)")
	flag.BoolVar(&reset, "reset", false, "drop and recreate the drinks table before seeding")
	flag.Parse()

	if storage.DatabaseURL == "" {
		storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if storage.Driver == app.DriverPostgres && storage.DatabaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, storage, drinksFile, reset); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, storage app.StorageConfig, drinksFile string, reset bool) error {
	slog.Info("opening store", slog.String("driver", storage.Driver))

	store, err := app.OpenStore(ctx, storage)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer store.Close()

	if reset {
		slog.Info("resetting drinks table")
		if err := store.Reset(ctx); err != nil {
			return errors.Wrap(err, "reset")
		}
	}

	inputs, err := readDrinks(drinksFile)
	if err != nil {
		return errors.Wrap(err, "read drinks")
	}

	return seedDrinks(ctx, drink.NewService(store.Drinks), inputs)
}

func readDrinks(path string) ([]drink.Input, error) {
	slog.Info("reading drinks file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	return parseDrinks(data)
}

// parseDrinks decodes a JSON array of {"title", "recipe"} objects.
func parseDrinks(data []byte) ([]drink.Input, error) {
	var inputs []drink.Input
	if err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var in drink.Input
		if err := in.Decode(d); err != nil {
			return err
		}
		inputs = append(inputs, in)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "parse drinks JSON")
	}
	return inputs, nil
}

func seedDrinks(ctx context.Context, svc *drink.Service, inputs []drink.Input) error {
	slog.Info("inserting drinks", slog.Int("count", len(inputs)))

	for i, in := range inputs {
		d, err := svc.Create(ctx, in)
		switch {
		case errors.Is(err, drink.ErrDuplicateTitle):
			slog.Info("drink already exists, skipping", slog.String("title", *in.Title))
			continue
		case err != nil:
			return errors.Wrapf(err, "drink #%d", i)
		}
		slog.Info("inserted drink", slog.Int64("id", d.ID), slog.String("title", d.Title))
	}
	return nil
}
