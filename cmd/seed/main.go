// Package main provides a tool to seed the catalog from a JSON export.
//
// This reads a movie list from a JSON file, writes any entries the catalog
// does not already have, and indexes them for search. Re-running against the
// same file is a no-op for existing entries.
//
// Usage:
//
//	DATA_PATH=~/WatchVault/data go run ./cmd/seed -catalog movies.json
//	DATA_PATH=~/WatchVault/data go run ./cmd/seed -catalog movies.json -demo-users
package main

import (
	"context"
	"encoding/json/v2"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
	"github.com/watchvaultapp/watchvault-server/internal/id"
	"github.com/watchvaultapp/watchvault-server/internal/search"
	"github.com/watchvaultapp/watchvault-server/internal/store"
)

var (
	catalogFile = flag.String("catalog", "", "Path to a JSON file containing an array of movies")
	demoUsers   = flag.Bool("demo-users", false, "Also create demo users for manual testing")
)

// seedMovie mirrors the subset of catalog fields a JSON export carries.
type seedMovie struct {
	Title          string   `json:"title"`
	Year           int      `json:"year"`
	ReleaseDate    string   `json:"release_date"`
	GenreCodes     []int    `json:"genre_codes"`
	GenreNames     []string `json:"genre_names"`
	RuntimeMinutes int      `json:"runtime_minutes"`
	Overview       string   `json:"overview"`
	PosterURL      string   `json:"poster_url"`
}

func main() {
	flag.Parse()

	if *catalogFile == "" {
		log.Fatal("-catalog is required")
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/WatchVault/data")
	}

	dbPath := filepath.Join(dataPath, "db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	idx, err := search.NewIndex(search.Options{DataPath: dataPath})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()

	movies, err := loadCatalogFile(*catalogFile)
	if err != nil {
		log.Fatalf("Failed to read catalog file: %v", err)
	}
	fmt.Printf("Read %d movies from %s\n", len(movies), *catalogFile)

	created, skipped := 0, 0
	var indexable []*domain.Movie

	for _, entry := range movies {
		if entry.Title == "" {
			log.Printf("Skipping entry with empty title")
			continue
		}

		// Idempotent re-seed: an entry with the same normalized title and
		// year is treated as already present.
		year := entry.Year
		if year == 0 {
			year = (&domain.Movie{ReleaseDate: entry.ReleaseDate}).ResolvedYear()
		}
		if _, err := s.FindExact(ctx, entry.Title, year); err == nil {
			skipped++
			continue
		}

		movie := &domain.Movie{
			ID:             id.MustGenerate("mov"),
			Title:          entry.Title,
			Year:           entry.Year,
			ReleaseDate:    entry.ReleaseDate,
			GenreCodes:     entry.GenreCodes,
			GenreNames:     entry.GenreNames,
			RuntimeMinutes: entry.RuntimeMinutes,
			Overview:       entry.Overview,
			PosterURL:      entry.PosterURL,
		}

		if err := s.CreateMovie(ctx, movie); err != nil {
			log.Printf("Failed to create %q (%d): %v", movie.Title, year, err)
			continue
		}
		indexable = append(indexable, movie)
		created++
	}

	if len(indexable) > 0 {
		if err := idx.IndexMovies(indexable); err != nil {
			log.Fatalf("Failed to index new movies: %v", err)
		}
	}

	fmt.Printf("Catalog seeded: %d created, %d already present\n", created, skipped)

	if *demoUsers {
		createDemoUsers(ctx, s)
	}
}

func loadCatalogFile(path string) ([]seedMovie, error) {
	f, err := os.Open(path) //#nosec G304 -- seed file path comes from the operator
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var movies []seedMovie
	if err := json.UnmarshalRead(f, &movies); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return movies, nil
}

func createDemoUsers(ctx context.Context, s *store.Store) {
	demos := []struct {
		email string
		name  string
	}{
		{"sidney@example.com", "Sidney"},
		{"laurie@example.com", "Laurie"},
		{"ripley@example.com", "Ripley"},
	}

	for _, d := range demos {
		user := &domain.User{
			ID:          id.MustGenerate("usr"),
			Email:       d.email,
			DisplayName: d.name,
			Ledger:      []domain.WatchEntry{},
		}
		if err := s.CreateUser(ctx, user); err != nil {
			// Existing users are expected on re-seed.
			fmt.Printf("Demo user %s already present\n", d.email)
			continue
		}
		fmt.Printf("Created demo user %s (%s)\n", d.email, user.ID)
	}
}
