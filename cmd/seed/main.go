// Package main provides a tool to seed the record database with demo data.
//
// It writes photo, album, and tag records directly through the store so
// filter, album, and stats features can be exercised without importing
// real images.
//
// Usage:
//
//	DB_PATH=~/Lumen/data/library.db go run ./cmd/seed
//	DB_PATH=~/Lumen/data/library.db go run ./cmd/seed --photos 200
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/lumenapp/lumen-server/internal/color"
	"github.com/lumenapp/lumen-server/internal/domain"
	"github.com/lumenapp/lumen-server/internal/id"
	"github.com/lumenapp/lumen-server/internal/store"
)

var photoCount = flag.Int("photos", 50, "Number of demo photos to create")

var tagNames = []string{"sunset", "beach", "mountain", "city", "family", "food", "pets", "travel"}

var albumNames = []string{"Summer 2025", "Weekend Trips", "Best Of"}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Lumen/data/library.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	// Tags first so photos can reference them by name.
	tags := make([]*domain.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		tag := &domain.Tag{
			ID:    id.MustGenerate("tag"),
			Name:  name,
			Color: color.ForTag(name),
		}
		if err := s.SaveTag(ctx, tag); err != nil {
			log.Fatalf("Failed to save tag %q: %v", name, err)
		}
		tags = append(tags, tag)
	}
	fmt.Printf("Created %d tags\n", len(tags))

	albums := make([]*domain.Album, 0, len(albumNames))
	now := time.Now()
	for _, name := range albumNames {
		album := &domain.Album{
			ID:        id.MustGenerate("album"),
			Name:      name,
			PhotoIDs:  []string{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.SaveAlbum(ctx, album); err != nil {
			log.Fatalf("Failed to save album %q: %v", name, err)
		}
		albums = append(albums, album)
	}
	fmt.Printf("Created %d albums\n", len(albums))

	photos := make([]*domain.Photo, 0, *photoCount)
	for i := 0; i < *photoCount; i++ {
		p := &domain.Photo{
			ID:        id.MustGenerate("photo"),
			Name:      fmt.Sprintf("IMG_%04d.jpg", i+1),
			Size:      int64(rand.Intn(8<<20) + 100<<10),
			MimeType:  "image/jpeg",
			DateAdded: now.Add(-time.Duration(rand.Intn(365*24)) * time.Hour),
			Width:     4032,
			Height:    3024,
			Favorite:  rand.Intn(10) == 0,
			Tags:      []string{},
			Albums:    []string{},
		}

		// One or two random tags per photo.
		for _, tag := range pick(tags, 1+rand.Intn(2)) {
			p.AddTag(tag.Name)
			tag.Count++
		}

		photos = append(photos, p)
	}
	if err := s.SavePhotos(ctx, photos); err != nil {
		log.Fatalf("Failed to save photos: %v", err)
	}
	fmt.Printf("Created %d photos\n", len(photos))

	// Persist the bumped tag counts.
	for _, tag := range tags {
		if err := s.SaveTag(ctx, tag); err != nil {
			log.Fatalf("Failed to update tag %q: %v", tag.Name, err)
		}
	}

	// Scatter photos across albums through the store so membership stays
	// symmetric on both sides.
	for _, album := range albums {
		members := pick(photos, len(photos)/len(albums))
		ids := make([]string, 0, len(members))
		for _, p := range members {
			ids = append(ids, p.ID)
		}
		if _, err := s.AddPhotosToAlbum(ctx, album.ID, ids); err != nil {
			log.Fatalf("Failed to fill album %q: %v", album.Name, err)
		}
		fmt.Printf("Album %q: %d photos\n", album.Name, len(ids))
	}

	fmt.Println("Done")
}

// pick returns n random distinct elements of items.
func pick[T any](items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	idx := rand.Perm(len(items))[:n]
	out := make([]T, 0, n)
	for _, i := range idx {
		out = append(out, items[i])
	}
	return out
}
