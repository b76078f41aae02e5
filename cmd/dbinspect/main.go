// Package main inspects a Lumen record database read-only: collection
// counts, tag count drift, and album membership consistency.
//
// Usage:
//
//	DB_PATH=~/Lumen/data/library.db go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/lumenapp/lumen-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Lumen/data/library.db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Library Inspection ===")
	fmt.Println()

	var (
		photos []*domain.Photo
		albums []*domain.Album
		tags   []*domain.Tag
	)

	err = db.View(func(txn *badger.Txn) error {
		if err := collect(txn, "photo:", &photos); err != nil {
			return err
		}
		if err := collect(txn, "album:", &albums); err != nil {
			return err
		}
		return collect(txn, "tag:", &tags)
	})
	if err != nil {
		log.Fatalf("Error reading database: %v", err)
	}

	photoByID := make(map[string]*domain.Photo, len(photos))
	favorites := 0
	var totalBytes int64
	tagUsage := make(map[string]int)
	for _, p := range photos {
		photoByID[p.ID] = p
		totalBytes += p.Size
		if p.Favorite {
			favorites++
		}
		for _, name := range p.Tags {
			tagUsage[name]++
		}
	}

	fmt.Printf("Photos: %d (%d favorites, %d bytes of originals)\n", len(photos), favorites, totalBytes)
	fmt.Printf("Albums: %d\n", len(albums))
	fmt.Printf("Tags:   %d\n", len(tags))
	fmt.Println()

	// Tag count drift: stored count vs actual usage on photos.
	drifted := 0
	for _, tag := range tags {
		actual := tagUsage[tag.Name]
		if tag.Count != actual {
			drifted++
			fmt.Printf("Tag %q: stored count %d, actual %d\n", tag.Name, tag.Count, actual)
		}
	}
	if drifted == 0 {
		fmt.Println("Tag counts: all consistent")
	} else {
		fmt.Printf("Tag counts: %d drifted (bulk delete or reload will repair)\n", drifted)
	}
	fmt.Println()

	// Album membership: every member must exist and point back.
	broken := 0
	for _, album := range albums {
		for _, pid := range album.PhotoIDs {
			p, ok := photoByID[pid]
			if !ok {
				broken++
				fmt.Printf("Album %q references missing photo %s\n", album.Name, pid)
				continue
			}
			if !p.InAlbum(album.ID) {
				broken++
				fmt.Printf("Album %q member %s has no back-reference\n", album.Name, pid)
			}
		}
	}
	if broken == 0 {
		fmt.Println("Album membership: all symmetric")
	} else {
		fmt.Printf("Album membership: %d broken links\n", broken)
	}
}

// collect unmarshals every record under a prefix into out.
func collect[T any](txn *badger.Txn, prefix string, out *[]*T) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			var rec T
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			*out = append(*out, &rec)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
