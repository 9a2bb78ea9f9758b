// Package main provides a tool to seed the database with test travel data.
//
// This creates a handful of authors with scraps, books, friendships, and
// likes to exercise the feed, search, and mileage features during
// development.
//
// Usage:
//
//	DATA_PATH=~/Scrap/data go run ./cmd/seed
package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/scrapapp/scrap-server/internal/auth"
	"github.com/scrapapp/scrap-server/internal/domain"
	"github.com/scrapapp/scrap-server/internal/id"
	"github.com/scrapapp/scrap-server/internal/media/images"
	"github.com/scrapapp/scrap-server/internal/service"
	"github.com/scrapapp/scrap-server/internal/store"
)

// seedAuthors are the pseudonyms and names for generated test accounts.
// All accounts get the password "testpass123".
var seedAuthors = []struct {
	Pseudonym string
	FirstName string
	LastName  string
}{
	{"wanderlust-alex", "Alex", "Rivera"},
	{"jordan-treks", "Jordan", "Chen"},
	{"sam-on-the-road", "Sam", "Taylor"},
	{"casey-roams", "Casey", "Morgan"},
	{"riley-drifts", "Riley", "Kim"},
}

// seedStops are real-world coordinates strung together into trips.
var seedStops = []struct {
	Place     string
	Location  string
	Latitude  float64
	Longitude float64
}{
	{"Eiffel Tower", "Paris, France", 48.8584, 2.2945},
	{"Sagrada Familia", "Barcelona, Spain", 41.4036, 2.1744},
	{"Colosseum", "Rome, Italy", 41.8902, 12.4922},
	{"Acropolis", "Athens, Greece", 37.9715, 23.7267},
	{"Hagia Sophia", "Istanbul, Turkey", 41.0086, 28.9802},
	{"Charles Bridge", "Prague, Czechia", 50.0865, 14.4114},
	{"Brandenburg Gate", "Berlin, Germany", 52.5163, 13.3777},
	{"Little Mermaid", "Copenhagen, Denmark", 55.6929, 12.5993},
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Scrap/data")
	}

	fmt.Printf("Seeding data under: %s\n", dataPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := store.New(filepath.Join(dataPath, "store"), logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	photoStorage, err := images.NewStorage(filepath.Join(dataPath, "photos"))
	if err != nil {
		log.Fatalf("Failed to open photo storage: %v", err)
	}
	photos := images.NewProcessor(photoStorage, logger)

	membership := service.NewMembershipService(s, logger)
	actions := service.NewActionService(s, nil, logger)
	social := service.NewSocialService(s, actions, logger)
	scraps := service.NewScrapService(s, photos, membership, logger)
	books := service.NewBookService(s, membership, actions, store.NewNoopSearchIndexer(), logger)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	authorIDs := createAuthors(ctx, s)
	if len(authorIDs) < 2 {
		log.Fatal("Need at least two authors to seed social data")
	}

	// Everyone is friends with the first author; a few extra pairs keep
	// the graph interesting.
	first := authorIDs[0]
	for _, other := range authorIDs[1:] {
		befriend(ctx, social, first, other)
	}
	befriend(ctx, social, authorIDs[1], authorIDs[2])

	// Each author takes a trip: a run of consecutive stops, one scrap per
	// stop, gathered into a public book.
	for i, authorID := range authorIDs {
		start := rng.Intn(len(seedStops) - 3)
		stops := seedStops[start : start+3+rng.Intn(2)]

		scrapIDs := make([]string, 0, len(stops))
		for j, stop := range stops {
			photo := solidJPEG(color.RGBA{R: uint8(40 * i), G: uint8(60 * j), B: 180, A: 255}) //nolint:gosec // Seed palette arithmetic stays in range
			scrap, err := scraps.CreateScrap(ctx, service.CreateScrapInput{
				Author:      authorID,
				Title:       stop.Place,
				Description: fmt.Sprintf("Stopped at %s", stop.Place),
				Latitude:    stop.Latitude,
				Longitude:   stop.Longitude,
				Place:       stop.Place,
				Location:    stop.Location,
				Prograph:    photo,
				Retrograph:  photo,
				CreatedAt:   time.Now().AddDate(0, 0, -len(stops)+j),
			})
			if err != nil {
				log.Printf("Failed to create scrap at %s: %v", stop.Place, err)
				continue
			}
			scrapIDs = append(scrapIDs, scrap.ID)
		}

		book, err := books.CreateBook(ctx, service.CreateBookInput{
			Author:      authorID,
			Title:       fmt.Sprintf("%s to %s", stops[0].Place, stops[len(stops)-1].Place),
			Description: "Seeded trip",
			Place:       stops[0].Location,
			IsPublic:    true,
			Scraps:      scrapIDs,
		})
		if err != nil {
			log.Printf("Failed to create book for %s: %v", authorID, err)
			continue
		}

		fmt.Printf("  %s: %d scraps, book %q (%.1f miles)\n",
			authorID, len(scrapIDs), book.Title, book.Miles)
	}

	// Everyone likes the first author's books.
	firstAuthor, err := s.Authors.Get(ctx, first)
	if err == nil {
		for _, bookID := range firstAuthor.Books {
			for _, other := range authorIDs[1:] {
				if err := social.Like(ctx, other, bookID); err != nil {
					log.Printf("Failed to like %s: %v", bookID, err)
				}
			}
		}
	}

	fmt.Println("\nSeeding complete!")
}

// createAuthors inserts the seed accounts, skipping any that already
// exist, and returns their ids.
func createAuthors(ctx context.Context, s *store.Store) []string {
	passwordHash, err := auth.HashPassword("testpass123")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	ids := make([]string, 0, len(seedAuthors))
	for i, seed := range seedAuthors {
		email := fmt.Sprintf("test%d@example.com", i+1)

		if existing, err := s.Authors.GetByIndex(ctx, "email", email); err == nil {
			fmt.Printf("  Author %s already exists, reusing\n", email)
			ids = append(ids, existing.ID)
			continue
		}

		author := &domain.Author{
			Record:       domain.Record{ID: id.MustGenerate("author")},
			Pseudonym:    seed.Pseudonym,
			Email:        email,
			PasswordHash: passwordHash,
			Activated:    true,
			FirstName:    seed.FirstName,
			LastName:     seed.LastName,
			Friends:      []string{},
			Scraps:       []string{},
			Books:        []string{},
			LikedBooks:   []string{},
			Actions:      []string{},
		}
		author.InitTimestamps()

		if err := s.Authors.Create(ctx, author.ID, author); err != nil {
			log.Printf("  Failed to create author %s: %v", seed.Pseudonym, err)
			continue
		}
		fmt.Printf("  Created author: %s (%s)\n", seed.Pseudonym, email)
		ids = append(ids, author.ID)
	}
	return ids
}

// befriend runs the full request/accept handshake between two authors.
func befriend(ctx context.Context, social *service.SocialService, a, b string) {
	if err := social.SendFriendRequest(ctx, a, b); err != nil {
		log.Printf("Failed to send request %s -> %s: %v", a, b, err)
		return
	}
	if err := social.AcceptFriendRequest(ctx, b, a); err != nil {
		log.Printf("Failed to accept request %s -> %s: %v", b, a, err)
	}
}

// solidJPEG renders a small single-color JPEG for seed photos.
func solidJPEG(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := range 240 {
		for x := range 320 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		log.Fatalf("Failed to encode seed photo: %v", err)
	}
	return buf.Bytes()
}
