// Package main seeds the configured store with sample users, books and reviews.
//
// It reads the same environment and .env file as the server.
//
// Usage:
//
//	DB_DRIVER=sqlite DATA_PATH=~/BookApp go run ./cmd/seed
//	go run ./cmd/seed -users 10 -reviews 4
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"

	"github.com/MohammadRstm/BookApp/internal/config"
	"github.com/MohammadRstm/BookApp/internal/di/providers"
	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/logger"
	"github.com/MohammadRstm/BookApp/internal/search"
	"github.com/MohammadRstm/BookApp/internal/service"
	"github.com/MohammadRstm/BookApp/internal/validation"
)

type sampleBook struct {
	title, author, genre, description string
	year                              int
}

var catalogue = []sampleBook{
	{"Dune", "Frank Herbert", "Sci-Fi", "A desert planet, a messiah and the spice that binds an empire.", 1965},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "Science Fiction", "An envoy on a world where gender is fluid.", 1969},
	{"Neuromancer", "William Gibson", "Cyberpunk", "A washed-up hacker gets one last job.", 1984},
	{"Pride and Prejudice", "Jane Austen", "Romance", "Manners, marriage and first impressions.", 1813},
	{"The Hobbit", "J.R.R. Tolkien", "Fantasy", "A burglar, thirteen dwarves and a dragon.", 1937},
	{"The Name of the Rose", "Umberto Eco", "Mystery", "Murders in a medieval abbey library.", 1980},
	{"Beloved", "Toni Morrison", "Literary Fiction", "", 1987},
	{"The Road", "Cormac McCarthy", "Post-Apocalyptic", "A father and son walk through a burned America.", 2006},
}

var reviewTexts = []string{
	"Could not put it down.",
	"Slow start, strong finish.",
	"Not for me.",
	"A classic for a reason.",
	"Beautifully written.",
	"Overrated, honestly.",
}

func main() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	users := fs.Int("users", 5, "Number of sample readers to create")
	reviews := fs.Int("reviews", 3, "Reviews per book (capped by readers other than the owner)")
	password := fs.String("password", "password123", "Password for every sample user")

	// config.Load adds the server flags to fs and parses both sets.
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	lg := logger.New(logger.Config{Level: logger.ParseLevel(cfg.Logger.Level), Writer: os.Stderr})

	st, err := providers.OpenStore(ctx, cfg, lg.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	var index *search.Index
	if cfg.Search.Enabled {
		index, err = search.Open(search.Options{DataPath: cfg.App.DataPath, Logger: lg.Logger})
		if err != nil {
			log.Fatalf("Failed to open search index: %v", err)
		}
		defer index.Close()
	}

	v := validation.New()
	s := seeder{
		auth:    service.NewAuthService(st, nil, v, lg.Logger),
		books:   service.NewBookService(st, index, v, lg.Logger),
		reviews: service.NewReviewService(st, v, lg.Logger),
		out:     os.Stdout,
		logf:    log.Printf,
	}
	if _, err := s.run(ctx, seedOptions{Users: *users, ReviewsPerBook: *reviews, Password: *password}); err != nil {
		log.Fatal(err)
	}
}

type seedOptions struct {
	Users          int
	ReviewsPerBook int
	Password       string
}

type seedStats struct {
	Readers, Books, Reviews int
}

type seeder struct {
	auth    *service.AuthService
	books   *service.BookService
	reviews *service.ReviewService
	out     io.Writer
	logf    func(format string, args ...any)
}

var errAlreadySeeded = errors.New("no readers created; the store may already be seeded")

// run registers the readers, adds the catalogue round-robin across them and
// lets other readers review each book. Owners never review their own books.
func (s *seeder) run(ctx context.Context, opts seedOptions) (seedStats, error) {
	var stats seedStats

	readers := make([]*domain.User, 0, opts.Users)
	for n := range opts.Users {
		u, err := s.auth.Register(ctx, service.RegisterRequest{
			Name:     fmt.Sprintf("Reader %d", n+1),
			Email:    fmt.Sprintf("reader%d@example.com", n+1),
			Password: opts.Password,
		})
		if err != nil {
			s.logf("Skipping reader %d: %v", n+1, err)
			continue
		}
		readers = append(readers, u)
	}
	if len(readers) == 0 {
		return stats, errAlreadySeeded
	}
	stats.Readers = len(readers)
	fmt.Fprintf(s.out, "Created %d readers\n", len(readers))

	rng := rand.New(rand.NewPCG(uint64(len(readers)), 42))

	for n, sb := range catalogue {
		owner := readers[n%len(readers)]

		book, err := s.books.Create(ctx, owner.ID, service.CreateBookRequest{
			Title:       sb.title,
			Author:      sb.author,
			Year:        sb.year,
			Description: sb.description,
			Genre:       sb.genre,
		})
		if err != nil {
			s.logf("Failed to add %q: %v", sb.title, err)
			continue
		}
		stats.Books++

		written := 0
		for _, reader := range rng.Perm(len(readers)) {
			if written >= opts.ReviewsPerBook {
				break
			}
			r := readers[reader]
			if book.IsOwnedBy(r.ID) {
				continue
			}
			rating := rng.IntN(domain.MaxRating) + domain.MinRating
			_, err := s.reviews.Create(ctx, r.ID, book.ID, service.CreateReviewRequest{
				Rating: &rating,
				Text:   reviewTexts[rng.IntN(len(reviewTexts))],
			})
			if err != nil {
				s.logf("Failed to review %q as %s: %v", sb.title, r.Name, err)
				continue
			}
			written++
			stats.Reviews++
		}
	}

	fmt.Fprintf(s.out, "Added %d books and %d reviews\n", stats.Books, stats.Reviews)
	fmt.Fprintf(s.out, "Log in as reader1@example.com with password %q\n", opts.Password)
	return stats, nil
}
