package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	Users         int
	AdsPerUser    int
	CommentsPerAd int
	Clean         bool
	// Seed makes generated data reproducible; zero picks a random seed.
	Seed int64
	// MaxDays bounds how far back timestamps are spread.
	MaxDays int
}

// Result counts the rows created by Run.
type Result struct {
	Users    int
	Ads      int
	Comments int
}

// Seeder fills a database through the repositories.
type Seeder struct {
	db *gorm.DB
	tx repository.Transactor
}

// NewSeeder returns a seeder bound to db.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, tx: repository.NewTransactor(db)}
}

// ClearAll removes every comment, ad, credential and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	middleware.Logger.Info("clearing existing data")
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.Comment{}, &models.Ad{}, &models.Credential{}, &models.User{}} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run creates opts.Users users, each with opts.AdsPerUser ads, and
// opts.CommentsPerAd comments on every ad written by random seeded users.
// passwordHash is stored on every credential. Everything is written in one transaction.
func (s *Seeder) Run(ctx context.Context, opts Options, passwordHash string) (Result, error) {
	var res Result
	if opts.Users <= 0 {
		return res, nil
	}

	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return res, err
		}
	}

	f := NewFactory(opts.Seed, passwordHash, opts.MaxDays)
	err := s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		res = Result{}
		offset, err := repos.Users.Count(ctx)
		if err != nil {
			return err
		}

		users := make([]*models.User, 0, opts.Users)
		for i := 0; i < opts.Users; i++ {
			user, err := f.CreateUser(ctx, repos, int(offset)+i+1)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			users = append(users, user)
		}
		res.Users = len(users)

		for _, owner := range users {
			for j := 0; j < opts.AdsPerUser; j++ {
				ad, err := f.CreateAd(ctx, repos, owner)
				if err != nil {
					return fmt.Errorf("create ad: %w", err)
				}
				res.Ads++

				for k := 0; k < opts.CommentsPerAd; k++ {
					if _, err := f.CreateComment(ctx, repos, f.pick(users), ad); err != nil {
						return fmt.Errorf("create comment: %w", err)
					}
					res.Comments++
				}
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	middleware.Logger.Info("database seeded",
		slog.Int("users", res.Users),
		slog.Int("ads", res.Ads),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}
