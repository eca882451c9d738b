// Package seed creates fake users, ads and comments for development databases.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the login password of every seeded user.
const DefaultPassword = "password123"

// Field limits mirror the request validation rules so seeded rows can be edited through the API.
const (
	maxNameLen        = 16
	maxTitleLen       = 32
	minTitleLen       = 4
	maxDescriptionLen = 64
	minTextLen        = 8
	maxTextLen        = 64
	maxPrice          = 100000
)

// Factory builds domain entities and persists them through the repositories.
type Factory struct {
	faker        *gofakeit.Faker
	passwordHash string
	maxDays      int
}

// NewFactory returns a factory that stores passwordHash on every credential.
// A zero seed picks a random one.
func NewFactory(seed int64, passwordHash string, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{faker: gofakeit.New(seed), passwordHash: passwordHash, maxDays: maxDays}
}

// BuildUser returns an unsaved user with a unique email login.
func (f *Factory) BuildUser(n int) *models.User {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	return &models.User{
		Username:  fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(ascii(first)), strings.ToLower(ascii(last)), n),
		FirstName: clip(first, maxNameLen),
		LastName:  clip(last, maxNameLen),
		Phone:     f.faker.Numerify("+7 (9##) ###-##-##"),
	}
}

// CreateUser stores a user together with a USER credential.
func (f *Factory) CreateUser(ctx context.Context, repos *repository.Repositories, n int) (*models.User, error) {
	user := f.BuildUser(n)
	if err := repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	cred := &models.Credential{ID: user.ID, PasswordHash: f.passwordHash, Role: models.RoleUser}
	if err := repos.Credentials.Create(ctx, cred); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildAd returns an unsaved ad owned by user. Seeded ads have no image.
func (f *Factory) BuildAd(user *models.User) *models.Ad {
	return &models.Ad{
		Title:       atLeast(clip(f.faker.ProductName(), maxTitleLen), minTitleLen),
		Price:       f.faker.Number(1, maxPrice),
		Description: atLeast(clip(f.faker.ProductDescription(), maxDescriptionLen), minTextLen),
		UserID:      user.ID,
		CreatedAt:   f.pastTime(),
	}
}

// CreateAd stores an ad for user.
func (f *Factory) CreateAd(ctx context.Context, repos *repository.Repositories, user *models.User) (*models.Ad, error) {
	ad := f.BuildAd(user)
	if err := repos.Ads.Create(ctx, ad); err != nil {
		return nil, err
	}
	return ad, nil
}

// BuildComment returns an unsaved comment by author on ad.
func (f *Factory) BuildComment(author *models.User, ad *models.Ad) *models.Comment {
	return &models.Comment{
		Text:      atLeast(clip(f.faker.Sentence(6), maxTextLen), minTextLen),
		UserID:    author.ID,
		AdID:      ad.ID,
		CreatedAt: f.pastTime().UnixMilli(),
	}
}

// CreateComment stores a comment by author on ad.
func (f *Factory) CreateComment(ctx context.Context, repos *repository.Repositories, author *models.User, ad *models.Ad) (*models.Comment, error) {
	comment := f.BuildComment(author, ad)
	if err := repos.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// pastTime spreads timestamps over the last maxDays days.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) pick(users []*models.User) *models.User {
	return users[f.faker.Number(0, len(users)-1)]
}

func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max]))
}

func atLeast(s string, min int) string {
	for utf8.RuneCountInString(s) < min {
		s += "."
	}
	return s
}

// ascii keeps letters usable in an email local part.
func ascii(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
