package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/featureflags"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testBaseURL = "/images/"

// recordingImages wraps the real store and can be told to fail deletions.
type recordingImages struct {
	*ImageStore
	mu        sync.Mutex
	deleteErr error
	deleted   []string
}

func (r *recordingImages) DeleteImage(ctx context.Context, relPath string) error {
	r.mu.Lock()
	r.deleted = append(r.deleted, relPath)
	failWith := r.deleteErr
	r.mu.Unlock()
	if failWith != nil {
		return models.NewStorageError(failWith)
	}
	return r.ImageStore.DeleteImage(ctx, relPath)
}

func (r *recordingImages) failDeletes() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteErr = errors.New("permission denied")
}

type harness struct {
	db       *gorm.DB
	repos    *repository.Repositories
	images   *recordingImages
	auth     *AuthService
	ads      *AdService
	comments *CommentService
	users    *UserService
	mgmt     *ManagementService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)
	repos := repository.New(db)
	tx := repository.NewTransactor(db)
	hasher := &BcryptHasher{Cost: bcrypt.MinCost}
	flags := featureflags.NewManager("", featureflags.Defaults(true))

	store, err := NewImageStore(imageConfig(t.TempDir()))
	require.NoError(t, err)
	images := &recordingImages{ImageStore: store}

	ads := NewAdService(repos, tx, images, testBaseURL)
	return &harness{
		db:       db,
		repos:    repos,
		images:   images,
		auth:     NewAuthService(repos, tx, hasher, flags),
		ads:      ads,
		comments: NewCommentService(repos, testBaseURL),
		users:    NewUserService(repos, hasher, images, testBaseURL),
		mgmt:     NewManagementService(repos, tx, ads, images),
	}
}

// register creates a user and returns it with its principal.
func (h *harness) register(t *testing.T, username string, role models.Role) (*models.User, *access.Principal) {
	t.Helper()
	user, err := h.auth.Register(context.Background(), RegisterInput{
		Username:  username,
		Password:  "password123",
		FirstName: "Ivan",
		LastName:  "Petrov",
		Phone:     "+7 (999) 123-45-67",
		Role:      role,
	})
	require.NoError(t, err)
	return user, access.ForUser(user.Username, role)
}

func (h *harness) createAd(t *testing.T, p *access.Principal, title string) models.AdView {
	t.Helper()
	view, err := h.ads.CreateAd(context.Background(), p, AdInput{
		Title:       title,
		Price:       1500,
		Description: "gently used, works fine",
	}, pngUpload(t))
	require.NoError(t, err)
	return view
}

func (h *harness) imageExists(relPath string) bool {
	_, err := os.Stat(filepath.Join(h.images.Root(), filepath.FromSlash(relPath)))
	return err == nil
}

func pngUpload(t *testing.T) ImageUpload {
	return ImageUpload{ContentType: "image/png", Content: testutil.TinyPNG(t, 2, 2)}
}

func assertCode(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

// storedPath strips the base URL off a rendered image URL.
func storedPath(t *testing.T, url *string) string {
	t.Helper()
	require.NotNil(t, url)
	return (*url)[len(testBaseURL):]
}
