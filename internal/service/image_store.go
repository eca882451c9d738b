package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/config"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/observability"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ImageUpload is an uploaded file as received from a multipart form.
type ImageUpload struct {
	ContentType string
	Content     []byte
}

// ImageStorage persists uploaded images and removes them by relative path.
type ImageStorage interface {
	SaveAdImage(ctx context.Context, upload ImageUpload, ownerID uint) (string, error)
	SaveAvatarImage(ctx context.Context, upload ImageUpload, ownerID uint) (string, error)
	DeleteImage(ctx context.Context, relPath string) error
}

// ImageStore keeps images on the local filesystem under <root>/<ads|avatars>/.
// Stored paths are relative to root and use forward slashes.
type ImageStore struct {
	root       string
	adsDir     string
	avatarsDir string
	maxBytes   int64
	allowed    map[string]struct{}
}

// NewImageStore creates both category directories. An error here means the
// process must not start.
func NewImageStore(cfg *config.Config) (*ImageStore, error) {
	root, err := filepath.Abs(cfg.ImageRootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve image root: %w", err)
	}

	s := &ImageStore{
		root:       root,
		adsDir:     cfg.ImageAdsDir,
		avatarsDir: cfg.ImageAvatarsDir,
		maxBytes:   cfg.MaxImageBytes(),
		allowed:    make(map[string]struct{}),
	}
	for _, t := range cfg.AllowedImageTypes() {
		s.allowed[t] = struct{}{}
	}

	for _, dir := range []string{s.adsDir, s.avatarsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o750); err != nil {
			return nil, fmt.Errorf("create image directory %q: %w", dir, err)
		}
	}
	return s, nil
}

// Root is the absolute directory images are served from.
func (s *ImageStore) Root() string {
	return s.root
}

func (s *ImageStore) SaveAdImage(ctx context.Context, upload ImageUpload, ownerID uint) (string, error) {
	return s.save(ctx, s.adsDir, upload, ownerID)
}

func (s *ImageStore) SaveAvatarImage(ctx context.Context, upload ImageUpload, ownerID uint) (string, error) {
	return s.save(ctx, s.avatarsDir, upload, ownerID)
}

func (s *ImageStore) save(ctx context.Context, subDir string, upload ImageUpload, ownerID uint) (rel string, err error) {
	ctx, span := observability.StartSpan(ctx, "ImageStore", "Save")
	defer func() { span.End(err) }()

	if len(upload.Content) == 0 {
		return "", models.NewBadRequestError(models.MsgUnsupportedFileType)
	}
	if int64(len(upload.Content)) > s.maxBytes {
		return "", models.NewBadRequestError(models.MsgFileTooBig)
	}

	ext, ok := s.extensionFor(upload.ContentType)
	if !ok || !contentMatches(upload.Content, ext) {
		return "", models.NewBadRequestError(models.MsgUnsupportedFileType)
	}

	fileName := fmt.Sprintf("%d_%s.%s", ownerID, uuid.NewString(), ext)
	if err := writeBytesToFile(filepath.Join(s.root, subDir, fileName), upload.Content); err != nil {
		return "", models.NewStorageError(err)
	}

	observability.ImagesStored.WithLabelValues(subDir).Inc()
	rel = path.Join(subDir, fileName)
	middleware.Logger.InfoContext(ctx, "image stored", slog.String("path", rel), slog.Int("bytes", len(upload.Content)))
	return rel, nil
}

// DeleteImage removes relPath. Empty and already-missing paths are not errors.
func (s *ImageStore) DeleteImage(ctx context.Context, relPath string) error {
	if strings.TrimSpace(relPath) == "" {
		return nil
	}

	abs, err := s.resolve(relPath)
	if err != nil {
		return models.NewStorageError(err)
	}

	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			middleware.Logger.WarnContext(ctx, "image already absent", slog.String("path", relPath))
			return nil
		}
		return models.NewStorageError(err)
	}
	return nil
}

// resolve maps a stored path to an absolute one inside root.
func (s *ImageStore) resolve(relPath string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(relPath))
	within, err := filepath.Rel(s.root, abs)
	if err != nil || within == "." || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("image path %q escapes storage root", relPath)
	}
	return abs, nil
}

// extensionFor turns "image/png" into "png" when that subtype is allowed.
func (s *ImageStore) extensionFor(contentType string) (string, bool) {
	mediaType := normalizeContentType(contentType)
	if mediaType == "" {
		return "", false
	}
	_, ext, found := strings.Cut(mediaType, "/")
	if !found || ext == "" {
		return "", false
	}
	if _, ok := s.allowed[ext]; !ok {
		return "", false
	}
	return ext, true
}

// contentMatches checks that the bytes decode as the declared format.
func contentMatches(content []byte, ext string) bool {
	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return false
	}
	if ext == "jpg" {
		ext = "jpeg"
	}
	return format == ext
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// deleteImagesQuietly removes every path, logging failures instead of returning them.
func deleteImagesQuietly(ctx context.Context, images ImageStorage, paths []string) {
	for _, p := range paths {
		if err := images.DeleteImage(ctx, p); err != nil {
			observability.ImageDeleteFailures.Inc()
			middleware.Logger.ErrorContext(ctx, "failed to remove image file",
				slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}
