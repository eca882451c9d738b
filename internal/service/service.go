// Package service implements the classifieds use cases on top of the repositories
// and the image store. Every operation takes the caller's principal explicitly.
package service

import (
	"errors"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"
)

// lookupError maps a repository miss to NotFound(msg). Any other error is internal.
func lookupError(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(msg)
	}
	return internalError(err)
}

// internalError passes AppErrors through and wraps everything else.
func internalError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// uniquePaths drops empty and repeated paths, keeping first-seen order.
func uniquePaths(paths ...string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
