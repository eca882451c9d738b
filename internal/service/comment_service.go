package service

import (
	"context"
	"errors"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"
)

// CommentService manages comments on ads.
type CommentService struct {
	repos   *repository.Repositories
	baseURL string
}

func NewCommentService(repos *repository.Repositories, baseURL string) *CommentService {
	return &CommentService{repos: repos, baseURL: baseURL}
}

// ListComments returns the comments of adID, newest first.
func (s *CommentService) ListComments(ctx context.Context, p *access.Principal, adID uint) (models.CommentsView, error) {
	if err := access.CheckAuthenticated(p); err != nil {
		return models.CommentsView{}, err
	}
	if _, err := s.repos.Ads.GetByID(ctx, adID); err != nil {
		return models.CommentsView{}, lookupError(err, models.MsgAdNotFound)
	}

	comments, err := s.repos.Comments.ListByAd(ctx, adID)
	if err != nil {
		return models.CommentsView{}, internalError(err)
	}

	authorIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.UserID)
	}
	authors, err := s.repos.Users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return models.CommentsView{}, internalError(err)
	}

	results := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		results = append(results, models.NewCommentView(&comments[i], authors[comments[i].UserID], s.baseURL))
	}
	return models.CommentsView{Count: len(results), Results: results}, nil
}

// AddComment posts text on adID as the caller.
func (s *CommentService) AddComment(ctx context.Context, p *access.Principal, adID uint, text string) (models.CommentView, error) {
	if err := access.CheckAuthenticated(p); err != nil {
		return models.CommentView{}, err
	}
	if _, err := s.repos.Ads.GetByID(ctx, adID); err != nil {
		return models.CommentView{}, lookupError(err, models.MsgAdNotFound)
	}
	author, err := currentUser(ctx, s.repos, p)
	if err != nil {
		return models.CommentView{}, err
	}

	comment := &models.Comment{Text: text, UserID: author.ID, AdID: adID}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return models.CommentView{}, internalError(err)
	}
	return models.NewCommentView(comment, author, s.baseURL), nil
}

// UpdateComment rewrites the text of commentID, which must belong to adID.
func (s *CommentService) UpdateComment(ctx context.Context, p *access.Principal, adID, commentID uint, text string) (models.CommentView, error) {
	comment, err := s.loadOwnedComment(ctx, p, adID, commentID)
	if err != nil {
		return models.CommentView{}, err
	}

	comment.Text = text
	if err := s.repos.Comments.Update(ctx, comment); err != nil {
		return models.CommentView{}, internalError(err)
	}

	// A missing author renders as a deleted user.
	author, err := s.repos.Users.GetByID(ctx, comment.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return models.CommentView{}, internalError(err)
	}
	return models.NewCommentView(comment, author, s.baseURL), nil
}

// DeleteComment removes commentID, which must belong to adID.
func (s *CommentService) DeleteComment(ctx context.Context, p *access.Principal, adID, commentID uint) error {
	comment, err := s.loadOwnedComment(ctx, p, adID, commentID)
	if err != nil {
		return err
	}
	if err := s.repos.Comments.Delete(ctx, comment.ID); err != nil {
		return internalError(err)
	}
	return nil
}

// loadOwnedComment checks that both records exist, that the comment hangs off
// adID, and that the caller may modify it.
func (s *CommentService) loadOwnedComment(ctx context.Context, p *access.Principal, adID, commentID uint) (*models.Comment, error) {
	if err := access.CheckAuthenticated(p); err != nil {
		return nil, err
	}
	if _, err := s.repos.Ads.GetByID(ctx, adID); err != nil {
		return nil, lookupError(err, models.MsgAdNotFound)
	}
	comment, err := s.repos.Comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, lookupError(err, models.MsgCommentNotFound)
	}
	if comment.AdID != adID {
		return nil, models.NewNotFoundError(models.MsgInvalidRelation)
	}
	if err := checkOwnsRecord(ctx, s.repos, p, comment.UserID); err != nil {
		return nil, err
	}
	return comment, nil
}
