package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddAndList(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, seller := h.register(t, "seller@x.com", models.RoleUser)
	buyer, buyerP := h.register(t, "buyer@x.com", models.RoleUser)
	ad := h.createAd(t, seller, "Guitar")

	added, err := h.comments.AddComment(ctx, buyerP, ad.PK, "does it come with a case?")
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, added.Author)
	assert.Equal(t, "Ivan", added.AuthorFirstName)
	assert.NotZero(t, added.CreatedAt)

	list, err := h.comments.ListComments(ctx, seller, ad.PK)
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, added.PK, list.Results[0].PK)
	assert.Equal(t, "does it come with a case?", list.Results[0].Text)

	_, err = h.comments.ListComments(ctx, seller, 404)
	assertCode(t, err, models.CodeNotFound, models.MsgAdNotFound)
	_, err = h.comments.AddComment(ctx, buyerP, 404, "anybody home here?")
	assertCode(t, err, models.CodeNotFound, models.MsgAdNotFound)
	_, err = h.comments.ListComments(ctx, access.Anonymous(), ad.PK)
	assertCode(t, err, models.CodeUnauthorized, "")
	_, err = h.comments.AddComment(ctx, access.Anonymous(), ad.PK, "anonymous words")
	assertCode(t, err, models.CodeUnauthorized, "")
}

func TestCommentService_RelationMismatch(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, p := h.register(t, "seller@x.com", models.RoleUser)
	first := h.createAd(t, p, "First ad")
	second := h.createAd(t, p, "Second ad")
	comment, err := h.comments.AddComment(ctx, p, first.PK, "comment on the first")
	require.NoError(t, err)

	_, err = h.comments.UpdateComment(ctx, p, second.PK, comment.PK, "moved to second")
	assertCode(t, err, models.CodeNotFound, models.MsgInvalidRelation)
	assertCode(t, h.comments.DeleteComment(ctx, p, second.PK, comment.PK), models.CodeNotFound, models.MsgInvalidRelation)

	_, err = h.comments.UpdateComment(ctx, p, first.PK, 404, "missing comment")
	assertCode(t, err, models.CodeNotFound, models.MsgCommentNotFound)
	_, err = h.comments.UpdateComment(ctx, p, 404, comment.PK, "missing ad here")
	assertCode(t, err, models.CodeNotFound, models.MsgAdNotFound)
}

func TestCommentService_UpdateAndDeleteOwnership(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, author := h.register(t, "author@x.com", models.RoleUser)
	_, other := h.register(t, "other@x.com", models.RoleUser)
	_, admin := h.register(t, "admin@x.com", models.RoleAdmin)
	ad := h.createAd(t, other, "Kettle")
	comment, err := h.comments.AddComment(ctx, author, ad.PK, "original comment")
	require.NoError(t, err)

	// The ad owner does not own the comment.
	_, err = h.comments.UpdateComment(ctx, other, ad.PK, comment.PK, "hijacked text")
	assertCode(t, err, models.CodeForbidden, models.MsgAccessDenied)

	updated, err := h.comments.UpdateComment(ctx, author, ad.PK, comment.PK, "edited by author")
	require.NoError(t, err)
	assert.Equal(t, "edited by author", updated.Text)

	assertCode(t, h.comments.DeleteComment(ctx, other, ad.PK, comment.PK), models.CodeForbidden, models.MsgAccessDenied)
	require.NoError(t, h.comments.DeleteComment(ctx, admin, ad.PK, comment.PK))

	assertCode(t, h.comments.DeleteComment(ctx, admin, ad.PK, comment.PK), models.CodeNotFound, models.MsgCommentNotFound)
}

func TestCommentService_DeletedAuthorRendering(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, admin := h.register(t, "admin@x.com", models.RoleAdmin)
	_, seller := h.register(t, "seller@x.com", models.RoleUser)
	leaver, leaverP := h.register(t, "leaver@x.com", models.RoleUser)
	require.NoError(t, h.users.UpdateMyImage(ctx, leaverP, pngUpload(t)))

	ad := h.createAd(t, seller, "Desk lamp")
	_, err := h.comments.AddComment(ctx, leaverP, ad.PK, "still for sale?")
	require.NoError(t, err)

	require.NoError(t, h.mgmt.SoftDeleteUser(ctx, admin, leaver.ID))

	list, err := h.comments.ListComments(ctx, seller, ad.PK)
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, models.DeletedUserName, list.Results[0].AuthorFirstName)
	assert.Nil(t, list.Results[0].AuthorImage)
	assert.Equal(t, leaver.ID, list.Results[0].Author)
}

// failingUserLookups fails every GetByID after the first failAfter calls.
type failingUserLookups struct {
	repository.UserRepository
	mu        sync.Mutex
	calls     int
	failAfter int
}

func (f *failingUserLookups) GetByID(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls > f.failAfter
	f.mu.Unlock()
	if fail {
		return nil, errors.New("connection reset by peer")
	}
	return f.UserRepository.GetByID(ctx, id)
}

func TestCommentService_UpdateCommentAuthorLookupFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, seller := h.register(t, "seller@x.com", models.RoleUser)
	_, buyer := h.register(t, "buyer@x.com", models.RoleUser)
	ad := h.createAd(t, seller, "Bookshelf")
	comment, err := h.comments.AddComment(ctx, buyer, ad.PK, "does it come apart?")
	require.NoError(t, err)

	// The ownership check succeeds, the author lookup for the response fails.
	users := &failingUserLookups{UserRepository: h.repos.Users, failAfter: 1}
	comments := NewCommentService(&repository.Repositories{
		Users:       users,
		Credentials: h.repos.Credentials,
		Ads:         h.repos.Ads,
		Comments:    h.repos.Comments,
	}, testBaseURL)

	_, err = comments.UpdateComment(ctx, buyer, ad.PK, comment.PK, "still available?")
	assertCode(t, err, models.CodeInternal, models.MsgInternal)
	assert.Equal(t, 2, users.calls)
}
