package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "username", "first_name"}).
			AddRow(1, "ivan@example.com", "Ivan")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
			WillReturnRows(rows)

		user, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "ivan@example.com", user.Username)
		assert.False(t, user.IsDeleted())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.GetByID(ctx, 99)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.GetByID(ctx, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE username = $1`)).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByUsername(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CountByDeleted(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE deleted_at IS NULL`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE deleted_at IS NOT NULL`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	active, err := repo.CountByDeleted(ctx, false)
	require.NoError(t, err)
	deleted, err := repo.CountByDeleted(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, int64(4), active)
	assert.Equal(t, int64(2), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id IN ($1,$2)`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "deleted_at"}).
			AddRow(1, "a@x.com", nil).
			AddRow(2, "id2@deleted", now))

	users, err := repo.GetByIDs(ctx, []uint{1, 2})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[2].IsDeleted())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_GetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCredentialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN users ON users.id = credentials.id WHERE users.username = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "role"}).AddRow(5, "hash", "ADMIN"))

	credential, err := repo.GetByUsername(context.Background(), "root@x.com")
	require.NoError(t, err)
	assert.Equal(t, uint(5), credential.ID)
	assert.Equal(t, models.RoleAdmin, credential.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_UpdateRole(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "credentials" SET "role"=$1 WHERE id = $2`)).
		WithArgs(models.RoleAdmin, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.UpdateRole(ctx, 5, models.RoleAdmin))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "credentials" SET "role"=$1 WHERE id = $2`)).
		WithArgs(models.RoleAdmin, 6).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	assert.ErrorIs(t, repo.UpdateRole(ctx, 6, models.RoleAdmin), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdRepository_ListByActiveOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAdRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN users ON users.id = ads.user_id WHERE users.username = $1 AND users.deleted_at IS NULL ORDER BY ads.id`)).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "user_id"}).
			AddRow(1, "Bike", 100, 3).
			AddRow(2, "Desk", 50, 3))

	ads, err := repo.ListByActiveOwner(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Len(t, ads, 2)
	assert.Equal(t, "Bike", ads[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdRepository_DeleteByUserID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAdRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "ads" WHERE user_id = $1`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteByUserID(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	comment := &models.Comment{Text: "Is it still available?", AdID: 1, UserID: 2}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), comment))
	assert.Equal(t, uint(1), comment.ID)
	assert.NotZero(t, comment.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_DeleteByAdOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE ad_id IN (SELECT "id" FROM "ads" WHERE user_id = $1)`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteByAdOwner(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	tx := NewTransactor(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	credentialCreated := false
	err := tx.WithinTransaction(ctx, func(repos *Repositories) error {
		user := &models.User{Username: "a@x.com"}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		credentialCreated = true
		return repos.Credentials.Create(ctx, &models.Credential{ID: user.ID, PasswordHash: "h", Role: models.RoleUser})
	})

	assert.False(t, credentialCreated)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_Commits(t *testing.T) {
	db, mock := setupMockDB(t)
	tx := NewTransactor(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "credentials" WHERE "credentials"."id" = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tx.WithinTransaction(ctx, func(repos *Repositories) error {
		return repos.Credentials.Delete(ctx, 7)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
