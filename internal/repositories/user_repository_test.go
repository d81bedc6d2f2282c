package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/models"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"})
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	mock, _, repo := newMock(t)
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.User{ID: "u1", Email: "a@b.c", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserGetByEmailIsCaseInsensitive(t *testing.T) {
	mock, _, repo := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM users WHERE lower\(email\) = \$1 LIMIT 1`).
		WithArgs("ann@example.com").
		WillReturnRows(userRows().AddRow("u1", "Ann", "ann@example.com", "$2a$hash", "admin", now))

	u, err := repo.GetByEmail(context.Background(), "  Ann@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "$2a$hash", u.PasswordHash)
}

func TestUserGetByIDNotFound(t *testing.T) {
	mock, _, repo := newMock(t)
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).WithArgs("nope").WillReturnRows(userRows())

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserExists(t *testing.T) {
	mock, _, repo := newMock(t)
	mock.ExpectQuery(`SELECT 1 FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM users WHERE id = \$1`).
		WithArgs("u9").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	ok, err := repo.Exists(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), "u9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserUpdateMissing(t *testing.T) {
	mock, _, repo := newMock(t)
	mock.ExpectExec(`UPDATE users SET name = \$1, email = \$2, role = \$3 WHERE id = \$4`).
		WithArgs("N", "n@x.io", "moderator", "u404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.User{ID: "u404", Name: "N", Email: "n@x.io", Role: models.RoleModerator})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserListOrdersNewestThenID(t *testing.T) {
	mock, _, repo := newMock(t)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM users ORDER BY created_at DESC, id DESC`).
		WillReturnRows(userRows().
			AddRow("u2", "B", "b@x.io", "h", "user", at).
			AddRow("u1", "A", "a@x.io", "h", "admin", at))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
