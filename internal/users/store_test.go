package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educonnect/internal/auth"
)

var userCols = []string{"id", "name", "email", "role", "created_at"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestStore_ListByRole(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery("FROM users WHERE role = \\$1").
		WithArgs("Teacher").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("t1", "Ada", "ada@example.com", "Teacher", now).
			AddRow("t2", "Alan", "alan@example.com", "Teacher", now))

	users, err := store.ListByRole(context.Background(), auth.RoleTeacher)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "t2", users[1].ID)
	assert.Empty(t, users[0].PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_List_Empty(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("FROM users ORDER BY").WillReturnRows(sqlmock.NewRows(userCols))

	users, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestStore_ListStudentsNotInCourse(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("NOT EXISTS \\(SELECT 1 FROM enrollments").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("s1", "Sam", "s@example.com", "Student", time.Now()))

	users, err := store.ListStudentsNotInCourse(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("FROM users WHERE id = \\$1").WithArgs("x").WillReturnRows(sqlmock.NewRows(userCols))

	_, err := store.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	store, mock := newMockStore(t)
	name := "Grace"
	mock.ExpectQuery("UPDATE users SET").
		WithArgs("u1", "Grace", nil, nil).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "Grace", "g@example.com", "Student", time.Now()))

	u, err := store.Update(context.Background(), "u1", Update{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Grace", u.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update_EmailTaken(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"same case", "alice@example.com"},
		{"different case", "ALICE@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectQuery("UPDATE users SET").
				WithArgs("u2", nil, tt.email, nil).
				WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_lower_key"})

			_, err := store.Update(context.Background(), "u2", Update{Email: &tt.email})
			assert.ErrorIs(t, err, ErrEmailTaken)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").WithArgs("u2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), "u1"))
	assert.ErrorIs(t, store.Delete(context.Background(), "u2"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
