package enrollments

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewStore(conn), mock
}

func TestStore_List(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("FROM enrollments").WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "course_id", "enrolled_at"}).
			AddRow(int64(1), "s1", int64(2), time.Now()))

	es, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, es, 1)
	assert.Equal(t, "s1", es[0].UserID)
}

func TestStore_Create_Errors(t *testing.T) {
	tests := []struct {
		name string
		code pq.ErrorCode
		want error
	}{
		{"duplicate", "23505", ErrDuplicate},
		{"unknown user or course", "23503", ErrUnknownReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectQuery("INSERT INTO enrollments").WillReturnError(&pq.Error{Code: tt.code})

			err := store.Create(context.Background(), &Enrollment{UserID: "s1", CourseID: 1})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStore_Create(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("INSERT INTO enrollments").
		WithArgs("s1", int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	e := &Enrollment{UserID: "s1", CourseID: 1}
	require.NoError(t, store.Create(context.Background(), e))
	assert.Equal(t, int64(4), e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM enrollments").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, store.Delete(context.Background(), 3), ErrNotFound)
}
