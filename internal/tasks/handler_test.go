package tasks

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	tasks  map[int64]Task
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: map[int64]Task{1: {ID: 1, Title: "Essay", CourseID: 1}}, nextID: 2}
}

func (f *fakeRepo) List(context.Context) ([]Task, error) {
	res := []Task{}
	for _, t := range f.tasks {
		res = append(res, t)
	}
	return res, nil
}

func (f *fakeRepo) ListByCourse(_ context.Context, courseID int64) ([]Task, error) {
	res := []Task{}
	for _, t := range f.tasks {
		if t.CourseID == courseID {
			res = append(res, t)
		}
	}
	return res, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (f *fakeRepo) Create(_ context.Context, t *Task) error {
	if t.CourseID != 1 {
		return ErrCourseNotFound
	}
	t.ID = f.nextID
	f.nextID++
	f.tasks[t.ID] = *t
	return nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, upd Update) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	f.tasks[id] = t
	return &t, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func newHandler() (*Handler, *fakeRepo) {
	repo := newFakeRepo()
	return &Handler{Store: repo, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}, repo
}

func do(fn http.HandlerFunc, method, body string, vars map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, "/", strings.NewReader(body))
	r = mux.SetURLVars(r, vars)
	rec := httptest.NewRecorder()
	fn(rec, r)
	return rec
}

func TestHandler_Create(t *testing.T) {
	h, repo := newHandler()

	rec := do(h.Create, http.MethodPost, `{"title":"Lab","course_id":1,"due_date":"2025-05-01T10:00:00Z"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":2`)
	require.NotNil(t, repo.tasks[2].DueDate)

	rec = do(h.Create, http.MethodPost, `{"title":"  ","course_id":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.Create, http.MethodPost, `{"title":"Lab"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.Create, http.MethodPost, `{"title":"Lab","course_id":7}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetUpdateDelete(t *testing.T) {
	h, _ := newHandler()

	rec := do(h.Get, http.MethodGet, "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h.Get, http.MethodGet, "", map[string]string{"id": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.Update, http.MethodPut, `{"title":"Final essay"}`, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Final essay")

	rec = do(h.Update, http.MethodPut, `{"title":""}`, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.Delete, http.MethodDelete, "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h.Delete, http.MethodDelete, "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CreateInCourse(t *testing.T) {
	h, repo := newHandler()

	rec := do(h.CreateInCourse, http.MethodPost, `{"title":"Quiz","course_id":7}`, map[string]string{"courseId": "1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(1), repo.tasks[2].CourseID)

	rec = do(h.CreateInCourse, http.MethodPost, `{"title":"Quiz"}`, map[string]string{"courseId": "5"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ListForCourse(t *testing.T) {
	h, _ := newHandler()

	rec := do(h.ListForCourse, http.MethodGet, "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Essay"`)

	rec = do(h.ListForCourse, http.MethodGet, "", map[string]string{"id": "2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(h.ListForCourse, http.MethodGet, "", map[string]string{"id": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
