package task_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"tasktracker/infras/otel/mocks"
	taskMocks "tasktracker/internal/domains/task/mocks"
	"tasktracker/internal/domains/task/model/dto"
	"tasktracker/internal/handlers/task"
	"tasktracker/shared/failure"
)

type passThrough struct{}

func (passThrough) Auth(next http.Handler) http.Handler { return next }

func newRouter(t *testing.T) (*chi.Mux, *taskMocks.MockTaskService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := taskMocks.NewMockTaskService(ctrl)

	handler := task.New(service, passThrough{}, mocks.NewOtel())

	mux := chi.NewRouter()
	handler.Router(mux)

	return mux, service
}

func serve(mux *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	return rec
}

func TestHandler_ListTasks(t *testing.T) {
	t.Run("renders an empty list as []", func(t *testing.T) {
		mux, service := newRouter(t)
		service.EXPECT().List(gomock.Any()).Return([]dto.TaskResponse{}, nil)

		rec := serve(mux, http.MethodGet, "/tasks", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		mux, service := newRouter(t)
		service.EXPECT().List(gomock.Any()).Return(nil, failure.StoreUnavailable(errors.New("down")))

		rec := serve(mux, http.MethodGet, "/tasks", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error"`)
	})
}

func TestHandler_CreateTask(t *testing.T) {
	t.Run("ignores unknown fields", func(t *testing.T) {
		mux, service := newRouter(t)
		service.EXPECT().
			Create(gomock.Any(), dto.CreateTaskRequest{Title: "Buy milk"}).
			Return(dto.TaskResponse{ID: "abc", Title: "Buy milk"}, nil)

		rec := serve(mux, http.MethodPost, "/tasks", `{"title":"Buy milk","uid":"someone-else","id":"x"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"abc","title":"Buy milk","completed":false}`, rec.Body.String())
	})

	t.Run("empty body creates an untitled task", func(t *testing.T) {
		mux, service := newRouter(t)
		service.EXPECT().
			Create(gomock.Any(), dto.CreateTaskRequest{}).
			Return(dto.TaskResponse{ID: "abc"}, nil)

		rec := serve(mux, http.MethodPost, "/tasks", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		mux, _ := newRouter(t)

		rec := serve(mux, http.MethodPost, "/tasks", `{"title":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("mistyped field", func(t *testing.T) {
		mux, _ := newRouter(t)

		rec := serve(mux, http.MethodPost, "/tasks", `{"completed":"yes"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_UpdateTask(t *testing.T) {
	t.Run("returns the updated task", func(t *testing.T) {
		mux, service := newRouter(t)
		completed := true
		service.EXPECT().
			Update(gomock.Any(), "abc", dto.UpdateTaskRequest{Completed: &completed}).
			Return(&dto.TaskResponse{ID: "abc", Title: "Buy milk", Completed: true}, nil)

		rec := serve(mux, http.MethodPut, "/tasks/abc", `{"completed":true}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"abc","title":"Buy milk","completed":true}`, rec.Body.String())
	})

	t.Run("missing task renders null", func(t *testing.T) {
		mux, service := newRouter(t)
		service.EXPECT().Update(gomock.Any(), "abc", gomock.Any()).Return(nil, nil)

		rec := serve(mux, http.MethodPut, "/tasks/abc", `{"title":"x"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", rec.Body.String())
	})
}

func TestHandler_DeleteTask(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		mux, service := newRouter(t)
		service.EXPECT().Delete(gomock.Any(), "abc").Return(nil)

		rec := serve(mux, http.MethodDelete, "/tasks/abc", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		mux, service := newRouter(t)
		service.EXPECT().Delete(gomock.Any(), "abc").Return(failure.StoreUnavailable(errors.New("down")))

		rec := serve(mux, http.MethodDelete, "/tasks/abc", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
