package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"tasktracker/config"
	"tasktracker/infras/otel/mocks"
	taskMocks "tasktracker/internal/domains/task/mocks"
	"tasktracker/internal/domains/task/model"
	"tasktracker/internal/domains/task/model/dto"
	"tasktracker/internal/domains/task/service"
	"tasktracker/shared"
	"tasktracker/shared/constant"
	"tasktracker/shared/failure"
)

func asUser(owner string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, owner)
}

func boolPtr(b bool) *bool {
	return &b
}

func newService(t *testing.T, enforceOwnership bool) (service.Task, *taskMocks.MockTask) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockRepo := taskMocks.NewMockTask(ctrl)

	cfg := &config.Config{}
	cfg.App.EnforceOwnership = enforceOwnership

	return service.New(mockRepo, cfg, mocks.NewOtel()), mockRepo
}

func TestTaskService_List(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(repo *taskMocks.MockTask)
		want      []dto.TaskResponse
		wantCode  int
	}{
		{
			name: "lists only the requester's tasks",
			ctx:  asUser("user-a"),
			setupMock: func(repo *taskMocks.MockTask) {
				repo.EXPECT().
					ListByOwner(gomock.Any(), "user-a").
					Return([]model.Task{{ID: id, Owner: "user-a", Title: "Buy milk"}}, nil)
			},
			want: []dto.TaskResponse{{ID: id.Hex(), Title: "Buy milk"}},
		},
		{
			name: "no tasks yields empty list",
			ctx:  asUser("user-b"),
			setupMock: func(repo *taskMocks.MockTask) {
				repo.EXPECT().
					ListByOwner(gomock.Any(), "user-b").
					Return([]model.Task{}, nil)
			},
			want: []dto.TaskResponse{},
		},
		{
			name: "store failure",
			ctx:  asUser("user-a"),
			setupMock: func(repo *taskMocks.MockTask) {
				repo.EXPECT().
					ListByOwner(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("server selection timeout"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:      "no requester",
			ctx:       context.Background(),
			setupMock: func(_ *taskMocks.MockTask) {},
			wantCode:  http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t, false)
			tt.setupMock(repo)

			got, err := svc.List(tt.ctx)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskService_Create(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("owner comes from the verified requester", func(t *testing.T) {
		svc, repo := newService(t, false)

		repo.EXPECT().
			Create(gomock.Any(), model.Task{Owner: "user-a", Title: "Buy milk"}).
			DoAndReturn(func(_ context.Context, task model.Task) (model.Task, error) {
				task.ID = id

				return task, nil
			})

		got, err := svc.Create(asUser("user-a"), dto.CreateTaskRequest{Title: "Buy milk"})
		require.NoError(t, err)
		assert.Equal(t, dto.TaskResponse{ID: id.Hex(), Title: "Buy milk", Completed: false}, got)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, repo := newService(t, false)

		repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(model.Task{}, errors.New("write concern error"))

		_, err := svc.Create(asUser("user-a"), dto.CreateTaskRequest{Title: "Buy milk"})
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}

func TestTaskService_Update(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("only provided fields are set", func(t *testing.T) {
		svc, repo := newService(t, false)

		repo.EXPECT().
			Update(gomock.Any(), shared.FilterByID(id), bson.M{"completed": true}).
			Return(model.Task{ID: id, Owner: "user-a", Title: "Buy milk", Completed: true}, true, nil)

		got, err := svc.Update(asUser("user-a"), id.Hex(), dto.UpdateTaskRequest{Completed: boolPtr(true)})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, dto.TaskResponse{ID: id.Hex(), Title: "Buy milk", Completed: true}, *got)
	})

	t.Run("missing task yields nil", func(t *testing.T) {
		svc, repo := newService(t, false)

		repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(model.Task{}, false, nil)

		got, err := svc.Update(asUser("user-a"), id.Hex(), dto.UpdateTaskRequest{Completed: boolPtr(true)})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("malformed id yields nil without touching the store", func(t *testing.T) {
		svc, _ := newService(t, false)

		got, err := svc.Update(asUser("user-a"), "nonexistent", dto.UpdateTaskRequest{Completed: boolPtr(true)})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, repo := newService(t, false)

		repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(model.Task{}, false, errors.New("server selection timeout"))

		_, err := svc.Update(asUser("user-a"), id.Hex(), dto.UpdateTaskRequest{})
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})

	t.Run("ownership gap: another user can update by id", func(t *testing.T) {
		svc, repo := newService(t, false)

		repo.EXPECT().
			Update(gomock.Any(), shared.FilterByID(id), bson.M{"title": "hijacked"}).
			Return(model.Task{ID: id, Owner: "user-a", Title: "hijacked"}, true, nil)

		title := "hijacked"
		got, err := svc.Update(asUser("user-b"), id.Hex(), dto.UpdateTaskRequest{Title: &title})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "hijacked", got.Title)
	})

	t.Run("enforced ownership scopes the update to the requester", func(t *testing.T) {
		svc, repo := newService(t, true)

		expected := shared.FilterByID(id).And(shared.FilterByField(model.FieldOwner, "user-b"))

		repo.EXPECT().
			Update(gomock.Any(), expected, gomock.Any()).
			Return(model.Task{}, false, nil)

		title := "hijacked"
		got, err := svc.Update(asUser("user-b"), id.Hex(), dto.UpdateTaskRequest{Title: &title})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestTaskService_Delete(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("deletes by id", func(t *testing.T) {
		svc, repo := newService(t, false)

		repo.EXPECT().Delete(gomock.Any(), shared.FilterByID(id)).Return(nil)

		assert.NoError(t, svc.Delete(asUser("user-a"), id.Hex()))
	})

	t.Run("malformed id is a no-op", func(t *testing.T) {
		svc, _ := newService(t, false)

		assert.NoError(t, svc.Delete(asUser("user-a"), "nonexistent"))
	})

	t.Run("store failure", func(t *testing.T) {
		svc, repo := newService(t, false)

		repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("server selection timeout"))

		err := svc.Delete(asUser("user-a"), id.Hex())
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})

	t.Run("ownership gap: another user can delete by id", func(t *testing.T) {
		svc, repo := newService(t, false)

		repo.EXPECT().Delete(gomock.Any(), shared.FilterByID(id)).Return(nil)

		assert.NoError(t, svc.Delete(asUser("user-b"), id.Hex()))
	})

	t.Run("enforced ownership scopes the delete to the requester", func(t *testing.T) {
		svc, repo := newService(t, true)

		expected := shared.FilterByID(id).And(shared.FilterByField(model.FieldOwner, "user-b"))
		repo.EXPECT().Delete(gomock.Any(), expected).Return(nil)

		assert.NoError(t, svc.Delete(asUser("user-b"), id.Hex()))
	})
}
