package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Task=MockTaskService

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"tasktracker/config"
	"tasktracker/infras/otel"
	"tasktracker/internal/domains/task/model"
	"tasktracker/internal/domains/task/model/dto"
	"tasktracker/internal/domains/task/repository"
	"tasktracker/shared"
	"tasktracker/shared/constant"
	gDto "tasktracker/shared/dto"
	"tasktracker/shared/failure"
)

type Task interface {
	List(ctx context.Context) ([]dto.TaskResponse, error)
	Create(ctx context.Context, req dto.CreateTaskRequest) (dto.TaskResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo repository.Task
	cfg  *config.Config
	otel otel.Otel
}

func New(repo repository.Task, cfg *config.Config, otel otel.Otel) Task {
	return &serviceImpl{
		repo: repo,
		cfg:  cfg,
		otel: otel,
	}
}

func requester(ctx context.Context) (string, error) {
	owner, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if owner == "" {
		return "", failure.MissingBearerToken
	}

	return owner, nil
}

// targetFilter selects the task a mutation applies to. Unless ownership is enforced the
// id alone is matched, so any authenticated caller can change any task.
func (s *serviceImpl) targetFilter(id, owner string) (gDto.FilterGroup, bool) {
	oid, ok := shared.ParseObjectID(id)
	if !ok {
		return gDto.FilterGroup{}, false
	}

	filter := shared.FilterByID(oid)
	if s.cfg.App.EnforceOwnership {
		filter = filter.And(shared.FilterByField(model.FieldOwner, owner))
	}

	return filter, true
}

func (s *serviceImpl) List(ctx context.Context) (res []dto.TaskResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	owner, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tasks")

		return nil, failure.StoreUnavailable(fmt.Errorf("failed to list tasks: %w", err))
	}

	return dto.FromModels(tasks), nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateTaskRequest) (res dto.TaskResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	owner, err := requester(ctx)
	if err != nil {
		return res, err
	}

	task, err := s.repo.Create(ctx, req.ToModel(owner))
	if err != nil {
		log.Error().Err(err).Msg("failed to create task")

		return res, failure.StoreUnavailable(fmt.Errorf("failed to create task: %w", err))
	}

	res.FromModel(task)

	return res, nil
}

// Update merges the provided fields into the task and returns it as stored afterwards.
// A nil response means there was no such task.
func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateTaskRequest) (res *dto.TaskResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	owner, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	filter, ok := s.targetFilter(id, owner)
	if !ok {
		log.Debug().Str("id", id).Msg("task id is not a valid object id")

		return nil, nil
	}

	task, found, err := s.repo.Update(ctx, filter, shared.TransformFields(req))
	if err != nil {
		log.Error().Err(err).Msg("failed to update task")

		return nil, failure.StoreUnavailable(fmt.Errorf("failed to update task: %w", err))
	}

	if !found {
		return nil, nil
	}

	res = &dto.TaskResponse{}
	res.FromModel(task)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	owner, err := requester(ctx)
	if err != nil {
		return err
	}

	filter, ok := s.targetFilter(id, owner)
	if !ok {
		return nil
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete task")

		return failure.StoreUnavailable(fmt.Errorf("failed to delete task: %w", err))
	}

	return nil
}
