package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tasktracker/config"
	"tasktracker/infras/mongo"
	"tasktracker/infras/otel"
	"tasktracker/internal/domains/task/model"
	"tasktracker/shared"
	"tasktracker/shared/constant"
	gDto "tasktracker/shared/dto"
	gRepo "tasktracker/shared/repository"
)

type Task interface {
	ListByOwner(ctx context.Context, owner string) ([]model.Task, error)
	Create(ctx context.Context, task model.Task) (model.Task, error)
	Update(ctx context.Context, filter gDto.FilterGroup, fields bson.M) (model.Task, bool, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Task]
	otel otel.Otel
}

func New(db *mongo.Connection, cfg *config.Config, otel otel.Otel) Task {
	collection := db.Database.Collection(cfg.DB.Mongo.Collection)

	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Task](model.EntityName, collection, otel),
		otel:       otel,
	}
}

// ListByOwner returns the owner's tasks in creation order.
func (r *repositoryImpl) ListByOwner(ctx context.Context, owner string) ([]model.Task, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".task.ListByOwner")
	defer scope.End()

	return r.Find(ctx, shared.FilterByField(model.FieldOwner, owner), bson.D{{Key: constant.FieldID, Value: 1}}) //nolint:wrapcheck
}

func (r *repositoryImpl) Create(ctx context.Context, task model.Task) (model.Task, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".task.Create")
	defer scope.End()

	insertedID, err := r.Insert(ctx, task)
	if err != nil {
		return task, err //nolint:wrapcheck
	}

	id, ok := insertedID.(primitive.ObjectID)
	if !ok {
		err = fmt.Errorf("unexpected inserted id type %T", insertedID)
		scope.TraceError(err)

		return task, err
	}

	task.ID = id

	return task, nil
}

func (r *repositoryImpl) Update(ctx context.Context, filter gDto.FilterGroup, fields bson.M) (model.Task, bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".task.Update")
	defer scope.End()

	return r.FindOneAndSet(ctx, filter, fields) //nolint:wrapcheck
}

// Delete removes the matching task. Deleting a task that does not exist is not an error.
func (r *repositoryImpl) Delete(ctx context.Context, filter gDto.FilterGroup) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".task.Delete")
	defer scope.End()

	deleted, err := r.DeleteOne(ctx, filter)
	if err != nil {
		return err //nolint:wrapcheck
	}

	scope.SetAttribute("task.deleted", deleted)

	return nil
}
