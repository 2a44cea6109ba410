package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tasktracker/infras/otel"
	"tasktracker/shared/constant"
	"tasktracker/shared/dto"
	"tasktracker/shared/logger"
)

var (
	errRequiredFilter = errors.New("required filter")
)

// Repository provides traced document operations on one collection.
type Repository[T any] struct {
	collection *mongo.Collection
	otel       otel.Otel
	entitas    string
}

func NewRepository[T any](entitasName string, collection *mongo.Collection, otl otel.Otel) Repository[T] {
	return Repository[T]{
		collection: collection,
		otel:       otl,
		entitas:    entitasName,
	}
}

func (repo *Repository[T]) spanName(operation string) string {
	return fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entitas, operation)
}

// Insert stores model and returns the id assigned to it.
func (repo *Repository[T]) Insert(ctx context.Context, model T) (any, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.spanName("Insert"))
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, "insertOne "+repo.collection.Name())

	res, err := repo.collection.InsertOne(ctx, model)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to insert data (%s): %w", repo.entitas, err)
	}

	return res.InsertedID, nil
}

// Find returns every document matching filter. The result is never nil.
func (repo *Repository[T]) Find(ctx context.Context, filter dto.FilterGroup, sort bson.D) ([]T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.spanName("Find"))
	defer scope.End()

	query := filter.ToBSON()
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}

	models := make([]T, 0)

	cursor, err := repo.collection.Find(ctx, query, opts)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return models, fmt.Errorf("failed to find data (%s): %w", repo.entitas, err)
	}

	if err = cursor.All(ctx, &models); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return models, fmt.Errorf("failed to decode data (%s): %w", repo.entitas, err)
	}

	return models, nil
}

// FindOne returns the first document matching filter. found is false when nothing matched.
func (repo *Repository[T]) FindOne(ctx context.Context, filter dto.FilterGroup) (model T, found bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.spanName("FindOne"))
	defer scope.End()

	query := filter.ToBSON()
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = repo.collection.FindOne(ctx, query).Decode(&model)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model, false, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model, false, fmt.Errorf("failed to get data (%s): %w", repo.entitas, err)
	}

	return model, true, nil
}

// FindOneAndSet applies fields with $set to the first document matching filter and
// returns the document as it is after the update. An empty field set only reads it.
func (repo *Repository[T]) FindOneAndSet(ctx context.Context, filter dto.FilterGroup, fields bson.M) (model T, found bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.spanName("FindOneAndSet"))
	defer scope.End()

	query := filter.ToBSON()
	if len(query) == 0 {
		return model, false, errRequiredFilter
	}

	if len(fields) == 0 {
		return repo.FindOne(ctx, filter)
	}

	scope.SetAttributes(map[string]any{
		constant.OtelQueryAttributeKey: query,
		"update":                       fields,
	})

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err = repo.collection.FindOneAndUpdate(ctx, query, bson.M{"$set": fields}, opts).Decode(&model)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model, false, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model, false, fmt.Errorf("failed to update data (%s): %w", repo.entitas, err)
	}

	return model, true, nil
}

// DeleteOne removes the first document matching filter and reports how many were removed.
func (repo *Repository[T]) DeleteOne(ctx context.Context, filter dto.FilterGroup) (int64, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.spanName("DeleteOne"))
	defer scope.End()

	query := filter.ToBSON()
	if len(query) == 0 {
		return 0, errRequiredFilter
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	res, err := repo.collection.DeleteOne(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to delete data (%s): %w", repo.entitas, err)
	}

	return res.DeletedCount, nil
}
