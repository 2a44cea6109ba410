package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	EntityName = "task"

	FieldOwner     = "uid"
	FieldTitle     = "title"
	FieldCompleted = "completed"
)

// Task is a stored task. Owner is the verified subject that created it.
type Task struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Owner     string             `bson:"uid"`
	Title     string             `bson:"title"`
	Completed bool               `bson:"completed"`
}
