package dto

import (
	"tasktracker/internal/domains/task/model"
)

type CreateTaskRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// ToModel builds the task owned by owner. The id is left for the store to assign.
func (c *CreateTaskRequest) ToModel(owner string) model.Task {
	return model.Task{
		Owner:     owner,
		Title:     c.Title,
		Completed: c.Completed,
	}
}

// UpdateTaskRequest holds the fields a client sent. Absent fields stay nil and are left untouched.
type UpdateTaskRequest struct {
	Title     *string `bson:"title"     json:"title"`
	Completed *bool   `bson:"completed" json:"completed"`
}

type TaskResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func (r *TaskResponse) FromModel(model model.Task) {
	r.ID = model.ID.Hex()
	r.Title = model.Title
	r.Completed = model.Completed
}

// FromModels converts a list of tasks. The result is never nil so it renders as [].
func FromModels(models []model.Task) []TaskResponse {
	res := make([]TaskResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}
