package dto

import (
	"go.mongodb.org/mongo-driver/bson"
)

const FilterOperatorEq = "eq"

type Filter struct {
	Field    string
	Value    any
	Operator string
}

// ToBSON renders a single field condition. Unknown operators yield an empty document.
func (f *Filter) ToBSON() bson.M {
	switch f.Operator {
	case FilterOperatorEq:
		return bson.M{f.Field: f.Value}
	default:
		return bson.M{}
	}
}

// FilterGroup is a conjunction of Filter and nested FilterGroup entries.
type FilterGroup struct {
	Filters []any
}

// ToBSON renders the group as a query document. A group holding a single
// condition is rendered without the $and wrapper.
func (f *FilterGroup) ToBSON() bson.M {
	clauses := bson.A{}

	for _, filter := range f.Filters {
		switch fill := filter.(type) {
		case Filter:
			if doc := fill.ToBSON(); len(doc) > 0 {
				clauses = append(clauses, doc)
			}
		case FilterGroup:
			if doc := fill.ToBSON(); len(doc) > 0 {
				clauses = append(clauses, doc)
			}
		}
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		doc, _ := clauses[0].(bson.M)

		return doc
	}

	return bson.M{"$and": clauses}
}

// And returns a group requiring both f and filter.
func (f FilterGroup) And(filter any) FilterGroup {
	return FilterGroup{
		Filters: []any{f, filter},
	}
}
