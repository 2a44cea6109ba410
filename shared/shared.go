package shared

import (
	"reflect"
	"strings"

	"tasktracker/shared/constant"
	"tasktracker/shared/dto"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuildCacheKey joins key parts with a colon.
func BuildCacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// TransformFields converts the non-nil pointer fields of a struct into a $set document
// keyed by their bson tag. Plain values and untagged fields are skipped.
func TransformFields(data any) bson.M {
	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}

	updatedFields := bson.M{}

	if val.Kind() != reflect.Struct {
		return updatedFields
	}

	typ := val.Type()

	for index := range val.NumField() {
		field := val.Field(index)
		if field.Kind() != reflect.Pointer || field.IsNil() {
			continue
		}

		fieldName, _, _ := strings.Cut(typ.Field(index).Tag.Get("bson"), ",")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		updatedFields[fieldName] = field.Elem().Interface()
	}

	return updatedFields
}

// ParseObjectID reports whether id is a valid document id.
func ParseObjectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}

	return oid, true
}

func FilterByID(id primitive.ObjectID) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    constant.FieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
			},
		},
	}
}

func FilterByField(field string, value any) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    field,
				Value:    value,
				Operator: dto.FilterOperatorEq,
			},
		},
	}
}
