package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnknownFieldType = errors.New("unknown attribute field type")
	ErrInvalidMetadata  = errors.New("invalid product metadata")
)

// FieldType is the closed set of kinds a category attribute can take.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeSelect FieldType = "select"
)

// ParseFieldType validates s against the known field types. An empty string
// means text.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(strings.ToLower(strings.TrimSpace(s))) {
	case "", FieldTypeText:
		return FieldTypeText, nil
	case FieldTypeNumber:
		return FieldTypeNumber, nil
	case FieldTypeSelect:
		return FieldTypeSelect, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFieldType, s)
}

// AttributeDefinition is a user-defined field declared on a category.
type AttributeDefinition struct {
	Label     string    `json:"label" bson:"label"`
	Key       string    `json:"key" bson:"key"`
	FieldType FieldType `json:"fieldType" bson:"fieldType"`
	Options   []string  `json:"options" bson:"options"`
}

// Category is a node of the catalog forest. Parent is nil for roots.
type Category struct {
	ID          primitive.ObjectID    `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string                `json:"name" bson:"name"`
	Slug        string                `json:"slug" bson:"slug"`
	Description string                `json:"description" bson:"description"`
	Parent      *primitive.ObjectID   `json:"parent" bson:"parent"`
	Attributes  []AttributeDefinition `json:"attributes" bson:"attributes"`
	CreatedAt   time.Time             `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt" bson:"updatedAt"`
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return c.Parent == nil || c.Parent.IsZero()
}

// ResolvedAttribute is an attribute as seen from a (possibly deeper) category.
// InheritedFrom holds the contributing ancestor's name, nil for own attributes.
type ResolvedAttribute struct {
	AttributeDefinition `bson:",inline"`
	InheritedFrom       *string `json:"inheritedFrom" bson:"inheritedFrom"`
}

// FlatCategory is one row of the indented category listing.
type FlatCategory struct {
	ID          primitive.ObjectID  `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Level       int                 `json:"level"`
	ParentID    *primitive.ObjectID `json:"parentId"`
	DisplayName string              `json:"displayName"`
}

// CategoryNode is the nested presentation used by navigation menus.
type CategoryNode struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Slug     string             `json:"slug"`
	Level    int                `json:"level"`
	Children []CategoryNode     `json:"children"`
}

// OptionList accepts either a JSON array or a comma separated string, the
// admin form posts both.
type OptionList []string

func (o *OptionList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*o = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = strings.Split(s, ",")
	return nil
}

// AttributeInput is the raw attribute row submitted by the admin form.
type AttributeInput struct {
	Label     string     `json:"label" form:"label"`
	Key       string     `json:"key" form:"key"`
	FieldType string     `json:"fieldType" form:"fieldType"`
	Options   OptionList `json:"options" form:"options"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// AttributeKey derives the default key from a label.
func AttributeKey(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "_")
}

// ParseAttributes turns form rows into definitions. Rows with a blank label
// are dropped; an unknown field type rejects the whole list.
func ParseAttributes(inputs []AttributeInput) ([]AttributeDefinition, error) {
	attrs := make([]AttributeDefinition, 0, len(inputs))
	for _, in := range inputs {
		label := strings.TrimSpace(in.Label)
		if label == "" {
			continue
		}

		fieldType, err := ParseFieldType(in.FieldType)
		if err != nil {
			return nil, err
		}

		key := strings.TrimSpace(in.Key)
		if key == "" {
			key = AttributeKey(label)
		}

		options := make([]string, 0, len(in.Options))
		for _, opt := range in.Options {
			if opt = strings.TrimSpace(opt); opt != "" {
				options = append(options, opt)
			}
		}

		attrs = append(attrs, AttributeDefinition{
			Label:     label,
			Key:       key,
			FieldType: fieldType,
			Options:   options,
		})
	}
	return attrs, nil
}

// CoerceMetadata converts submitted metadata strings into typed values using
// the attributes visible to the product's category. Empty values are dropped.
// Keys without a matching attribute are kept as plain strings.
func CoerceMetadata(attrs []ResolvedAttribute, raw map[string]string) (map[string]interface{}, error) {
	byKey := make(map[string]AttributeDefinition, len(attrs))
	for _, a := range attrs {
		// first declaration wins, ancestors come first
		if _, ok := byKey[a.Key]; !ok {
			byKey[a.Key] = a.AttributeDefinition
		}
	}

	out := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		def, ok := byKey[key]
		if !ok {
			out[key] = value
			continue
		}

		switch def.FieldType {
		case FieldTypeNumber:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidMetadata, def.Label)
			}
			out[key] = f
		case FieldTypeSelect:
			if len(def.Options) > 0 && !containsString(def.Options, value) {
				return nil, fmt.Errorf("%w: %q is not an option of %s", ErrInvalidMetadata, value, def.Label)
			}
			out[key] = value
		default:
			out[key] = value
		}
	}
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// CategoryRequest is the create/update payload for a category. Parent is a
// hex id or empty for a root.
type CategoryRequest struct {
	Name        string           `json:"name" form:"name" validate:"required"`
	Slug        string           `json:"slug" form:"slug"`
	Description string           `json:"description" form:"description"`
	Parent      string           `json:"parent" form:"parent"`
	Attributes  []AttributeInput `json:"attributes"`
}
