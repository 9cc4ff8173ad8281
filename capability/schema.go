package capability

import (
	"fmt"
	"math"

	"github.com/abhiabhi150614/edu-ai-pro/core"
)

// Schema builder helpers. Capability input schemas are plain
// map[string]interface{} in JSON Schema shape, matching what the reasoning
// service consumes.

// ObjectSchema creates an object schema with the given properties and
// required field names.
func ObjectSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProperty creates a string property with a description.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// IntegerProperty creates an integer property with a description.
func IntegerProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// BooleanProperty creates a boolean property with a description.
func BooleanProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}

// EnumProperty creates a string property restricted to the given values.
func EnumProperty(description string, values []string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
}

// ValidateArgs checks proposed arguments against a capability's schema:
// required fields present, no unknown fields, types matching. JSON numbers
// arrive as float64; integral values are coerced in place for integer
// properties.
func ValidateArgs(schema map[string]interface{}, args map[string]interface{}) error {
	properties, _ := schema["properties"].(map[string]interface{})

	if required, ok := schema["required"].([]string); ok {
		for _, name := range required {
			if _, present := args[name]; !present {
				return core.ValidationErrorf("missing required argument %q", name)
			}
		}
	}

	for name, value := range args {
		propRaw, known := properties[name]
		if !known {
			return core.ValidationErrorf("unknown argument %q", name)
		}
		prop, _ := propRaw.(map[string]interface{})
		if err := validateValue(name, prop, value, args); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(name string, prop map[string]interface{}, value interface{}, args map[string]interface{}) error {
	typ, _ := prop["type"].(string)
	switch typ {
	case "string":
		s, ok := value.(string)
		if !ok {
			return core.ValidationErrorf("argument %q must be a string", name)
		}
		if enum, ok := prop["enum"].([]string); ok {
			for _, v := range enum {
				if s == v {
					return nil
				}
			}
			return core.ValidationErrorf("argument %q must be one of %v", name, enum)
		}
	case "integer":
		switch n := value.(type) {
		case int:
		case int64:
		case float64:
			if n != math.Trunc(n) {
				return core.ValidationErrorf("argument %q must be an integer, got %v", name, n)
			}
			args[name] = int(n)
		default:
			return core.ValidationErrorf("argument %q must be an integer, got %T", name, value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return core.ValidationErrorf("argument %q must be a boolean", name)
		}
	case "number":
		switch value.(type) {
		case float64, int, int64:
		default:
			return core.ValidationErrorf("argument %q must be a number, got %T", name, value)
		}
	case "":
		return fmt.Errorf("property %q has no type", name)
	}
	return nil
}
