package cms

import (
	"encoding/json"
	"fmt"
)

// Entry is a single CMS record with a flat attribute map. The upstream API
// sometimes nests fields under "attributes" and sometimes returns them flat;
// decodeEntry is the only place aware of that, so callers never branch on
// response shape.
type Entry struct {
	ID         int64
	DocumentID string
	Attributes map[string]interface{}
}

// String returns the attribute as a string, or "" when absent or not a string.
func (e *Entry) String(key string) string {
	value, _ := e.Attributes[key].(string)
	return value
}

// Float returns the attribute as a float64, tolerating JSON numbers and
// numeric strings. Missing or unparseable values yield 0.
func (e *Entry) Float(key string) float64 {
	switch typed := e.Attributes[key].(type) {
	case float64:
		return typed
	case json.Number:
		value, _ := typed.Float64()
		return value
	case string:
		var value float64
		_, _ = fmt.Sscanf(typed, "%g", &value)
		return value
	default:
		return 0
	}
}

// Int returns the attribute as an int64, truncating floats.
func (e *Entry) Int(key string) int64 {
	return int64(e.Float(key))
}

// Bool returns the attribute as a bool, or false when absent.
func (e *Entry) Bool(key string) bool {
	value, _ := e.Attributes[key].(bool)
	return value
}

// Map returns the attribute as a nested object, or nil.
func (e *Entry) Map(key string) map[string]interface{} {
	value, _ := e.Attributes[key].(map[string]interface{})
	return value
}

// Slice returns the attribute as a list, or nil.
func (e *Entry) Slice(key string) []interface{} {
	value, _ := e.Attributes[key].([]interface{})
	return value
}

// Relation returns a related entry expanded via populate. Both the v4 shape
// ({"data": {...}}) and the flat v5 shape are handled.
func (e *Entry) Relation(key string) *Entry {
	raw := e.Attributes[key]
	if raw == nil {
		return nil
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	if inner, ok := obj["data"].(map[string]interface{}); ok {
		obj = inner
	}
	if obj == nil {
		return nil
	}

	entry := decodeEntry(obj)
	return &entry
}

// decodeEntry flattens a raw CMS object into an Entry. Fields nested under
// "attributes" are merged with top-level fields; id and documentId are lifted
// out of the attribute map.
func decodeEntry(raw map[string]interface{}) Entry {
	entry := Entry{Attributes: make(map[string]interface{}, len(raw))}

	for key, value := range raw {
		switch key {
		case "id":
			if number, ok := value.(float64); ok {
				entry.ID = int64(number)
			}
		case "documentId":
			if text, ok := value.(string); ok {
				entry.DocumentID = text
			}
		case "attributes":
			if nested, ok := value.(map[string]interface{}); ok {
				for nestedKey, nestedValue := range nested {
					if nestedKey == "documentId" {
						if text, ok := nestedValue.(string); ok {
							entry.DocumentID = text
						}
						continue
					}
					entry.Attributes[nestedKey] = nestedValue
				}
			}
		default:
			entry.Attributes[key] = value
		}
	}

	return entry
}
