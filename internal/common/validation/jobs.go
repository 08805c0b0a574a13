package validation

import (
	"sort"

	"career-predictor/internal/career/form"
)

// formValue accepts what a BPMN variable can carry for a numeric input.
var formValue = map[string]interface{}{
	"type": []interface{}{"string", "number", "null"},
}

func formSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(form.Fields()))
	for _, f := range form.Fields() {
		prop := map[string]interface{}{"type": formValue["type"]}
		if c, ok := form.ConstraintFor(f); ok {
			prop["description"] = c.Message
		}
		props[string(f)] = prop
	}
	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

var sessionID = map[string]interface{}{
	"type":      "string",
	"minLength": 1,
	"maxLength": 128,
}

// jobSchemas are keyed by task type.
var jobSchemas = map[string]map[string]interface{}{
	"validate-career-form": {
		"type":     "object",
		"required": []interface{}{"form"},
		"properties": map[string]interface{}{
			"sessionId": sessionID,
			"form":      formSchema(),
		},
	},
	"predict-career": {
		"type":     "object",
		"required": []interface{}{"sessionId", "form"},
		"properties": map[string]interface{}{
			"sessionId": sessionID,
			"form":      formSchema(),
		},
	},
	"share-prediction": {
		"type":     "object",
		"required": []interface{}{"prediction"},
		"properties": map[string]interface{}{
			"sessionId":  sessionID,
			"prediction": map[string]interface{}{"type": "string", "minLength": 1},
			"url":        map[string]interface{}{"type": "string"},
		},
	},
}

// Document returns the input schema for a task type as a plain JSON document.
func Document(taskType string) (map[string]interface{}, bool) {
	doc, ok := jobSchemas[taskType]
	return doc, ok
}

// TaskTypes lists the task types with a built-in schema, sorted.
func TaskTypes() []string {
	out := make([]string, 0, len(jobSchemas))
	for name := range jobSchemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
