package registry

import (
	"career-predictor/internal/common/config"
	"career-predictor/internal/common/errors"
	"career-predictor/internal/common/validation"
)

const (
	CategoryCareer = "career"
	WorkflowCareer = "career-prediction"
	Version        = "1.0.0"
)

type careerActivity struct {
	taskType    string
	displayName string
	description string
	output      map[string]interface{}
	errorCodes  []errors.ErrorCode
	tags        []string
}

var careerActivities = []careerActivity{
	{
		taskType:    "validate-career-form",
		displayName: "Validate Career Form",
		description: "Checks age, CGPA and the six self ratings and returns per-field messages",
		output: object(map[string]interface{}{
			"isValid": map[string]interface{}{"type": "boolean"},
			"errors":  map[string]interface{}{"type": "object", "additionalProperties": map[string]interface{}{"type": "string"}},
		}),
		errorCodes: []errors.ErrorCode{errors.ErrCodeUnknownField, errors.ErrCodeInvalidInput},
		tags:       []string{"form", "validation"},
	},
	{
		taskType:    "predict-career",
		displayName: "Predict Career",
		description: "Validates the form and asks the prediction service for a career, one submission per session",
		output: object(map[string]interface{}{
			"submissionId": map[string]interface{}{"type": "string"},
			"prediction":   map[string]interface{}{"type": "string"},
			"status":       map[string]interface{}{"type": "string"},
			"durationMs":   map[string]interface{}{"type": "integer"},
		}),
		errorCodes: []errors.ErrorCode{
			errors.ErrCodeValidationFailed,
			errors.ErrCodePredictionFailed,
			errors.ErrCodePredictionTimeout,
			errors.ErrCodeSessionLocked,
			errors.ErrCodeCatalogUnavailable,
			errors.ErrCodeInvalidInput,
		},
		tags: []string{"prediction", "async"},
	},
	{
		taskType:    "share-prediction",
		displayName: "Share Prediction",
		description: "Publishes the predicted career with the app link and hashtag",
		output: object(map[string]interface{}{
			"shared":  map[string]interface{}{"type": "boolean"},
			"channel": map[string]interface{}{"type": "string"},
			"message": map[string]interface{}{"type": "string"},
		}),
		errorCodes: []errors.ErrorCode{errors.ErrCodeNothingToShare, errors.ErrCodeShareFailed, errors.ErrCodeInvalidInput},
		tags:       []string{"share", "sns"},
	},
}

func object(props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": props}
}

// Career builds the registry for the career workers from their input schemas
// and the worker settings in cfg.
func Career(cfg *config.Config) *ActivityRegistry {
	reg := &ActivityRegistry{Version: Version}
	for _, ca := range careerActivities {
		wc := config.GetWorkerConfig(cfg, ca.taskType)
		input, _ := validation.Document(ca.taskType)

		codes := make([]string, len(ca.errorCodes))
		for i, c := range ca.errorCodes {
			codes[i] = string(c)
		}

		status := StatusCompleted
		if !wc.Enabled {
			status = StatusPlanned
		}

		reg.Activities = append(reg.Activities, Activity{
			ID:                   ca.taskType,
			DisplayName:          ca.displayName,
			Description:          ca.description,
			Category:             CategoryCareer,
			Version:              Version,
			TaskType:             ca.taskType,
			ImplementationStatus: status,
			InputSchema:          input,
			OutputSchema:         ca.output,
			ErrorCodes:           codes,
			Timeout:              config.GetDuration(wc.Timeout).String(),
			Retries:              wc.MaxRetries,
			Workflows:            []string{WorkflowCareer},
			Tags:                 ca.tags,
		})
	}
	reg.Touch()
	return reg
}

// Merge copies activities from src that dst does not have yet, and refreshes
// the schemas, timeouts and error codes of those it does, keeping any status
// and version edits made by hand.
func Merge(dst, src *ActivityRegistry) {
	for _, a := range src.Activities {
		existing, ok := dst.Find(a.ID)
		if !ok {
			dst.Activities = append(dst.Activities, a)
			continue
		}
		existing.InputSchema = a.InputSchema
		existing.OutputSchema = a.OutputSchema
		existing.ErrorCodes = a.ErrorCodes
		existing.Timeout = a.Timeout
		existing.Retries = a.Retries
	}
	dst.Touch()
}
