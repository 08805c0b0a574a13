package predictor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"career-predictor/internal/career/form"
	commonhttp "career-predictor/internal/common/http"
	"career-predictor/internal/common/logger"
)

type HTTPConfig struct {
	BaseURL    string
	Path       string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// HTTP asks a remote model service for the label.
type HTTP struct {
	config *HTTPConfig
	client *commonhttp.Client
	logger logger.Logger
}

type predictRequest struct {
	Age        float64 `json:"age"`
	CGPA       float64 `json:"cgpa"`
	Risk       float64 `json:"risk"`
	Leadership float64 `json:"leadership"`
	Networking float64 `json:"networking"`
	Tech       float64 `json:"tech"`
	Finance    float64 `json:"finance"`
	Siblings   float64 `json:"siblings"`
}

type predictResponse struct {
	Prediction string `json:"prediction"`
}

func NewHTTP(cfg *HTTPConfig, log logger.Logger) *HTTP {
	return &HTTP{
		config: cfg,
		client: commonhttp.NewClient(cfg.Timeout).WithRetries(cfg.MaxRetries, cfg.Backoff),
		logger: log.WithFields(map[string]interface{}{"predictor": "http"}),
	}
}

func (h *HTTP) Predict(ctx context.Context, values form.Values) (Label, error) {
	req, err := newPredictRequest(values)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(h.config.BaseURL, "/") + h.config.Path
	start := time.Now()

	var resp predictResponse
	if err := h.client.PostJSON(ctx, url, req, &resp); err != nil {
		h.logger.Warn("prediction request failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return "", fmt.Errorf("predict via %s: %w", url, err)
	}

	label := strings.TrimSpace(resp.Prediction)
	if label == "" {
		return "", fmt.Errorf("predict via %s: empty prediction", url)
	}

	h.logger.Debug("prediction received", map[string]interface{}{
		"prediction": label,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return Label(label), nil
}

func newPredictRequest(values form.Values) (*predictRequest, error) {
	nums := make(map[form.Field]float64, len(form.Fields()))
	for _, f := range form.Fields() {
		n, ok := values.Float(f)
		if !ok {
			return nil, fmt.Errorf("field %s is not numeric", f)
		}
		nums[f] = n
	}
	return &predictRequest{
		Age:        nums[form.FieldAge],
		CGPA:       nums[form.FieldCGPA],
		Risk:       nums[form.FieldRisk],
		Leadership: nums[form.FieldLeadership],
		Networking: nums[form.FieldNetworking],
		Tech:       nums[form.FieldTech],
		Finance:    nums[form.FieldFinance],
		Siblings:   nums[form.FieldSiblings],
	}, nil
}
