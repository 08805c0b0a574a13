// Package predictor maps a completed career form to a career label.
package predictor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"career-predictor/internal/career/form"
	"career-predictor/internal/common/config"
	"career-predictor/internal/common/logger"
)

// Label is the predicted career.
type Label string

const (
	SoftwareEngineer Label = "Software Engineer"
	DataScientist    Label = "Data Scientist"
	ProductManager   Label = "Product Manager"
	FinancialAnalyst Label = "Financial Analyst"
	Entrepreneur     Label = "Entrepreneur"
)

// Labels is the closed set the stub draws from.
var Labels = []Label{
	SoftwareEngineer,
	DataScientist,
	ProductManager,
	FinancialAnalyst,
	Entrepreneur,
}

// Predictor resolves a label for validated form values.
type Predictor interface {
	Predict(ctx context.Context, values form.Values) (Label, error)
}

// Func adapts a function to Predictor.
type Func func(ctx context.Context, values form.Values) (Label, error)

func (f Func) Predict(ctx context.Context, values form.Values) (Label, error) {
	return f(ctx, values)
}

// NewFromConfig builds the provider named by cfg.Prediction.Provider. db is
// only used by the catalog provider and may be nil otherwise.
func NewFromConfig(cfg *config.Config, db *sql.DB, log logger.Logger) (Predictor, error) {
	p := cfg.Prediction
	switch p.Provider {
	case "", "stub":
		return NewStub(config.GetDuration(p.StubDelay)), nil
	case "http":
		return NewHTTP(&HTTPConfig{
			BaseURL:    p.BaseURL,
			Path:       p.Path,
			Timeout:    config.GetDuration(p.Timeout),
			MaxRetries: p.MaxRetries,
			Backoff:    100 * time.Millisecond,
		}, log), nil
	case "catalog":
		if db == nil {
			return nil, fmt.Errorf("catalog provider requires a database connection")
		}
		return NewCatalog(db, log), nil
	}
	return nil, fmt.Errorf("unknown prediction provider %q", p.Provider)
}
