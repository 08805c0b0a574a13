package predictor

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"career-predictor/internal/career/form"
	"career-predictor/internal/common/errors"
	"career-predictor/internal/common/logger"
)

const profilesQuery = `SELECT label, cgpa, risk, leadership, networking, tech, finance
FROM career_profiles
ORDER BY label`

// profileFields are the columns of profilesQuery after the label, in order.
var profileFields = []form.Field{
	form.FieldCGPA,
	form.FieldRisk,
	form.FieldLeadership,
	form.FieldNetworking,
	form.FieldTech,
	form.FieldFinance,
}

// Catalog picks the career_profiles row closest to the submitted scores.
type Catalog struct {
	db     *sql.DB
	logger logger.Logger
}

func NewCatalog(db *sql.DB, log logger.Logger) *Catalog {
	return &Catalog{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"predictor": "catalog"}),
	}
}

type profile struct {
	label  string
	scores []float64
}

func (c *Catalog) Predict(ctx context.Context, values form.Values) (Label, error) {
	want := make([]float64, len(profileFields))
	for i, f := range profileFields {
		n, ok := values.Float(f)
		if !ok {
			return "", fmt.Errorf("field %s is not numeric", f)
		}
		want[i] = n
	}

	profiles, err := c.load(ctx)
	if err != nil {
		return "", errors.NewCatalogUnavailableError(err)
	}
	if len(profiles) == 0 {
		return "", errors.NewCatalogUnavailableError(fmt.Errorf("career_profiles is empty"))
	}

	best, bestDist := profiles[0], math.Inf(1)
	for _, p := range profiles {
		if d := distance(want, p.scores); d < bestDist {
			best, bestDist = p, d
		}
	}

	c.logger.Debug("catalog match", map[string]interface{}{
		"label":    best.label,
		"distance": bestDist,
		"profiles": len(profiles),
	})
	return Label(best.label), nil
}

func (c *Catalog) load(ctx context.Context) ([]profile, error) {
	rows, err := c.db.QueryContext(ctx, profilesQuery)
	if err != nil {
		return nil, fmt.Errorf("query career_profiles: %w", err)
	}
	defer rows.Close()

	var out []profile
	for rows.Next() {
		p := profile{scores: make([]float64, len(profileFields))}
		dest := []interface{}{&p.label}
		for i := range p.scores {
			dest = append(dest, &p.scores[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan career_profiles: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate career_profiles: %w", err)
	}
	return out, nil
}

func distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
