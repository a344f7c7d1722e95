// Package supply talks to the platform backend that owns questions,
// categories, and simulator definitions. The engine treats this boundary as
// untrusted: payloads are validated before a session may start, and a fetch
// failure is surfaced as-is so the caller can show "could not load" instead
// of starting an empty exam. No retry or backoff here; that belongs to the
// backend's own client stack.
package supply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/edustack/examsim/internal/exam"
)

// ErrUnavailable wraps transport-level failures so handlers can map them to
// a single "cannot start" response.
var ErrUnavailable = errors.New("question supply unavailable")

type Client struct {
	base     string
	hc       *http.Client
	validate *validator.Validate
}

func NewClient(base string) *Client {
	return &Client{
		base:     base,
		hc:       &http.Client{Timeout: 10 * time.Second},
		validate: validator.New(),
	}
}

type optionPayload struct {
	ID        string `json:"id" validate:"required"`
	BodyHTML  string `json:"body_html"`
	IsCorrect bool   `json:"is_correct"`
}

type questionPayload struct {
	ID                string          `json:"id" validate:"required"`
	BodyHTML          string          `json:"body_html"`
	JustificationHTML string          `json:"justification_html"`
	Category          exam.Category   `json:"category"`
	Options           []optionPayload `json:"options" validate:"min=1,dive"`
}

type simulatorPayload struct {
	ID             string            `json:"id" validate:"required"`
	Name           string            `json:"name" validate:"required"`
	DurationMin    int               `json:"duration_min" validate:"gt=0"`
	Navigate       string            `json:"navigate" validate:"omitempty,oneof=free sequential"`
	Review         bool              `json:"review"`
	CategoryQuotas map[string]int    `json:"category_quotas"`
	Questions      []questionPayload `json:"questions" validate:"min=1,dive"`
}

// FetchSimulator loads one simulator definition with its question pool.
func (c *Client) FetchSimulator(ctx context.Context, id string) (exam.Definition, error) {
	u := c.base + "/simulators/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return exam.Definition{}, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return exam.Definition{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return exam.Definition{}, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}
	var p simulatorPayload
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return exam.Definition{}, fmt.Errorf("%w: bad payload: %v", ErrUnavailable, err)
	}
	if err := c.validate.Struct(p); err != nil {
		return exam.Definition{}, fmt.Errorf("invalid simulator %s: %w", id, err)
	}
	return toDefinition(p), nil
}

func toDefinition(p simulatorPayload) exam.Definition {
	def := exam.Definition{
		ID:             p.ID,
		Name:           p.Name,
		DurationMin:    p.DurationMin,
		FreeNavigation: p.Navigate != "sequential",
		ReviewEnabled:  p.Review,
		CategoryQuotas: p.CategoryQuotas,
	}
	def.Questions = make([]exam.Question, 0, len(p.Questions))
	for _, qp := range p.Questions {
		question := exam.Question{
			ID:                qp.ID,
			BodyHTML:          qp.BodyHTML,
			JustificationHTML: qp.JustificationHTML,
			CategoryID:        qp.Category.ID,
			CategoryName:      qp.Category.Name,
		}
		for _, op := range qp.Options {
			question.Options = append(question.Options, exam.Option{
				ID:       op.ID,
				BodyHTML: op.BodyHTML,
				Correct:  op.IsCorrect,
			})
		}
		def.Questions = append(def.Questions, question)
	}
	return def
}
