package form

import (
	"context"
	"log"
	"net/url"

	"github.com/hauldesk/hauldesk/internal/core/coerce"
	"github.com/hauldesk/hauldesk/internal/core/validation"
)

// SubmitFunc persists the coerced, validated values. It may issue one or
// many writes; the engine makes no assumption beyond the error return.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// Result is what the submit pipeline reports back to the client. Exactly
// one of OK, FieldErrors, or a failure message describes the outcome.
type Result struct {
	OK          bool              `json:"ok"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	RedirectTo  string            `json:"redirect_to,omitempty"`
	Values      map[string]any    `json:"-"`
}

// Engine runs the submit pipeline for one form config: collect the declared
// fields from the raw form data, coerce them, validate against the optional
// schema, then hand off to the submit handler.
type Engine struct {
	Config    *Config
	Schema    map[string]any
	Hints     map[string]coerce.Hint
	BackHref  string
	validator *validation.Validator
}

func NewEngine(cfg *Config, schema map[string]any, backHref string) *Engine {
	return &Engine{
		Config:    cfg,
		Schema:    schema,
		Hints:     cfg.Hints(),
		BackHref:  backHref,
		validator: validation.NewValidator(),
	}
}

func (e *Engine) Submit(ctx context.Context, raw url.Values, fn SubmitFunc) Result {
	return e.submit(ctx, raw, fn, false)
}

// SubmitPartial runs the pipeline with the schema's required constraint
// stripped, for edit submits that post a subset of the declared fields.
func (e *Engine) SubmitPartial(ctx context.Context, raw url.Values, fn SubmitFunc) Result {
	return e.submit(ctx, raw, fn, true)
}

func (e *Engine) submit(ctx context.Context, raw url.Values, fn SubmitFunc, partial bool) Result {
	values := e.Coerce(raw)

	if e.Schema != nil {
		validate := e.validator.Validate
		if partial {
			validate = e.validator.ValidatePartial
		}
		if err := validate(values, e.Schema); err != nil {
			if ve := validation.GetValidationErrors(err); ve != nil {
				return Result{
					Message:     ve.First(),
					FieldErrors: ve.FieldMap(),
					Values:      values,
				}
			}
			log.Printf("form: validating %q failed: %v", e.Config.Title, err)
			return Result{Message: "could not validate the submitted data"}
		}
	}

	if err := fn(ctx, values); err != nil {
		log.Printf("form: submitting %q failed: %v", e.Config.Title, err)
		return Result{Message: "could not save the record", Values: values}
	}

	return Result{
		OK:         true,
		Message:    "record saved",
		RedirectTo: e.BackHref,
		Values:     values,
	}
}

// Coerce collects one raw value per declared field and applies the hint
// map. Fields absent from the form data stay absent; declared fields the
// client never sent are not defaulted to empty strings.
func (e *Engine) Coerce(raw url.Values) map[string]any {
	collected := make(map[string]string)
	for _, f := range e.Config.Fields() {
		if !raw.Has(f.Name) {
			continue
		}
		collected[f.Name] = raw.Get(f.Name)
	}
	return coerce.Coerce(collected, e.Hints)
}
