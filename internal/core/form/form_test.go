package form

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/hauldesk/hauldesk/internal/core/lookup"
)

func receivableConfig() *Config {
	return &Config{
		Title: "Receivable",
		Groups: []Group{
			{
				Title: "Details",
				Fields: []Field{
					{Name: "description", Label: "Description", Kind: KindText, Required: true},
					{Name: "amount", Label: "Amount", Kind: KindNumber, Required: true},
					{Name: "due_date", Label: "Due date", Kind: KindDate},
					{Name: "client_id", Label: "Client", Kind: KindRemoteSelect, Source: &lookup.Source{
						Collection: "clients", ValueKey: "id", LabelKey: "name", SearchKeys: []string{"name"},
					}},
				},
			},
		},
	}
}

func receivableSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string", "minLength": 1},
			"amount":      map[string]any{"type": "number", "minimum": 0},
			"due_date":    map[string]any{"type": "string"},
			"client_id":   map[string]any{"type": "string"},
		},
		"required": []any{"description", "amount"},
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := receivableConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	missingSource := &Config{Title: "Bad", Groups: []Group{{Fields: []Field{
		{Name: "ref", Kind: KindRemoteSelect},
	}}}}
	if err := missingSource.Validate(); err == nil {
		t.Error("remote-select without source should be rejected")
	}

	missingOptions := &Config{Title: "Bad", Groups: []Group{{Fields: []Field{
		{Name: "status", Kind: KindSelect},
	}}}}
	if err := missingOptions.Validate(); err == nil {
		t.Error("select without options should be rejected")
	}
}

func TestDescribe_AllHiddenGroupRendersNothing(t *testing.T) {
	cfg := &Config{
		Title: "Client",
		Groups: []Group{
			{Title: "Internal", Description: "never shown", Fields: []Field{
				{Name: "user_id", Kind: KindHidden, Hidden: true},
				{Name: "origin", Kind: KindHidden, Hidden: true},
			}},
			{Title: "Details", Fields: []Field{
				{Name: "name", Kind: KindText},
			}},
		},
	}

	plan := cfg.Describe(map[string]any{"user_id": "u1"}, nil)
	if len(plan.Groups) != 1 {
		t.Fatalf("all-hidden group must be suppressed entirely, got %d groups", len(plan.Groups))
	}
	if plan.Groups[0].Title != "Details" {
		t.Errorf("wrong group survived: %+v", plan.Groups[0])
	}
}

func TestDescribe_HiddenFieldWithEmptyDefaultOmitted(t *testing.T) {
	cfg := &Config{
		Title: "Service",
		Groups: []Group{{Fields: []Field{
			{Name: "name", Kind: KindText},
			{Name: "parent_id", Kind: KindHidden, Hidden: true},
		}}},
	}

	plan := cfg.Describe(map[string]any{}, nil)
	if len(plan.Groups[0].Fields) != 1 {
		t.Errorf("hidden field with empty default should be omitted: %+v", plan.Groups[0].Fields)
	}

	plan = cfg.Describe(map[string]any{"parent_id": "p1"}, nil)
	if len(plan.Groups[0].Fields) != 2 {
		t.Errorf("hidden field with a value should render: %+v", plan.Groups[0].Fields)
	}
}

func TestDescribe_AttachesFieldErrors(t *testing.T) {
	plan := receivableConfig().Describe(nil, map[string]string{"amount": "amount is required"})
	for _, f := range plan.Groups[0].Fields {
		if f.Name == "amount" && f.Error != "amount is required" {
			t.Errorf("field error not attached: %+v", f)
		}
	}
}

func TestSubmit_EmptyNumberFailsValidationBeforeHandler(t *testing.T) {
	engine := NewEngine(receivableConfig(), receivableSchema(), "/receivables")

	called := false
	res := engine.Submit(t.Context(), url.Values{
		"description": {"Freight to Santos"},
		"amount":      {""},
	}, func(ctx context.Context, values map[string]any) error {
		called = true
		return nil
	})

	if res.OK {
		t.Error("submit should fail validation")
	}
	if called {
		t.Error("handler must not run when validation fails")
	}
	if _, ok := res.FieldErrors["amount"]; !ok {
		t.Errorf("expected amount field error, got %v", res.FieldErrors)
	}
	if res.Message == "" {
		t.Error("expected the first validation message to surface")
	}
}

func TestSubmit_CoercesDateToUTCMidnight(t *testing.T) {
	engine := NewEngine(receivableConfig(), receivableSchema(), "/receivables")

	var got map[string]any
	res := engine.Submit(t.Context(), url.Values{
		"description": {"Freight to Santos"},
		"amount":      {"1200.50"},
		"due_date":    {"2024-03-01"},
	}, func(ctx context.Context, values map[string]any) error {
		got = values
		return nil
	})

	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if got["due_date"] != "2024-03-01T00:00:00.000Z" {
		t.Errorf("due_date: got %v", got["due_date"])
	}
	if got["amount"] != 1200.50 {
		t.Errorf("amount: got %v", got["amount"])
	}
	if res.RedirectTo != "/receivables" {
		t.Errorf("expected redirect to back href, got %q", res.RedirectTo)
	}
}

func TestSubmit_HandlerErrorBecomesResult(t *testing.T) {
	engine := NewEngine(receivableConfig(), receivableSchema(), "/receivables")

	res := engine.Submit(t.Context(), url.Values{
		"description": {"Freight"},
		"amount":      {"10"},
	}, func(ctx context.Context, values map[string]any) error {
		return errors.New("connection reset")
	})

	if res.OK {
		t.Error("handler failure must not report success")
	}
	if res.Message == "" {
		t.Error("handler failure should produce a user-facing message")
	}
	if res.RedirectTo != "" {
		t.Error("no redirect on failure")
	}
}

func TestSubmitPartial_DoesNotEnforceRequired(t *testing.T) {
	engine := NewEngine(receivableConfig(), receivableSchema(), "/receivables")

	// Only the amount is posted; the required description stays untouched.
	raw := url.Values{"amount": {"75"}}

	res := engine.Submit(t.Context(), raw, func(ctx context.Context, values map[string]any) error {
		return nil
	})
	if res.OK {
		t.Error("full submit must still enforce required fields")
	}

	var got map[string]any
	res = engine.SubmitPartial(t.Context(), raw, func(ctx context.Context, values map[string]any) error {
		got = values
		return nil
	})
	if !res.OK {
		t.Fatalf("partial submit should accept a subset of fields: %+v", res)
	}
	if got["amount"] != 75.0 {
		t.Errorf("amount: got %v", got["amount"])
	}
}

func TestSubmitPartial_StillEnforcesConstraints(t *testing.T) {
	engine := NewEngine(receivableConfig(), receivableSchema(), "/receivables")

	called := false
	res := engine.SubmitPartial(t.Context(), url.Values{"amount": {"-5"}}, func(ctx context.Context, values map[string]any) error {
		called = true
		return nil
	})

	if res.OK || called {
		t.Error("constraint violations must fail even without required")
	}
	if _, ok := res.FieldErrors["amount"]; !ok {
		t.Errorf("expected amount field error, got %v", res.FieldErrors)
	}
}

func TestSubmit_UndeclaredFieldsIgnored(t *testing.T) {
	engine := NewEngine(receivableConfig(), nil, "")

	var got map[string]any
	engine.Submit(t.Context(), url.Values{
		"description": {"Freight"},
		"amount":      {"10"},
		"injected":    {"value"},
	}, func(ctx context.Context, values map[string]any) error {
		got = values
		return nil
	})

	if _, ok := got["injected"]; ok {
		t.Error("fields outside the config must not be collected")
	}
}

func TestHints_DerivedFromKind(t *testing.T) {
	hints := receivableConfig().Hints()
	if hints["amount"].String() != "number" {
		t.Errorf("amount hint: %s", hints["amount"])
	}
	if hints["due_date"].String() != "date" {
		t.Errorf("due_date hint: %s", hints["due_date"])
	}
	if hints["client_id"].String() != "uuid" {
		t.Errorf("client_id hint: %s", hints["client_id"])
	}
	if hints["description"].String() != "string" {
		t.Errorf("description hint: %s", hints["description"])
	}
}
