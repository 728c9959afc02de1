package coerce

import (
	"fmt"
	"testing"
)

func TestCoerce_EmptyStringBecomesAbsent(t *testing.T) {
	for _, hint := range []Hint{HintNumber, HintDate, HintUUID} {
		out := Coerce(map[string]string{"x": ""}, map[string]Hint{"x": hint})
		if _, ok := out["x"]; ok {
			t.Errorf("hint %s: empty string should be dropped, got %v", hint, out["x"])
		}
	}
}

func TestCoerce_Number(t *testing.T) {
	out := Coerce(map[string]string{"amount": "149.90"}, map[string]Hint{"amount": HintNumber})
	if out["amount"] != 149.90 {
		t.Errorf("expected 149.90, got %v", out["amount"])
	}

	out = Coerce(map[string]string{"amount": "abc"}, map[string]Hint{"amount": HintNumber})
	if _, ok := out["amount"]; ok {
		t.Error("malformed number should be dropped")
	}
}

func TestCoerce_NoHintPassesThrough(t *testing.T) {
	out := Coerce(map[string]string{"name": "Acme Cargo"}, nil)
	if out["name"] != "Acme Cargo" {
		t.Errorf("expected pass-through, got %v", out["name"])
	}
}

func TestToISO_DateOnly(t *testing.T) {
	iso, ok := ToISO("2024-01-15")
	if !ok {
		t.Fatal("expected 2024-01-15 to parse")
	}
	if iso != "2024-01-15T00:00:00.000Z" {
		t.Errorf("expected UTC midnight, got %s", iso)
	}
}

func TestToISO_SpaceSeparatorAndMissingZone(t *testing.T) {
	iso, ok := ToISO("2024-03-01 08:30:00")
	if !ok {
		t.Fatal("expected timestamp to parse")
	}
	if iso != "2024-03-01T08:30:00.000Z" {
		t.Errorf("got %s", iso)
	}
}

func TestToISO_ExplicitOffsetConvertsToUTC(t *testing.T) {
	iso, ok := ToISO("2024-03-01T10:00:00-03:00")
	if !ok {
		t.Fatal("expected timestamp to parse")
	}
	if iso != "2024-03-01T13:00:00.000Z" {
		t.Errorf("got %s", iso)
	}
}

func TestToISO_Garbage(t *testing.T) {
	if _, ok := ToISO("not-a-date"); ok {
		t.Error("garbage should not parse")
	}
}

func TestCoerce_Boolean(t *testing.T) {
	cases := map[string]any{
		"true":  true,
		"on":    true,
		"1":     true,
		"false": false,
		"off":   false,
		"0":     false,
		"":      false,
	}
	for input, want := range cases {
		out := Coerce(map[string]string{"active": input}, map[string]Hint{"active": HintBool})
		if out["active"] != want {
			t.Errorf("input %q: expected %v, got %v", input, want, out["active"])
		}
	}

	out := Coerce(map[string]string{"active": "maybe"}, map[string]Hint{"active": HintBool})
	if _, ok := out["active"]; ok {
		t.Error("unrecognized boolean input should be dropped")
	}
}

func TestCoerce_UUID(t *testing.T) {
	valid := "6f1c1714-94ab-4a76-9c3e-1b2d3c4d5e6f"
	out := Coerce(map[string]string{"client_id": valid}, map[string]Hint{"client_id": HintUUID})
	if out["client_id"] != valid {
		t.Errorf("valid uuid should pass through unchanged, got %v", out["client_id"])
	}

	for _, bad := range []string{"not-a-uuid", "{6f1c1714-94ab-4a76-9c3e-1b2d3c4d5e6f}", "6f1c1714-94ab-0a76-9c3e-1b2d3c4d5e6f"} {
		out := Coerce(map[string]string{"client_id": bad}, map[string]Hint{"client_id": HintUUID})
		if _, ok := out["client_id"]; ok {
			t.Errorf("invalid uuid %q should be dropped", bad)
		}
	}
}

func TestCoerce_IdempotentOnRestringifiedValues(t *testing.T) {
	hints := map[string]Hint{"n": HintNumber, "id": HintUUID}
	first := Coerce(map[string]string{"n": "42.5", "id": "6f1c1714-94ab-4a76-9c3e-1b2d3c4d5e6f"}, hints)

	again := Coerce(map[string]string{
		"n":  fmt.Sprint(first["n"]),
		"id": first["id"].(string),
	}, hints)

	if first["n"] != again["n"] {
		t.Errorf("number coercion not idempotent: %v vs %v", first["n"], again["n"])
	}
	if first["id"] != again["id"] {
		t.Errorf("uuid coercion not idempotent: %v vs %v", first["id"], again["id"])
	}
}

func TestDiff(t *testing.T) {
	initial := map[string]any{"name": "Acme", "status": "active", "amount": 10.0}
	submitted := map[string]any{"name": "Acme", "status": "overdue", "note": "call back"}

	patch := Diff(initial, submitted)

	if len(patch) != 2 {
		t.Fatalf("expected 2 changed keys, got %d: %v", len(patch), patch)
	}
	if patch["status"] != "overdue" {
		t.Errorf("changed value missing from patch: %v", patch)
	}
	if patch["note"] != "call back" {
		t.Errorf("new key missing from patch: %v", patch)
	}
	if _, ok := patch["name"]; ok {
		t.Error("unchanged value should not be in patch")
	}
}
