package mindmap

import (
	"strings"
	"testing"
)

// hasError returns true if errs contains an error-severity finding whose
// message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidate_ValidMap(t *testing.T) {
	errs := Validate(buildSample())
	for _, e := range errs {
		t.Errorf("unexpected validation finding: %s", e)
	}
}

func TestValidate_NilRoot(t *testing.T) {
	if !hasError(Validate(&Map{}), "no root") {
		t.Fatal("expected error for missing root")
	}
	if !hasError(Validate(nil), "no root") {
		t.Fatal("expected error for nil map")
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	m := buildSample()
	m.Find("b").ID = "a1"
	errs := Validate(m)
	if !hasError(errs, "duplicate id") {
		t.Fatalf("expected duplicate id error, got %v", errs)
	}
}

func TestValidate_EmptyID(t *testing.T) {
	m := buildSample()
	m.Find("b").ID = ""
	if !hasError(Validate(m), "empty id") {
		t.Fatal("expected empty id error")
	}
}

func TestValidate_DepthMismatch(t *testing.T) {
	m := buildSample()
	m.Find("c1").Depth = 5
	errs := Validate(m)
	if !hasError(errs, "depth 5, want 2") {
		t.Fatalf("expected depth mismatch, got %v", errs)
	}
	// c1x is still stamped 3, which is now also wrong relative to c1.
	if !hasError(errs, "depth 3, want 6") {
		t.Fatalf("expected child depth mismatch, got %v", errs)
	}
}

func TestValidate_Cycle(t *testing.T) {
	m := buildSample()
	c1x := m.Find("c1x")
	c1x.Children = append(c1x.Children, m.Find("c"))
	errs := Validate(m)
	if !hasError(errs, "cycle detected") {
		t.Fatalf("expected cycle error, got %v", errs)
	}
	if len(errs) != 1 {
		t.Errorf("cycle should short-circuit remaining checks, got %d findings", len(errs))
	}
}

func TestValidate_SharedSubtreeIsDuplicate(t *testing.T) {
	m := buildSample()
	shared := m.Find("a1")
	m.Find("b").Children = []*Node{shared}
	if !hasError(Validate(m), "duplicate id") {
		t.Fatal("node reachable through two parents should be a duplicate id")
	}
}

func TestValidate_Warnings(t *testing.T) {
	m := buildSample()
	m.Find("a").Label = ""
	m.Find("b").Color = "blue"
	m.Find("c").Color = "#10B981"
	errs := Validate(m)
	if !hasWarning(errs, "empty label") {
		t.Error("expected empty label warning")
	}
	if !hasWarning(errs, `"blue"`) {
		t.Error("expected colour warning")
	}
	if hasWarning(errs, "#10B981") {
		t.Error("valid colour should not warn")
	}

	res := ValidateAll(m)
	if !res.OK() {
		t.Errorf("warnings alone must not fail validation: %v", res.Errors)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("warnings = %d, want 2", len(res.Warnings))
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{NodeID: "x", Message: "bad", Severity: SeverityError}
	if got := e.Error(); got != `[error] node "x": bad` {
		t.Errorf("Error() = %q", got)
	}
	e = ValidationError{Message: "bad", Severity: SeverityWarning}
	if got := e.Error(); got != "[warning] bad" {
		t.Errorf("Error() = %q", got)
	}
}
