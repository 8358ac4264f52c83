package domain

import (
	"encoding/json"
	"testing"
)

type patch struct {
	Description Optional[string] `json:"description"`
	DueDate     Optional[string] `json:"due_date"`
}

func TestOptionalDistinguishesNullFromAbsent(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"description": null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Description.Set || p.Description.Value != nil {
		t.Errorf("explicit null: got Set=%v Value=%v", p.Description.Set, p.Description.Value)
	}
	if p.DueDate.Set {
		t.Error("absent field should not be marked as set")
	}

	current := "old"
	if got := p.Description.Or(&current); got != nil {
		t.Errorf("null should clear, got %q", *got)
	}
	if got := p.DueDate.Or(&current); got == nil || *got != "old" {
		t.Errorf("absent should keep current, got %v", got)
	}
}

func TestOptionalValue(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"description": "new"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Description.Set || p.Description.Value == nil || *p.Description.Value != "new" {
		t.Fatalf("unexpected optional: %+v", p.Description)
	}
	out, err := json.Marshal(p.Description)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"new"` {
		t.Errorf("marshal = %s", out)
	}
}

func TestEnumValidation(t *testing.T) {
	if !Category("Pre-Sales").Valid() || Category("Sales").Valid() {
		t.Error("category validation mismatch")
	}
	if !TaskStatus("in progress").Valid() || TaskStatus("done").Valid() {
		t.Error("status validation mismatch")
	}
	if !TaskPriority("low").Valid() || TaskPriority("urgent").Valid() {
		t.Error("priority validation mismatch")
	}
	if ValidSeniority(0) || !ValidSeniority(5) || ValidSeniority(6) {
		t.Error("seniority bounds mismatch")
	}
}
