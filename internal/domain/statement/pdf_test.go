package statement

import (
	"bytes"
	"testing"
	"time"
)

func TestGenerateProducesPDF(t *testing.T) {
	data, err := Generate(Subject{
		EmployeeName: "Sara Ahmed",
		JobNumber:    "E-1042",
		Department:   "Finance",
		Subtype:      "salary",
		IssuedAt:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output does not look like a PDF")
	}
}

func TestGenerateStatusVariant(t *testing.T) {
	data, err := Generate(Subject{
		EmployeeName: "Omar Khalid",
		JobNumber:    "E-2007",
		Subtype:      "status",
		IssuedAt:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected a non-empty document")
	}
}

func TestFileName(t *testing.T) {
	name := FileName("salary", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if name != "salary-statement-20260401.pdf" {
		t.Fatalf("unexpected file name %q", name)
	}
}
