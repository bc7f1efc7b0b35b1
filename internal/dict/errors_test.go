package dict

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSchemaError_Unwrap(t *testing.T) {
	cause := errors.New("relation already exists")
	err := &SchemaError{Err: cause}

	if !errors.Is(err, cause) {
		t.Error("SchemaError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "schema initialization failed") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestConnectionError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ConnectionError{Backend: "PostgreSQL (localhost:5432)", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("ConnectionError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "localhost:5432") {
		t.Errorf("Error() = %q, want backend named", err.Error())
	}
}

func TestUnknownPartOfSpeechError_Message(t *testing.T) {
	err := &UnknownPartOfSpeechError{Name: "未知語"}
	if !strings.Contains(err.Error(), "未知語") {
		t.Errorf("Error() = %q, want the offending name included", err.Error())
	}
}

func TestRowError_WrapsThroughFormatting(t *testing.T) {
	cause := errors.New("constraint violated")
	err := fmt.Errorf("import: %w", &RowError{Line: 7, Err: cause})

	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatal("RowError not found in chain")
	}
	if rowErr.Line != 7 {
		t.Errorf("Line = %d, want 7", rowErr.Line)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through RowError")
	}
}
