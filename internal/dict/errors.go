package dict

import "fmt"

// ConnectionError wraps a failure to reach the backend or authenticate
// against it. Always fatal.
type ConnectionError struct {
	Backend string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaError wraps a failure during schema initialization. The whole
// initialization transaction has been rolled back by the time it is returned.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema initialization failed: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// UnknownPartOfSpeechError reports a part-of-speech name that is not present
// in the pos_codes reference table. The importer never creates pos rows:
// each code pairs with an externally fixed dictionary cost, so an automatic
// insert would produce a code no cost mapping knows about.
type UnknownPartOfSpeechError struct {
	Name string
}

func (e *UnknownPartOfSpeechError) Error() string {
	return fmt.Sprintf("unknown part of speech %q (register it in pos_codes first)", e.Name)
}

// RowError wraps any per-row failure other than the handled
// unknown-part-of-speech case. Rows failing this way are counted and the
// import continues.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
