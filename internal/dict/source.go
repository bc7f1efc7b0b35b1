// Package dict holds the dictionary domain logic: the CSV importer, the
// Mozc TSV exporter, and the interfaces the storage backends implement.
package dict

import "context"

// WordWithPos is one row of the words/pos_codes join consumed by the
// exporter.
type WordWithPos struct {
	Reading string
	Word    string
	PosName string
}

// Entry is one word record as written by the importer.
type Entry struct {
	Reading     string
	Word        string
	PosCode     int32
	AttrID      int32
	Collocation string
}

// DictionarySource is a backend that can serve the exporter and initialize
// the schema. Two implementations exist: a direct PostgreSQL connection and
// the Supabase PostgREST API.
type DictionarySource interface {
	// FetchWordsWithPos returns all words joined to their part-of-speech
	// name, ordered by (reading, word) ascending.
	FetchWordsWithPos(ctx context.Context) ([]WordWithPos, error)

	// InitializeSchema idempotently creates the three tables, the
	// updated_at trigger and the seed part-of-speech rows.
	InitializeSchema(ctx context.Context) error
}

// WordStore is the write-side contract the importer needs. Only the direct
// SQL backend implements it; imports never go through the remote API.
type WordStore interface {
	// ResolvePartOfSpeech looks up a part-of-speech code by name. Absent
	// names yield an *UnknownPartOfSpeechError, never a new row.
	ResolvePartOfSpeech(ctx context.Context, name string) (int32, error)

	// ResolveOrCreateAttribute looks up an attribute id by name, creating
	// the row when absent. Creation survives a concurrent-insert race by
	// re-reading after a uniqueness conflict.
	ResolveOrCreateAttribute(ctx context.Context, name string) (int32, error)

	// UpsertWord inserts or updates on the (reading, word, pos_code) key
	// and reports whether the row was created. An update touches
	// collocation, attr_id and updated_at only.
	UpsertWord(ctx context.Context, entry Entry) (created bool, err error)
}
