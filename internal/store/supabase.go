package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/TanukiMa/my-workflow-test/internal/config"
	"github.com/TanukiMa/my-workflow-test/internal/dict"
)

// PostgREST remote procedures provisioned on the Supabase project.
const (
	rpcFetchWordsWithPos = "get_words_with_pos"
	rpcInitializeSchema  = "initialize_medical_dict_tables"
)

// RemoteAPI is the Supabase (PostgREST) dictionary source. It speaks plain
// HTTP: RPC calls under /rest/v1/rpc and table reads under /rest/v1.
type RemoteAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewRemoteAPI builds a RemoteAPI source from the resolved configuration.
// The configuration must already have passed RequireRemote.
func NewRemoteAPI(cfg *config.Config, logger *slog.Logger) *RemoteAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteAPI{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.Key,
		client:  http.DefaultClient,
		logger:  logger,
	}
}

// apiError is a non-2xx PostgREST response with whatever diagnostics the
// error body carried.
type apiError struct {
	Status  int
	Message string
	Code    string
	Hint    string
}

func (e *apiError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "remote API error (HTTP %d)", e.Status)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Hint != "" {
		b.WriteString(" hint: " + e.Hint)
	}
	return b.String()
}

// InitializeSchema runs the server-side initializer RPC, which creates the
// tables, trigger and seed rows in one database function call.
func (r *RemoteAPI) InitializeSchema(ctx context.Context) error {
	if _, err := r.rpc(ctx, rpcInitializeSchema); err != nil {
		return &dict.SchemaError{Err: err}
	}
	r.logger.Info("database initialized", "via", rpcInitializeSchema)
	return nil
}

// FetchWordsWithPos returns all words joined to their part-of-speech name.
// The RPC is preferred; when it fails (typically because the function was
// never provisioned) the equivalent embedded table query is used instead.
// The whole fetch is wrapped in the fixed-count retry helper.
func (r *RemoteAPI) FetchWordsWithPos(ctx context.Context) ([]dict.WordWithPos, error) {
	return withRetry(ctx, r.logger, "fetch_words_with_pos", DefaultMaxAttempts, nil, r.fetchOnce)
}

func (r *RemoteAPI) fetchOnce(ctx context.Context) ([]dict.WordWithPos, error) {
	body, rpcErr := r.rpc(ctx, rpcFetchWordsWithPos)
	if rpcErr == nil {
		return decodeRPCRows(body)
	}

	r.logger.Debug("rpc unavailable, falling back to table query",
		"rpc", rpcFetchWordsWithPos, "error", rpcErr)

	body, err := r.get(ctx,
		"/rest/v1/words?select=reading,word,pos_codes(name)&order=reading.asc,word.asc")
	if err != nil {
		return nil, err
	}
	return decodeTableRows(body)
}

// rpc POSTs an empty-argument call to /rest/v1/rpc/<name> and returns the
// response body.
func (r *RemoteAPI) rpc(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/rest/v1/rpc/"+name, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return r.do(req, "rpc "+name)
}

func (r *RemoteAPI) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return r.do(req, "GET "+path)
}

func (r *RemoteAPI) do(req *http.Request, op string) ([]byte, error) {
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: %w", op, parseAPIError(resp.StatusCode, body))
	}
	return body, nil
}

// parseAPIError pulls the PostgREST diagnostics out of an error body.
// Bodies are JSON on the happy path but gjson tolerates anything else.
func parseAPIError(status int, body []byte) *apiError {
	return &apiError{
		Status:  status,
		Message: gjson.GetBytes(body, "message").String(),
		Code:    gjson.GetBytes(body, "code").String(),
		Hint:    gjson.GetBytes(body, "hint").String(),
	}
}

// decodeRPCRows parses the flat row shape returned by get_words_with_pos.
func decodeRPCRows(body []byte) ([]dict.WordWithPos, error) {
	var rows []struct {
		Reading string `json:"reading"`
		Word    string `json:"word"`
		PosName string `json:"pos_name"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode rpc rows: %w", err)
	}

	result := make([]dict.WordWithPos, 0, len(rows))
	for _, row := range rows {
		result = append(result, dict.WordWithPos{
			Reading: row.Reading,
			Word:    row.Word,
			PosName: row.PosName,
		})
	}
	return result, nil
}

// decodeTableRows parses the embedded shape of the fallback table query,
// where the part-of-speech name nests under pos_codes.
func decodeTableRows(body []byte) ([]dict.WordWithPos, error) {
	var rows []struct {
		Reading  string `json:"reading"`
		Word     string `json:"word"`
		PosCodes *struct {
			Name string `json:"name"`
		} `json:"pos_codes"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode table rows: %w", err)
	}

	result := make([]dict.WordWithPos, 0, len(rows))
	for _, row := range rows {
		pos := ""
		if row.PosCodes != nil {
			pos = row.PosCodes.Name
		}
		result = append(result, dict.WordWithPos{
			Reading: row.Reading,
			Word:    row.Word,
			PosName: pos,
		})
	}
	return result, nil
}
