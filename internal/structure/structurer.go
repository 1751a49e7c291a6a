package structure

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketbrief/internal/core"
	"marketbrief/internal/llm"
	"marketbrief/internal/logger"
)

var (
	// ErrTransportFailure marks a model call that failed outright or
	// returned no text.
	ErrTransportFailure = errors.New("llm transport failure")
	// ErrParseFailure marks a model response that could not be parsed as
	// a record set.
	ErrParseFailure = errors.New("llm response parse failure")
)

// StructureError reports a recoverable structuring failure. Callers route
// on the failure class with errors.Is and recover the offending model
// output through errors.As; both classes are expected conditions handled
// by the fallback path, never fatal.
type StructureError struct {
	Class error  // ErrTransportFailure or ErrParseFailure
	Raw   string // model output, set for parse failures
	Err   error  // underlying cause
}

func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Class, e.Err)
	}
	return e.Class.Error()
}

func (e *StructureError) Is(target error) bool { return target == e.Class }

func (e *StructureError) Unwrap() error { return e.Err }

// Structurer runs blobs through the language model and validates the
// response into a record set.
type Structurer struct {
	client llm.Completer
	now    func() time.Time
}

// New creates a Structurer backed by the given completion client.
func New(client llm.Completer) *Structurer {
	return &Structurer{
		client: client,
		now:    time.Now,
	}
}

// StructureBlob sends the blob to the model and validates the response.
// Failures come back as a *StructureError carrying the failure class;
// a response without an articles key is a valid empty record set, not a
// failure.
func (s *Structurer) StructureBlob(ctx context.Context, blobText string) (core.RecordSet, error) {
	log := logger.Get()

	system, user := BuildPrompt(blobText)

	log.Debug("Sending blob to LLM for structuring", "blob_bytes", len(blobText))
	response, err := s.client.Complete(ctx, system, user)
	if err != nil {
		return core.RecordSet{}, &StructureError{Class: ErrTransportFailure, Err: err}
	}
	if strings.TrimSpace(response) == "" {
		return core.RecordSet{}, &StructureError{Class: ErrTransportFailure, Err: errors.New("empty response from model")}
	}

	return s.validateResponse(response)
}

// validateResponse parses the model output and normalizes each record:
// missing or short IDs are replaced with deterministic hashes, missing
// extraction timestamps with the current processing time. No other field
// is defaulted here; the persistence boundary backfills the rest.
func (s *Structurer) validateResponse(response string) (core.RecordSet, error) {
	log := logger.Get()

	cleaned := cleanJSONFences(response)

	var recordSet core.RecordSet
	if err := json.Unmarshal([]byte(cleaned), &recordSet); err != nil {
		return core.RecordSet{}, &StructureError{Class: ErrParseFailure, Raw: response, Err: err}
	}

	for i := range recordSet.Articles {
		article := &recordSet.Articles[i]

		if len(article.ID) < 5 {
			article.ID = ArticleID(article.Title, article.SourceURL)
		}
		if article.ExtractedAt == "" {
			article.ExtractedAt = s.now().Format(time.RFC3339)
		}
		article.Origin = core.OriginLLM
	}

	log.Info("Structured articles from LLM response", "count", len(recordSet.Articles))
	return recordSet, nil
}

// StructureOrFallback structures the blob via the model and, when the
// model path fails, synthesizes a degraded record set from the blob's
// own headers. The returned bool reports whether the fallback ran.
func (s *Structurer) StructureOrFallback(ctx context.Context, blobText string) (core.RecordSet, bool) {
	log := logger.Get()

	recordSet, err := s.StructureBlob(ctx, blobText)
	if err == nil {
		return recordSet, false
	}

	var sErr *StructureError
	if errors.As(err, &sErr) && errors.Is(sErr, ErrParseFailure) {
		log.Warn("LLM response was not valid JSON, falling back",
			"error", sErr.Err, "response", truncate(sErr.Raw, 500))
	} else {
		logger.Error("LLM call failed, falling back", err)
	}

	return Synthesize(blobText, s.now()), true
}

// ArticleID derives a deterministic article identifier: the first 16 hex
// characters of the MD5 of title and source URL.
func ArticleID(title, url string) string {
	sum := md5.Sum([]byte(title + "_" + url))
	return hex.EncodeToString(sum[:])[:16]
}

// cleanJSONFences strips markdown code fences and surrounding whitespace
// from a model response. Models often wrap JSON in ```json ... ``` blocks.
// Handles ```json\n{...}\n```, ```\n{...}\n``` and bare JSON.
func cleanJSONFences(response string) string {
	s := strings.TrimSpace(response)
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "```") {
		// Strip opening fence line
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		}
		// Strip closing fence
		if strings.HasSuffix(s, "```") {
			s = s[:len(s)-3]
		}
		s = strings.TrimSpace(s)
	}

	return s
}

// truncate bounds a string for log output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
