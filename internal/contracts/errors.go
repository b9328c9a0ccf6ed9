package contracts

import (
	"fmt"
	"strings"
)

// Error taxonomy for the pipeline
// ⭐ SSOT: 파이프라인 오류 분류는 여기서만 정의
//
// TransportError / ExtractionFormatError: 단위 작업만 실패, 런은 계속.
// DataIntegrityError / ConfigurationError: 치명적, 즉시 중단 (non-zero exit).

// TransportError reports a failed external fetch (feed, price history, LLM)
// after the retry budget is exhausted. The affected unit is skipped, the run
// continues.
type TransportError struct {
	Op     string // e.g. "feed fetch", "price history"
	Target string // URL, symbol, or entry link
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s for %s failed: %v", e.Op, e.Target, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExtractionFormatError reports model output that could not be decoded into
// the expected record shape. The entry is skipped, the run continues.
type ExtractionFormatError struct {
	Link string
	Err  error
}

func (e *ExtractionFormatError) Error() string {
	return fmt.Sprintf("extraction output for %s is malformed: %v", e.Link, e.Err)
}

func (e *ExtractionFormatError) Unwrap() error { return e.Err }

// DataIntegrityError reports a merged corpus missing required metric columns.
// Persisting an incomplete schema would corrupt every downstream consumer,
// so this is the one per-run fatal case.
type DataIntegrityError struct {
	Missing []string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("enriched corpus is missing metric columns: %s", strings.Join(e.Missing, ", "))
}

// ConfigurationError reports a missing or invalid required configuration
// value. Fatal at startup, before any work begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}
