package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brieflab/brief/internal/providers"
)

// parseState tags the outcome of decoding a stage's structured response.
type parseState int

const (
	// parsedOK: the response conformed to the schema.
	parsedOK parseState = iota
	// salvagedPartial: the response was malformed but a best-effort JSON
	// extraction from the raw text recovered usable data.
	salvagedPartial
	// failedParse: the response was malformed and salvage failed.
	failedParse
)

// structuredOutcome is the tagged result of a structured completion. Each
// stage applies its own degrade or abort policy to it explicitly.
type structuredOutcome struct {
	state  parseState
	raw    string
	reason error
}

// decodeStage interprets a completion result (or error) into v.
//
// Transport failures and cancellations are returned as errors untouched.
// A malformed response gets exactly one salvage attempt from the raw text
// before being reported as failed; the caller decides fatal versus degrade.
func decodeStage(res *providers.CompletionResult, callErr error, v any) (structuredOutcome, error) {
	if callErr != nil {
		var malformed *providers.MalformedResponseError
		if !errors.As(callErr, &malformed) {
			return structuredOutcome{}, callErr
		}

		raw, ok := providers.SalvageJSON(malformed.Raw)
		if !ok {
			return structuredOutcome{
				state:  failedParse,
				raw:    malformed.Raw,
				reason: malformed,
			}, nil
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return structuredOutcome{
				state:  failedParse,
				raw:    malformed.Raw,
				reason: fmt.Errorf("salvaged JSON does not fit stage shape: %w", malformed),
			}, nil
		}
		return structuredOutcome{state: salvagedPartial, raw: malformed.Raw}, nil
	}

	if err := json.Unmarshal(res.ParsedJSON, v); err != nil {
		return structuredOutcome{
			state:  failedParse,
			raw:    res.Content,
			reason: err,
		}, nil
	}
	return structuredOutcome{state: parsedOK}, nil
}
