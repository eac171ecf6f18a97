package backend

import (
	"encoding/json"
	"fmt"

	"github.com/foxzi/tweetsift/internal/web/models"
)

// Keys of the result reply that never hold a label group
const (
	keySearchTerm = "search_term"
	keyProcessing = "processing"
	keyStatus     = "status"
	keyDetail     = "detail"
)

// parseResult turns the loosely shaped result reply into a ResultState.
// An explicit status wins; otherwise the processing flag and the presence
// of label groups decide.
func parseResult(raw map[string]json.RawMessage) (models.ResultState, error) {
	var term string
	if v, ok := raw[keySearchTerm]; ok {
		if err := json.Unmarshal(v, &term); err != nil {
			return nil, fmt.Errorf("decode search_term: %w", err)
		}
	}

	groups := make(map[string][]string)
	for key, v := range raw {
		switch key {
		case keySearchTerm, keyProcessing, keyStatus, keyDetail:
			continue
		}
		var ids postIDs
		if err := json.Unmarshal(v, &ids); err != nil {
			// not a label group
			continue
		}
		groups[key] = ids
	}

	if v, ok := raw[keyStatus]; ok {
		var status ResultStatus
		if err := json.Unmarshal(v, &status); err != nil {
			return nil, fmt.Errorf("decode status: %w", err)
		}
		switch status {
		case ResultStatusProcessing:
			return models.Processing{SearchTerm: term}, nil
		case ResultStatusEmpty:
			return models.EmptyResult{SearchTerm: term}, nil
		case ResultStatusReady:
			return models.Ready{SearchTerm: term, Groups: groups}, nil
		default:
			return nil, fmt.Errorf("unknown result status %q", status)
		}
	}

	if v, ok := raw[keyProcessing]; ok {
		var processing bool
		if err := json.Unmarshal(v, &processing); err != nil {
			return nil, fmt.Errorf("decode processing: %w", err)
		}
		if processing {
			return models.Processing{SearchTerm: term}, nil
		}
		if len(groups) == 0 {
			return models.EmptyResult{SearchTerm: term}, nil
		}
	}

	return models.Ready{SearchTerm: term, Groups: groups}, nil
}
