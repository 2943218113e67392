package circulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed circulation.json
var datasetJSON []byte

// Dataset returns freshly decoded copies of the bundled circulation records.
func Dataset() ([]*Record, error) {
	return ParseDataset(datasetJSON)
}

// ParseDataset decodes a JSON array of circulation records.
func ParseDataset(data []byte) ([]*Record, error) {
	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	return records, nil
}
