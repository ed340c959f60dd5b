package registry

import (
	"encoding/json"
	"samplefetch/internal/models"
	"samplefetch/pkg/utils"
)

const snippetLength = 120

// DecodeSample parses a single sample object. A JSON null yields a nil
// sample and no error.
func DecodeSample(body string) (*models.Sample, error) {
	var sample *models.Sample
	if err := decode(body, &sample); err != nil {
		return nil, err
	}
	return sample, nil
}

func DecodeCatalog(body string) (models.Catalog, error) {
	var catalog models.Catalog
	if err := decode(body, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

func decode(body string, v any) error {
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &DecodeError{Snippet: utils.Truncate(body, snippetLength), Err: err}
	}
	return nil
}
