package registry

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"samplefetch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSample(t *testing.T) {
	sample, err := DecodeSample(`{"Name":"console","Command":"new console","Url":"/c.zip","Description":"Console"}`)
	require.NoError(t, err)
	assert.Equal(t, &models.Sample{Name: "console", Command: "new console", URL: "/c.zip", Description: "Console"}, sample)
}

func TestDecodeSampleMissingFields(t *testing.T) {
	sample, err := DecodeSample(`{"Name":"console"}`)
	require.NoError(t, err)
	assert.Equal(t, "console", sample.Name)
	assert.Empty(t, sample.Command)
	assert.Empty(t, sample.URL)
	assert.Empty(t, sample.Description)
}

func TestDecodeSampleNull(t *testing.T) {
	sample, err := DecodeSample("null")
	require.NoError(t, err)
	assert.Nil(t, sample)
}

func TestDecodeSampleRoundTrip(t *testing.T) {
	original := models.Sample{
		Name:        "webapi",
		Command:     "webapi",
		URL:         "https://cdn.example.com/webapi.zip",
		Description: "An HTTP API with \"quotes\" and ünïcode",
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Url":`)

	decoded, err := DecodeSample(string(data))
	require.NoError(t, err)
	assert.Equal(t, original, *decoded)
}

func TestDecodeCatalog(t *testing.T) {
	catalog, err := DecodeCatalog(catalogJSON)
	require.NoError(t, err)

	names := make([]string, 0, len(catalog))
	for _, s := range catalog {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"console", "webapi"}, names)

	empty, err := DecodeCatalog("[]")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodeErrors(t *testing.T) {
	long := `[{"Name": "` + strings.Repeat("x", 300)

	tests := []struct {
		name    string
		body    string
		snippet string
		decode  func(string) error
	}{
		{"Truncated object", `{"Name": `, `{"Name": `, func(b string) error { _, err := DecodeSample(b); return err }},
		{"HTML page", "<html></html>", "<html></html>", func(b string) error { _, err := DecodeCatalog(b); return err }},
		{"Object where array expected", `{"Name":"console"}`, `{"Name":"console"}`, func(b string) error { _, err := DecodeCatalog(b); return err }},
		{"Trailing data", `{"Name":"a"} {"Name":"b"}`, `{"Name":"a"} {"Name":"b"}`, func(b string) error { _, err := DecodeSample(b); return err }},
		{"Long body", long, long[:snippetLength], func(b string) error { _, err := DecodeCatalog(b); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode(tt.body)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, tt.snippet, decodeErr.Snippet)
			assert.NotNil(t, decodeErr.Unwrap())
		})
	}
}
