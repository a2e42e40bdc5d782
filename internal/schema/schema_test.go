package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summarizationInput = `{
	"type": "object",
	"properties": {
		"content": {"type": "string"},
		"max_length": {"type": ["integer", "null"]},
		"focus_areas": {"type": ["array", "null"], "items": {"type": "string"}}
	},
	"required": ["content"]
}`

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestValidate(t *testing.T) {
	s := MustParse(summarizationInput)

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "minimal", body: `{"content": "hello"}`},
		{name: "all fields", body: `{"content": "hello", "max_length": 120, "focus_areas": ["cost"]}`},
		{name: "explicit nulls", body: `{"content": "hello", "max_length": null, "focus_areas": null}`},
		{name: "empty object", body: `{}`, wantErr: true},
		{name: "wrong type", body: `{"content": 5}`, wantErr: true},
		{name: "fractional integer", body: `{"content": "x", "max_length": 1.5}`, wantErr: true},
		{name: "not an object", body: `["content"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(decode(t, tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlattenAddsAbsentProperties(t *testing.T) {
	s := MustParse(summarizationInput)

	got := s.Flatten(map[string]any{"content": "hello", "extra": true})

	assert.Equal(t, map[string]any{
		"content":     "hello",
		"max_length":  nil,
		"focus_areas": nil,
		"extra":       true,
	}, got)
}

func TestProperties(t *testing.T) {
	s := MustParse(summarizationInput)
	assert.Equal(t, []string{"content", "focus_areas", "max_length"}, s.Properties())
}

func TestParseRejectsNonObjectRoot(t *testing.T) {
	_, err := Parse([]byte(`{"type": "string"}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{not json`))
	assert.Error(t, err)
}

func TestMarshalJSON(t *testing.T) {
	s := MustParse(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`, string(raw))
}
