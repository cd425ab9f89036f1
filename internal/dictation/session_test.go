package dictation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAttributesEmpty(t *testing.T) {
	s, err := FromAttributes(nil)
	require.NoError(t, err)
	assert.Equal(t, Menu, s.State)
	assert.Empty(t, s.Buffer)
}

func TestAttributesSurviveJSON(t *testing.T) {
	s := &Session{State: Writing, Buffer: []string{"comprare il latte", ""}}

	data, err := json.Marshal(s.Attributes())
	require.NoError(t, err)

	var attrs map[string]any
	require.NoError(t, json.Unmarshal(data, &attrs))

	got, err := FromAttributes(attrs)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestFromAttributesDropsBufferOutsideWriting(t *testing.T) {
	s, err := FromAttributes(map[string]any{
		"state":       "MENU",
		"note_buffer": []any{"stale"},
	})
	require.NoError(t, err)
	assert.Empty(t, s.Buffer)
}

func TestFromAttributesRejectsGarbage(t *testing.T) {
	cases := []map[string]any{
		{"state": "DANCING"},
		{"state": 7},
		{"state": "WRITING", "note_buffer": "not a list"},
		{"state": "WRITING", "note_buffer": []any{1}},
	}
	for _, attrs := range cases {
		_, err := FromAttributes(attrs)
		assert.Error(t, err, "%v", attrs)
	}
}

func TestAttributesDefaultState(t *testing.T) {
	var s Session
	attrs := s.Attributes()
	assert.Equal(t, "MENU", attrs["state"])
}
