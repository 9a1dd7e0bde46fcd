package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionValid(t *testing.T) {
	tests := []struct {
		section Section
		valid   bool
	}{
		{SectionOne, true},
		{SectionTwo, true},
		{"section3", false},
		{"", false},
		{"Section1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.section.Valid(), "section %q", tt.section)
	}
}

func TestPhotoJSONOmitsProviderFieldsForLocalRecords(t *testing.T) {
	photo := Photo{
		ID:        "p1",
		Name:      "a.jpg",
		URL:       "/uploads/x-a.jpg",
		Section:   SectionOne,
		CreatedAt: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(photo)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "displayUrl")
	assert.NotContains(t, string(data), "deleteToken")
	assert.NotContains(t, string(data), "thumbnailUrl")
}
