package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitRepoFullName(t *testing.T) {
	testCases := []struct {
		input string
		owner string
		repo  string
		ok    bool
	}{
		{"acme/widgets", "acme", "widgets", true},
		{"acme/widgets/extra", "acme", "widgets/extra", true},
		{"acme", "", "", false},
		{"/widgets", "", "", false},
		{"acme/", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range testCases {
		owner, repo, ok := splitRepoFullName(tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
		assert.Equal(t, tc.owner, owner, tc.input)
		assert.Equal(t, tc.repo, repo, tc.input)
	}
}

func TestSameDay(t *testing.T) {
	base := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)

	assert.True(t, sameDay(base, base.Add(5*time.Hour)))
	assert.False(t, sameDay(base, base.Add(24*time.Hour)))
	assert.False(t, sameDay(base, time.Time{}))
}
