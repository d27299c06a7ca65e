package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate(PrefixReview)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixUser, PrefixBook, PrefixReview} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+size)
			assert.True(t, Valid(prefix, id))
		})
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate(PrefixBook)
		assert.True(t, Valid(PrefixBook, id))
	})
}

func TestValid(t *testing.T) {
	good := MustGenerate(PrefixBook)

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"generated", good, true},
		{"wrong prefix", strings.Replace(good, "book-", "user-", 1), false},
		{"no prefix", strings.TrimPrefix(good, "book-"), false},
		{"too short", good[:len(good)-1], false},
		{"too long", good + "x", false},
		{"bad character", "book-" + strings.Repeat("!", size), false},
		{"mongo object id", "64b7f2a9c3e4d5f6a7b8c9d0", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(PrefixBook, tt.in))
		})
	}
}
