package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		mode Mode
		term string
	}{
		{"@nasa", ModeProfile, "nasa"},
		{"  @nasa  ", ModeProfile, "nasa"},
		{"@", ModeProfile, ""},
		{"@user/highlights/1", ModeProfile, "user/highlights/1"},
		{"https://www.instagram.com/stories/highlights/17900/", ModeHighlight, "https://www.instagram.com/stories/highlights/17900/"},
		{"highlights/", ModeHighlight, "highlights/"},
		{"https://www.instagram.com/p/C1a2b3/", ModePost, "https://www.instagram.com/p/C1a2b3/"},
		{"C1a2b3", ModePost, "C1a2b3"},
		{"highlight/1", ModePost, "highlight/1"},
		{"nasa@", ModePost, "nasa@"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q := Classify(tt.in)
			assert.Equal(t, tt.mode, q.Mode)
			assert.Equal(t, tt.term, q.Term)
		})
	}
}

func TestQueryDisplay(t *testing.T) {
	assert.Equal(t, "@nasa", Classify("@nasa").Display())
	assert.Equal(t, "C1a2b3", Classify("C1a2b3").Display())
}

func TestIsBlank(t *testing.T) {
	assert.True(t, Classify("   ").IsBlank())
	assert.True(t, Classify("@ ").IsBlank())
	assert.True(t, Query{Mode: ModeProfile, Term: "\t"}.IsBlank())
	assert.False(t, Classify("@a").IsBlank())
}

func TestEmptyTermMessage(t *testing.T) {
	assert.Equal(t, "Vui lòng nhập link bài viết.", EmptyTermMessage(Vietnamese, ModePost))
	assert.Equal(t, "Vui lòng nhập tên người dùng.", EmptyTermMessage(Vietnamese, ModeProfile))
	assert.Equal(t, "Vui lòng nhập link highlight.", EmptyTermMessage(Vietnamese, ModeHighlight))

	seen := map[string]bool{}
	for _, m := range []Mode{ModePost, ModeProfile, ModeHighlight} {
		msg := EmptyTermMessage(English, m)
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "messages must differ per mode")
		seen[msg] = true
	}

	assert.Equal(t, EmptyTermMessage(English, ModeProfile), EmptyTermMessage("fr", ModeProfile))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Profile ")
	require.NoError(t, err)
	assert.Equal(t, ModeProfile, m)

	_, err = ParseMode("reel")
	assert.Error(t, err)
}
