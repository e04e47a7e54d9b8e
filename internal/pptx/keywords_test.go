package pptx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{
			name:  "frequency then length",
			text:  "The quick fox and the lazy fox",
			limit: 10,
			want:  []string{"fox", "quick", "lazy"},
		},
		{
			name:  "ties keep first seen",
			text:  "gamma delta alpha",
			limit: 10,
			want:  []string{"gamma", "delta", "alpha"},
		},
		{
			name:  "case folded",
			text:  "Go go GO rust",
			limit: 10,
			want:  []string{"go", "rust"},
		},
		{
			name:  "stopwords and single letters dropped",
			text:  "a I x to of the",
			limit: 10,
			want:  nil,
		},
		{
			name:  "apostrophes and hyphens stay in words",
			text:  "don't re-use re-use",
			limit: 10,
			want:  []string{"re-use", "don't"},
		},
		{
			name:  "limit truncates",
			text:  "one two two three three three",
			limit: 2,
			want:  []string{"three", "two"},
		},
		{
			name:  "cjk n-grams",
			text:  "投影片投影片",
			limit: 4,
			want:  []string{"投影片", "投影", "影片", "影片投"},
		},
		{
			name:  "cjk across punctuation",
			text:  "報告，報告",
			limit: 10,
			want:  []string{"報告", "報告報", "告報告", "告報"},
		},
		{
			name:  "mixed scripts",
			text:  "報告 report report",
			limit: 10,
			want:  []string{"report", "報告"},
		},
		{
			name:  "zero limit",
			text:  "plenty of words here",
			limit: 0,
			want:  nil,
		},
		{
			name:  "negative limit",
			text:  "plenty of words here",
			limit: -1,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.text, tt.limit)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCJK(t *testing.T) {
	for _, r := range []rune{'中', '㐀', '豈'} {
		assert.True(t, isCJK(r), string(r))
	}
	for _, r := range []rune{'a', 'あ', '한', '，'} {
		assert.False(t, isCJK(r), string(r))
	}
}
