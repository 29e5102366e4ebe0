package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "at mention",
			text: "please contact @Alice about this",
			want: []string{"alice"},
		},
		{
			name: "same handle across platforms collapses to one token",
			text: "@alice also at t.me/alice and https://instagram.com/Alice",
			want: []string{"alice"},
		},
		{
			name: "multiple platforms",
			text: "seen on twitter.com/scammer1 and tiktok.com/@scammer2 plus facebook.com/Scammer3",
			want: []string{"scammer1", "scammer2", "scammer3"},
		},
		{
			name: "case insensitive",
			text: "T.ME/BadActor and @BADACTOR",
			want: []string{"badactor"},
		},
		{
			name: "no tokens",
			text: "nothing identifying in this text at all",
			want: []string{},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTokens(tt.text))
		})
	}
}

func TestExtractTokensIdempotent(t *testing.T) {
	text := "report @alice, t.me/bob and instagram.com/carol immediately"

	first := ExtractTokens(text)
	second := ExtractTokens(text)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"alice", "bob", "carol"}, first)
}
