package service

import (
	"regexp"
	"sort"
	"strings"
)

// Reference shapes that identify an account: bare at-mentions plus profile
// URL shapes for the known social platforms.
var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)@(\w+)`),
	regexp.MustCompile(`(?i)t\.me/(\w+)`),
	regexp.MustCompile(`(?i)twitter\.com/(\w+)`),
	regexp.MustCompile(`(?i)instagram\.com/(\w+)`),
	regexp.MustCompile(`(?i)facebook\.com/(\w+)`),
	regexp.MustCompile(`(?i)tiktok\.com/@(\w+)`),
}

// ExtractTokens returns the normalized identity tokens referenced in text:
// lowercased, de-duplicated, sorted. Pure function, safe to call repeatedly.
func ExtractTokens(text string) []string {
	seen := make(map[string]struct{})
	for _, pattern := range tokenPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			token := strings.ToLower(match[1])
			seen[token] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
