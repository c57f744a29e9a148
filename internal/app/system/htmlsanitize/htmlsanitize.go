// Package htmlsanitize provides HTML sanitization for rich text content
// written in the admin editor (post content and descriptions).
// It uses bluemonday to strip potentially dangerous HTML while preserving
// safe formatting.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// policy is the shared bluemonday policy for sanitizing rich text.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		// Start with UGC (User Generated Content) policy as base
		policy = bluemonday.UGCPolicy()

		// Allow tables produced by the editor
		policy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
		policy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		policy.AllowAttrs("class").OnElements("table", "th", "td", "tr")

		// Allow common text formatting
		policy.AllowElements("u", "s", "sub", "sup", "mark")

		// Code blocks keep their language class for client-side highlighting
		policy.AllowAttrs("class").OnElements("pre", "code")

		policy.AllowDataAttributes()
	})
	return policy
}

// Sanitize cleans HTML input, removing potentially dangerous elements and
// attributes. It preserves safe formatting like bold, italic, lists, links,
// tables, and code blocks.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return getPolicy().Sanitize(html)
}

// IsPlainText checks if content appears to be plain text (no HTML tags).
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	// Valid HTML tags require both characters, so if either is missing,
	// treat as plain text.
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}
