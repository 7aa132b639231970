// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts loosely typed raw entity and field records
// into the canonical entity model: casing normalization, data-type
// mapping, primary-key and audit-field injection, and source merging.
// Every function here is pure and total; unrecognized input maps to a
// safe default rather than an error.
package normalize

import (
	"strings"
	"unicode"
)

// splitWords breaks an identifier-like string into its word parts. It
// splits on non-alphanumeric separators and on case boundaries, keeping
// acronym runs together ("HTTPServer" → "HTTP", "Server"). The result is
// stable under re-application to any output casing.
func splitWords(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r):
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevUpper := i > 0 && unicode.IsUpper(runes[i-1])
			if prevLower || (prevUpper && nextLower) {
				flush()
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()

	return words
}

// ToPascalCase normalizes any identifier-like string to PascalCase.
// Idempotent on already-PascalCase input.
func ToPascalCase(s string) string {
	var b strings.Builder
	for _, w := range splitWords(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// ToCamelCase normalizes any identifier-like string to camelCase.
// Idempotent on already-camelCase input.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if pascal == "" {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// ToSnakeCase normalizes any identifier-like string to snake_case.
// Idempotent on already-snake_case input.
func ToSnakeCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// ToDisplayName renders an identifier-like string as a space-separated,
// capitalized label ("purchaseOrder" → "Purchase Order").
func ToDisplayName(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune and lower-cases the rest, leaving
// all-caps acronyms intact ("ID", "HTTP", "UUID"). A single letter is a
// plain word, not an acronym.
func capitalize(w string) string {
	if w == "" {
		return w
	}
	if len(w) > 1 && w == strings.ToUpper(w) && strings.ContainsFunc(w, unicode.IsLetter) {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

// Slugify renders an identifier-like string as a lowercase hyphenated
// route segment ("Order Form" → "order-form").
func Slugify(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}
