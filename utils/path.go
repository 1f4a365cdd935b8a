package utils

import "strings"

// SplitCategoryPath returns the slug segments under the /category prefix,
// e.g. "/category/beauty/makeup" -> ["beauty", "makeup"]. A path without
// the prefix yields nil.
func SplitCategoryPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "category" {
		return nil
	}
	segments := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		segments = append(segments, p)
	}
	if len(segments) == 0 {
		return nil
	}
	return segments
}

// HumanizeSlug turns a URL slug like "artificial-intelligence" into a
// display name like "Artificial Intelligence".
func HumanizeSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// UniqueStrings returns a new slice without duplicate entries,
// preserving first-seen order.
func UniqueStrings(slice []string) []string {
	keys := make(map[string]bool)
	uniqueSlice := []string{}
	for _, entry := range slice {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			uniqueSlice = append(uniqueSlice, entry)
		}
	}
	return uniqueSlice
}
