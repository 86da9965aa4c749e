package infer

import "strings"

// DisplayTitle derives the default human-readable label for a table or
// column name: underscores become spaces and the first letter is upcased.
// "sales_order" -> "Sales order".
func DisplayTitle(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
