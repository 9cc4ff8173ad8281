package memory

import (
	"regexp"
	"strings"
)

// DefaultLexicon is the concept vocabulary matched against user messages.
// Deployments feed their own lexicon through Config (typically the concept
// titles of the user's learning plan).
var DefaultLexicon = []string{
	"python", "javascript", "go", "recursion", "loops", "functions",
	"variables", "classes", "objects", "arrays", "strings", "pointers",
	"algorithms", "data structures", "sorting", "searching", "graphs",
	"trees", "hash tables", "concurrency", "testing", "databases", "sql",
}

var dayPattern = regexp.MustCompile(`day\s*(\d+)`)

// ExtractConcepts finds lexicon concepts and "day N" references in a
// message. Matches are returned in lexicon order, day references last,
// deduplicated.
func ExtractConcepts(text string, lexicon []string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var found []string

	for _, concept := range lexicon {
		if strings.Contains(lower, strings.ToLower(concept)) && !seen[concept] {
			seen[concept] = true
			found = append(found, concept)
		}
	}

	for _, m := range dayPattern.FindAllStringSubmatch(lower, -1) {
		ref := "day " + m[1]
		if !seen[ref] {
			seen[ref] = true
			found = append(found, ref)
		}
	}
	return found
}
