// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/parley/types"
)

var verbAliases = map[string]string{
	// Look
	"l":       "look",
	"who":     "look",
	"survey":  "look",
	"actors":  "look",
	"examine": "look",
	"x":       "look",

	// Talk / Dialogue
	"ask":      "talk",
	"speak":    "talk",
	"chat":     "talk",
	"converse": "talk",
	"greet":    "talk",
	"t":        "talk",

	// Continue
	"c":        "continue",
	"next":     "continue",
	"more":     "continue",
	"skip":     "continue",
	"proceed":  "continue",
	"continue": "continue",

	// Choose
	"pick":   "choose",
	"select": "choose",
	"option": "choose",
	"answer": "choose",
	"reply":  "choose",

	// Proximity
	"go":       "approach",
	"walk":     "approach",
	"near":     "approach",
	"move":     "approach",
	"retreat":  "leave",
	"withdraw": "leave",

	// End
	"bye":      "end",
	"goodbye":  "end",
	"stop":     "end",
	"farewell": "end",
	"hangup":   "end",

	// Time
	"z":     "wait",
	"sleep": "wait",

	"h": "help",
	"?": "help",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "from": true,
	"about": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Bare number: choose that option.
	if len(words) == 1 {
		if _, err := strconv.Atoi(words[0]); err == nil {
			return types.Intent{Verb: "choose", Object: words[0]}
		}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := words[1:]

	// Strip articles ("the", "a", "an").
	rest = stripArticles(rest)

	// "approach to guard" and "leave from guard" read the same as without.
	if (verb == "approach" || verb == "leave") && len(rest) > 0 && prepositions[rest[0]] {
		rest = rest[1:]
	}

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "talk to", "walk away from", "look around" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look":
		if words[1] == "around" {
			return append([]string{"look"}, words[2:]...)
		}
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return append([]string{"talk"}, words[2:]...)
		}
	case "walk", "step", "move", "go":
		if words[1] == "away" {
			rest := words[2:]
			if len(rest) > 0 && rest[0] == "from" {
				rest = rest[1:]
			}
			return append([]string{"leave"}, rest...)
		}
	case "say", "end":
		if words[1] == "goodbye" || words[1] == "bye" || words[1] == "conversation" {
			return append([]string{"end"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
