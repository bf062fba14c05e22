// Package command parses slash commands and dispatches them to handlers.
package command

import (
	"regexp"
	"strings"
)

var argPattern = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|'([^']*)'|(\S+))`)

// Parsed is a tokenized slash command.
type Parsed struct {
	Name string
	Args map[string]string
}

// Parse splits a raw "/name key=value ..." line. The second return value is
// false when the input does not start with "/" or has no command name.
// Unrecognized tokens are dropped; a repeated key keeps its last value.
func Parse(input string) (Parsed, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return Parsed{}, false
	}

	head, rest := trimmed, ""
	if i := strings.IndexFunc(trimmed, isSpace); i >= 0 {
		head, rest = trimmed[:i], strings.TrimSpace(trimmed[i:])
	}

	name := strings.ToLower(strings.TrimPrefix(head, "/"))
	if name == "" {
		return Parsed{}, false
	}

	return Parsed{Name: name, Args: ParseArgs(rest)}, true
}

// ParseArgs tokenizes key=value pairs. Values may be double-quoted,
// single-quoted or bare; quotes are stripped.
func ParseArgs(argString string) map[string]string {
	args := make(map[string]string)
	for _, m := range argPattern.FindAllStringSubmatchIndex(argString, -1) {
		key := argString[m[2]:m[3]]
		for g := 2; g <= 4; g++ {
			start, end := m[2*g], m[2*g+1]
			if start >= 0 {
				args[key] = argString[start:end]
				break
			}
		}
	}
	return args
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
