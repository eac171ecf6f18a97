// Package validate holds the form field rules shared by the web and CLI flows.
package validate

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^(([^<>()[\]\\.,;:\s@"]+(\.[^<>()[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// DisplayName reports whether value has at least one non-whitespace character.
func DisplayName(value string) bool {
	return strings.TrimSpace(value) != ""
}

// EmailAddress reports whether value looks like local@domain.tld.
// The domain may also be a bracketed IPv4 literal.
func EmailAddress(value string) bool {
	return emailRegex.MatchString(value)
}

// Errors maps a form field name to the message shown next to it.
type Errors map[string]string

// Add records msg for field, keeping the first message if one exists.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; ok {
		return
	}
	e[field] = msg
}

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Empty reports whether no field has an error.
func (e Errors) Empty() bool {
	return len(e) == 0
}
