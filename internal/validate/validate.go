// Package validate holds the field rules shared by request binding and the store.
package validate

import (
	"regexp"
	"strings"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 1440
	MinAmount      = 1
	MaxAmount      = 10000
)

var (
	usernameRe = regexp.MustCompile(`^[\w.@+ -]+$`)
	latinRe    = regexp.MustCompile(`^[a-zA-Z -]+$`)
	cyrillicRe = regexp.MustCompile(`^[а-яёА-ЯЁ -]+$`)
	colorRe    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Username reports why name is not a valid username, or "" when it is.
func Username(name string) string {
	if strings.EqualFold(name, "me") {
		return `username "me" is reserved`
	}
	if !usernameRe.MatchString(name) {
		return "only letters, digits, spaces and @/./+/-/_ are allowed"
	}
	return ""
}

// PersonName accepts names written entirely in Latin or entirely in Cyrillic.
func PersonName(name string) string {
	if latinRe.MatchString(name) || cyrillicRe.MatchString(name) {
		return ""
	}
	return "only Latin or only Cyrillic letters are allowed"
}

func HexColor(color string) string {
	if !colorRe.MatchString(color) {
		return "must be a hex color like #49B64E"
	}
	return ""
}

func Slug(slug string) string {
	if !slugRe.MatchString(slug) {
		return "only letters, digits, - and _ are allowed"
	}
	return ""
}

func CookingTime(minutes int) string {
	if minutes < MinCookingTime || minutes > MaxCookingTime {
		return "must be between 1 and 1440 minutes"
	}
	return ""
}

func Amount(quantity int) string {
	if quantity < MinAmount || quantity > MaxAmount {
		return "must be between 1 and 10000"
	}
	return ""
}
