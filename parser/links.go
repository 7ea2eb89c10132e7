package parser

import (
	"regexp"
	"strings"
)

var (
	linkRegex  = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	macroRegex = regexp.MustCompile(`\([^)]*\)`)
	htmlRegex  = regexp.MustCompile(`<[^>]+>`)
)

// ParseLinks estrae i target dei link [[...]] dal contenuto.
// Gestisce le forme [[Target]], [[Testo|Target]], [[Testo->Target]]
// e [[Target<-Testo]].
func ParseLinks(content string) []string {
	matches := linkRegex.FindAllStringSubmatch(content, -1)

	links := []string{}
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		inner := match[1]

		var target string
		switch {
		case strings.Contains(inner, "|"):
			parts := strings.Split(inner, "|")
			target = parts[len(parts)-1]
		case strings.Contains(inner, "->"):
			parts := strings.Split(inner, "->")
			target = parts[len(parts)-1]
		case strings.Contains(inner, "<-"):
			target = strings.Split(inner, "<-")[0]
		default:
			target = inner
		}

		target = strings.TrimSpace(target)
		if target != "" {
			links = append(links, target)
		}
	}

	return links
}

// StripLinks rimuove macro, markup e sintassi dei link lasciando solo
// il testo leggibile, per le anteprime
func StripLinks(content string) string {
	// [[Testo|Target]] -> Testo, [[Target]] -> Target
	cleaned := linkRegex.ReplaceAllStringFunc(content, func(m string) string {
		inner := strings.TrimSuffix(strings.TrimPrefix(m, "[["), "]]")
		switch {
		case strings.Contains(inner, "|"):
			return strings.Split(inner, "|")[0]
		case strings.Contains(inner, "->"):
			return strings.Split(inner, "->")[0]
		case strings.Contains(inner, "<-"):
			parts := strings.Split(inner, "<-")
			return parts[len(parts)-1]
		default:
			return inner
		}
	})

	cleaned = macroRegex.ReplaceAllString(cleaned, "")
	cleaned = htmlRegex.ReplaceAllString(cleaned, "")

	// Pulisci spazi multipli
	return strings.TrimSpace(strings.Join(strings.Fields(cleaned), " "))
}
