package utils

import (
	"strings"
	"unicode"
)

var roomPrefixes = []string{"CHAMBRE", "CH", "ROOM", "N°", "NO"}

// NormalizeRoom cleans a room number the way the legacy export was cleaned:
// dots become dashes, whitespace is dropped and letters are upper-cased.
// A "CH"/"CHAMBRE"/"ROOM"/"N°" prefix before a plain number is removed, so
// "ch 101" and "101" name the same room on both request and legacy sides.
func NormalizeRoom(room string) string {
	room = strings.ReplaceAll(room, ".", "-")
	room = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, room)
	return stripRoomPrefix(strings.Trim(room, "-"))
}

// RoomTokens splits a legacy room field into the individual rooms it names.
// OCR entries for families spanning several rooms look like "101-102" or
// "101/102", and some carry a "CH" prefix ("CH101"). Each token is normalized.
func RoomTokens(raw string) []string {
	cleaned := NormalizeRoom(raw)
	if cleaned == "" {
		return nil
	}
	fields := strings.FieldsFunc(cleaned, func(r rune) bool {
		switch r {
		case '-', '/', ',', '&', '+', ';':
			return true
		}
		return false
	})

	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = stripRoomPrefix(f)
		if f == "" || seen[f] || isRoomPrefix(f) {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

func stripRoomPrefix(token string) string {
	for _, prefix := range roomPrefixes {
		if rest, ok := strings.CutPrefix(token, prefix); ok {
			if rest = strings.TrimLeft(rest, "-"); isDigits(rest) {
				return rest
			}
		}
	}
	return token
}

// isRoomPrefix reports a token that is only a prefix, left over from
// splitting "CHAMBRE-101-102".
func isRoomPrefix(token string) bool {
	for _, prefix := range roomPrefixes {
		if token == prefix {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
