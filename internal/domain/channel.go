package domain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidChannel is returned for malformed channel identifiers
var ErrInvalidChannel = errors.New("invalid channel identifier")

var usernameRx = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{3,31}$`)

var linkPrefixes = []string{
	"https://t.me/",
	"http://t.me/",
	"t.me/",
	"https://telegram.me/",
}

// NormalizeChannel turns user input into a bare channel identifier.
// Accepts "@name", "name", t.me links and numeric chat ids.
func NormalizeChannel(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, p := range linkPrefixes {
		if strings.HasPrefix(strings.ToLower(s), p) {
			s = s[len(p):]
			break
		}
	}
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimPrefix(s, "@")

	if s == "" {
		return "", ErrInvalidChannel
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s, nil
	}
	if !usernameRx.MatchString(s) {
		return "", ErrInvalidChannel
	}
	return s, nil
}

// ChannelRef returns the platform reference for a bare channel id:
// "@name" for usernames, the number itself for numeric ids.
func ChannelRef(channelID string) string {
	if _, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		return channelID
	}
	return "@" + channelID
}
