// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
	youtubeHosts = map[string]struct{}{
		"youtube.com":     {},
		"www.youtube.com": {},
		"m.youtube.com":   {},
		"youtu.be":        {},
	}
)

// Nickname length bounds in runes.
const (
	NicknameMin = 2
	NicknameMax = 20
)

// ValidatePassword checks if a password meets security requirements.
// bcrypt ignores bytes past 72, so longer inputs are refused.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 72 {
		return fmt.Errorf("password must not exceed 72 bytes")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsSpace(r):
			return fmt.Errorf("password must not contain whitespace")
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateNickname checks a display name. Korean and other letters are allowed.
func ValidateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n < NicknameMin || n > NicknameMax {
		return fmt.Errorf("nickname must be %d-%d characters", NicknameMin, NicknameMax)
	}
	if strings.TrimSpace(nickname) != nickname {
		return fmt.Errorf("nickname cannot start or end with whitespace")
	}
	for _, r := range nickname {
		if unicode.IsControl(r) {
			return fmt.Errorf("nickname contains invalid characters")
		}
	}
	return nil
}

// ValidateYouTubeURL accepts http(s) links on YouTube hosts.
func ValidateYouTubeURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid video url")
	}
	if _, ok := youtubeHosts[strings.ToLower(u.Hostname())]; !ok {
		return fmt.Errorf("not a YouTube url")
	}
	return nil
}
