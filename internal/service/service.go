// Package service holds the business rules behind the HTTP handlers.
package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"kbomate/internal/models"
)

// KST is the display timezone for dates shown to fans.
var KST = time.FixedZone("KST", 9*60*60)

// Page sizes of the paginated listings.
const (
	MatePageSize   = 10
	ReportPageSize = 20
	MemberPageSize = 20
)

// Redirect targets returned with a session.
const (
	RedirectHome   = "/"
	RedirectAdmin  = "/admin"
	RedirectSignup = "/auth/signup-complete"
)

// RedirectFor returns where a freshly signed-in user with role should land.
func RedirectFor(role models.Role) string {
	if role.IsStaff() {
		return RedirectAdmin
	}
	return RedirectHome
}

// wrap passes AppErrors through and turns anything else into an internal error.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// TotalPages is ceil(Total/PageSize).
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

func trimmed(s string) string { return strings.TrimSpace(s) }
