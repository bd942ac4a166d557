package cache

import (
	"fmt"
	"time"
)

const (
	userRoleKeyFormat      = "user:%d:role"
	teamsKey               = "teams:all"
	activeAnnouncementsKey = "announcements:active"
	activeBannersKeyFormat = "banners:active:%s"
)

const (
	UserRoleTTL = 5 * time.Minute
	TeamsTTL    = time.Hour
	// Short enough that date-window edges are picked up without explicit invalidation.
	ActiveContentTTL = time.Minute
)

func UserRoleKey(userID uint) string {
	return fmt.Sprintf(userRoleKeyFormat, userID)
}

func TeamsKey() string {
	return teamsKey
}

func ActiveAnnouncementsKey() string {
	return activeAnnouncementsKey
}

func ActiveBannersKey(location string) string {
	if location == "" {
		location = "all"
	}
	return fmt.Sprintf(activeBannersKeyFormat, location)
}
