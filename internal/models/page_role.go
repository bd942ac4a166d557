package models

// Admin pages whose access is configurable per role.
const (
	PageDashboard     = "dashboard"
	PageReports       = "reports"
	PageUsers         = "users"
	PageRoles         = "roles"
	PageAnnouncements = "announcements"
	PageBanners       = "banners"
)

// AdminPages lists every configurable admin page in menu order.
var AdminPages = []string{
	PageDashboard,
	PageReports,
	PageUsers,
	PageRoles,
	PageAnnouncements,
	PageBanners,
}

// IsAdminPage reports whether key names a configurable admin page.
func IsAdminPage(key string) bool {
	for _, p := range AdminPages {
		if p == key {
			return true
		}
	}
	return false
}

// AdminPageRole grants Role access to the admin page PageKey.
type AdminPageRole struct {
	PageKey string `gorm:"primaryKey;size:40" json:"page_key"`
	Role    Role   `gorm:"primaryKey;type:varchar(20)" json:"role"`
}
