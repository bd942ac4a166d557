package service

import (
	"context"

	"kbomate/internal/models"
	"kbomate/internal/observability"
	"kbomate/internal/repository"
)

// RoleService backs the admin roles panel: user roles and page access.
type RoleService struct {
	users     repository.UserRepository
	pageRoles repository.PageRoleRepository
}

func NewRoleService(users repository.UserRepository, pageRoles repository.PageRoleRepository) *RoleService {
	return &RoleService{users: users, pageRoles: pageRoles}
}

// RoleChange sets one user's role.
type RoleChange struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
}

func (s *RoleService) ListStaff(ctx context.Context) ([]models.User, error) {
	return s.users.ListStaff(ctx)
}

// SaveRoles writes only the changes whose role differs from the stored one,
// then returns the refreshed listing and how many rows changed.
func (s *RoleService) SaveRoles(ctx context.Context, actorID uint, changes []RoleChange) ([]models.User, int, error) {
	for _, ch := range changes {
		if !ch.Role.Valid() {
			return nil, 0, models.NewValidationError("Invalid role: " + string(ch.Role))
		}
		if ch.UserID == actorID && ch.Role != models.RoleAdmin {
			return nil, 0, models.NewValidationError("You cannot remove your own admin role")
		}
	}

	current, err := s.users.ListStaff(ctx)
	if err != nil {
		return nil, 0, wrap(err)
	}
	snapshot := make(map[uint]models.Role, len(current))
	for _, u := range current {
		snapshot[u.ID] = u.Role
	}

	changed := 0
	for _, ch := range changes {
		prev, ok := snapshot[ch.UserID]
		if !ok {
			return nil, 0, models.NewNotFoundError("User", ch.UserID)
		}
		if prev == ch.Role {
			continue
		}
		if err := s.users.UpdateRole(ctx, ch.UserID, ch.Role); err != nil {
			return nil, 0, wrap(err)
		}
		snapshot[ch.UserID] = ch.Role
		changed++
		observability.AdminActions.WithLabelValues("roles", "update").Inc()
		observability.Audit.Record(ctx, actorID, "user.role", "user", ch.UserID,
			map[string]any{"from": prev, "to": ch.Role})
	}

	users, err := s.users.ListStaff(ctx)
	if err != nil {
		return nil, 0, wrap(err)
	}
	return users, changed, nil
}

func (s *RoleService) PageRoles(ctx context.Context) ([]models.AdminPageRole, error) {
	return s.pageRoles.List(ctx)
}

// PageRoleDiff is the result of SavePageRoles.
type PageRoleDiff struct {
	Added   []models.AdminPageRole `json:"added"`
	Removed []models.AdminPageRole `json:"removed"`
	Current []models.AdminPageRole `json:"current"`
}

// DiffPageRoles returns updated minus original and original minus updated,
// each in the order of its source slice. Duplicates collapse.
func DiffPageRoles(original, updated []models.AdminPageRole) (added, removed []models.AdminPageRole) {
	orig := pairSet(original)
	upd := pairSet(updated)

	seen := make(map[models.AdminPageRole]struct{})
	for _, p := range updated {
		if _, ok := orig[p]; ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		added = append(added, p)
	}
	for _, p := range original {
		if _, ok := upd[p]; ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		removed = append(removed, p)
	}
	return added, removed
}

func pairSet(pairs []models.AdminPageRole) map[models.AdminPageRole]struct{} {
	out := make(map[models.AdminPageRole]struct{}, len(pairs))
	for _, p := range pairs {
		out[p] = struct{}{}
	}
	return out
}

func validatePairs(pairs []models.AdminPageRole) error {
	for _, p := range pairs {
		if !models.IsAdminPage(p.PageKey) {
			return models.NewValidationError("Unknown admin page: " + p.PageKey)
		}
		if !p.Role.Valid() {
			return models.NewValidationError("Invalid role: " + string(p.Role))
		}
	}
	return nil
}

// SavePageRoles applies the difference between the snapshot the admin edited and
// the edited state. Pairs present in both are not touched.
func (s *RoleService) SavePageRoles(ctx context.Context, actorID uint, original, updated []models.AdminPageRole) (*PageRoleDiff, error) {
	if err := validatePairs(original); err != nil {
		return nil, err
	}
	if err := validatePairs(updated); err != nil {
		return nil, err
	}

	added, removed := DiffPageRoles(original, updated)
	if len(added) > 0 || len(removed) > 0 {
		if err := s.pageRoles.ApplyDiff(ctx, added, removed); err != nil {
			return nil, wrap(err)
		}
		observability.AdminActions.WithLabelValues("roles", "page_access").Inc()
		observability.Audit.Record(ctx, actorID, "page_roles.update", "admin_page_roles", nil,
			map[string]any{"added": added, "removed": removed})
	}

	current, err := s.pageRoles.List(ctx)
	if err != nil {
		return nil, wrap(err)
	}
	return &PageRoleDiff{Added: added, Removed: removed, Current: current}, nil
}

// CanAccessPage reports whether role may open the admin page. Admins always can.
func (s *RoleService) CanAccessPage(ctx context.Context, role models.Role, pageKey string) (bool, error) {
	if role == models.RoleAdmin {
		return true, nil
	}
	if !role.IsStaff() {
		return false, nil
	}
	return s.pageRoles.HasAccess(ctx, pageKey, role)
}
