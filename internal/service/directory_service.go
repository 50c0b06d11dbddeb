package service

import (
	"context"

	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/policy"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// Directory is the read view of the whole organization.
type Directory struct {
	Admins    []domain.SessionUser
	Employees []domain.SessionUser
	Teams     []domain.Team
}

// DirectoryService builds read views over the store.
type DirectoryService struct {
	deps Dependencies
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps Dependencies) *DirectoryService {
	return &DirectoryService{deps: deps.withDefaults()}
}

// Directory splits users into administrators and employees and reconciles team
// membership snapshots against the live users.
func (s *DirectoryService) Directory(ctx context.Context, actor domain.Actor) (*Directory, error) {
	if err := s.deps.authorize(actor, policy.OpViewDirectory, nil, "not allowed to view the directory"); err != nil {
		return nil, err
	}
	snap, err := s.deps.Store.Load(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	dir := &Directory{
		Admins:    []domain.SessionUser{},
		Employees: []domain.SessionUser{},
		Teams:     RefreshSnapshots(snap.Teams, snap.Users),
	}
	for _, u := range snap.Users {
		if u.Role.Privileged() {
			dir.Admins = append(dir.Admins, u.Public())
			continue
		}
		dir.Employees = append(dir.Employees, u.Public())
	}
	return dir, nil
}
