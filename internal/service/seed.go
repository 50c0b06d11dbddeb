package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/repository"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// Default accounts created on an empty store.
const (
	SeedSuperAdminEmail    = "superadmin@example.com"
	SeedSuperAdminPassword = "admin123"
	SeedAdminEmail         = "admin@example.com"
	SeedAdminPassword      = "admin123"
	SeedEmployeeEmail      = "emp@gmail.com"
	SeedEmployeePassword   = "employee123"
	SeedTeamName           = "Default Team"
)

var errAlreadySeeded = errors.New("users already present")

// Seeder populates an empty store with default data.
type Seeder struct {
	deps Dependencies
}

// NewSeeder constructs a seeder.
func NewSeeder(deps Dependencies) *Seeder {
	return &Seeder{deps: deps.withDefaults()}
}

// Seed creates one super admin, one admin, one employee and a default team that
// contains the employee. It never runs when any user exists; seeded reports
// whether data was written.
func (s *Seeder) Seed(ctx context.Context) (seeded bool, err error) {
	snap, err := s.deps.Store.Load(ctx)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	if len(snap.Users) > 0 {
		return false, nil
	}

	err = s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		if len(snap.Users) > 0 {
			return errAlreadySeeded
		}

		superAdmin := s.seedUser(SeedSuperAdminEmail, SeedSuperAdminPassword, "Super Admin", domain.RoleSuperAdmin)
		admin := s.seedUser(SeedAdminEmail, SeedAdminPassword, "Default Admin", domain.RoleAdmin)
		employee := s.seedUser(SeedEmployeeEmail, SeedEmployeePassword, "Default Employee", domain.RoleEmployee)
		snap.Users = []domain.User{superAdmin, admin, employee}

		if len(snap.Teams) == 0 {
			now := s.deps.Clock()
			snap.Teams = []domain.Team{{
				ID:          s.deps.IDs(),
				Name:        SeedTeamName,
				Description: "Default team for new employees",
				Members:     []domain.Membership{domain.SnapshotMember(employee)},
				CreatedAt:   now,
				CreatedBy:   domain.SystemActor.Name,
				UpdatedAt:   now,
				UpdatedBy:   domain.SystemActor.Name,
			}}
		}
		return nil
	})
	if errors.Is(err, errAlreadySeeded) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.MapError(err)
	}

	s.deps.Logger.Info("seeded default directory data", zap.Int("users", 3))
	return true, nil
}

func (s *Seeder) seedUser(email, password, name string, role domain.Role) domain.User {
	now := s.deps.Clock()
	return domain.User{
		ID:        s.deps.IDs(),
		Email:     email,
		Password:  password,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		CreatedBy: domain.SystemActor.Name,
		UpdatedAt: now,
		UpdatedBy: domain.SystemActor.Name,
	}
}
