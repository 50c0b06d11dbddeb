package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/policy"
	"github.com/spec-kit/org-directory/internal/repository"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// TeamInput carries the fields for a new team.
type TeamInput struct {
	Name        string
	Description string
}

// TeamPatch carries mutable team metadata. Nil means "leave unchanged".
type TeamPatch struct {
	Name        *string
	Description *string
}

// TeamService manages the team lifecycle.
type TeamService struct {
	deps Dependencies
}

// NewTeamService constructs the service.
func NewTeamService(deps Dependencies) *TeamService {
	return &TeamService{deps: deps.withDefaults()}
}

// Create adds a team with an empty member set.
func (s *TeamService) Create(ctx context.Context, actor domain.Actor, input TeamInput) (domain.Team, error) {
	if err := s.deps.authorize(actor, policy.OpCreateTeam, nil, "not allowed to create teams"); err != nil {
		return domain.Team{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateTeamFields(input.Name, input.Description); err != nil {
		return domain.Team{}, err
	}

	now := s.deps.Clock()
	team := domain.Team{
		ID:              s.deps.IDs(),
		Name:            input.Name,
		Description:     input.Description,
		Members:         []domain.Membership{},
		CreatedAt:       now,
		CreatedBy:       actor.Name,
		CreatedByUserID: actor.ID,
		UpdatedAt:       now,
		UpdatedBy:       actor.Name,
		UpdatedByUserID: actor.ID,
	}

	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		if _, exists := repository.TeamCollection(snap.Teams).GetByID(team.ID); exists {
			return apperrors.NewConflict("team id already in use", map[string]any{"id": team.ID})
		}
		snap.Teams = append(snap.Teams, team)
		return nil
	})
	if err != nil {
		return domain.Team{}, apperrors.MapError(err)
	}

	s.deps.Logger.Info("team created", zap.String("team_id", team.ID), zap.String("actor_id", actor.ID))
	s.deps.publish(ctx, events.EventTeamCreated, team.ID, actor, events.TeamPayload{Name: team.Name})
	return team, nil
}

// Update changes team metadata.
func (s *TeamService) Update(ctx context.Context, actor domain.Actor, teamID string, patch TeamPatch) (domain.Team, error) {
	if err := s.deps.authorize(actor, policy.OpUpdateTeam, nil, "not allowed to update teams"); err != nil {
		return domain.Team{}, err
	}

	var updated domain.Team
	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		teams := repository.TeamCollection(snap.Teams)
		team, ok := teams.GetByID(teamID)
		if !ok {
			return apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
		}
		if patch.Name != nil {
			team.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			team.Description = strings.TrimSpace(*patch.Description)
		}
		if err := validateTeamFields(team.Name, team.Description); err != nil {
			return err
		}
		stampTeam(&team, actor, s.deps.Clock())

		snap.Teams = teams.Replace(team)
		updated = RefreshSnapshots([]domain.Team{team}, snap.Users)[0]
		return nil
	})
	if err != nil {
		return domain.Team{}, apperrors.MapError(err)
	}

	s.deps.Logger.Info("team updated", zap.String("team_id", updated.ID), zap.String("actor_id", actor.ID))
	s.deps.publish(ctx, events.EventTeamUpdated, updated.ID, actor, events.TeamPayload{Name: updated.Name, MemberCount: len(updated.Members)})
	return updated, nil
}

// UpdateMembers replaces the member set wholesale with userIDs, taking a fresh
// snapshot of every referenced user. Members whose user has vanished are kept
// as they are when listed again; any other unknown id is NotFound.
func (s *TeamService) UpdateMembers(ctx context.Context, actor domain.Actor, teamID string, userIDs []string) (domain.Team, error) {
	return s.replaceMembers(ctx, actor, teamID, func(domain.Team) []string { return userIDs })
}

// ToggleMember removes userID when it is a member and adds it otherwise.
func (s *TeamService) ToggleMember(ctx context.Context, actor domain.Actor, teamID, userID string) (domain.Team, error) {
	return s.replaceMembers(ctx, actor, teamID, func(team domain.Team) []string {
		current := team.MemberIDs()
		if team.HasMember(userID) {
			next := make([]string, 0, len(current))
			for _, id := range current {
				if id != userID {
					next = append(next, id)
				}
			}
			return next
		}
		return append(current, userID)
	})
}

func (s *TeamService) replaceMembers(ctx context.Context, actor domain.Actor, teamID string, nextIDs func(domain.Team) []string) (domain.Team, error) {
	if err := s.deps.authorize(actor, policy.OpUpdateTeam, nil, "not allowed to update teams"); err != nil {
		return domain.Team{}, err
	}

	var updated domain.Team
	var added, removed []string
	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		teams := repository.TeamCollection(snap.Teams)
		team, ok := teams.GetByID(teamID)
		if !ok {
			return apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
		}

		members, err := buildMembers(team, nextIDs(team), snap.Users)
		if err != nil {
			return err
		}
		added, removed = diffMembers(team.Members, members)
		team.Members = members
		stampTeam(&team, actor, s.deps.Clock())

		snap.Teams = teams.Replace(team)
		updated = team
		return nil
	})
	if err != nil {
		return domain.Team{}, apperrors.MapError(err)
	}

	s.deps.Logger.Info("team members changed",
		zap.String("team_id", updated.ID),
		zap.String("actor_id", actor.ID),
		zap.Int("members", len(updated.Members)))
	s.deps.publish(ctx, events.EventTeamMembersChanged, updated.ID, actor, events.TeamMembersChangedPayload{Added: added, Removed: removed})
	return updated, nil
}

// Delete removes a team. Users are not affected.
func (s *TeamService) Delete(ctx context.Context, actor domain.Actor, teamID string) error {
	if err := s.deps.authorize(actor, policy.OpDeleteTeam, nil, "not allowed to delete teams"); err != nil {
		return err
	}

	var deleted domain.Team
	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		teams := repository.TeamCollection(snap.Teams)
		team, ok := teams.GetByID(teamID)
		if !ok {
			return apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
		}
		snap.Teams = teams.Without(teamID)
		deleted = team
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.deps.Logger.Info("team deleted", zap.String("team_id", deleted.ID), zap.String("actor_id", actor.ID))
	s.deps.publish(ctx, events.EventTeamDeleted, deleted.ID, actor, events.TeamPayload{Name: deleted.Name, MemberCount: len(deleted.Members)})
	return nil
}

// Get returns one team with refreshed member snapshots.
func (s *TeamService) Get(ctx context.Context, actor domain.Actor, teamID string) (domain.Team, error) {
	if err := s.deps.authorize(actor, policy.OpViewDirectory, nil, "not allowed to view teams"); err != nil {
		return domain.Team{}, err
	}
	snap, err := s.deps.Store.Load(ctx)
	if err != nil {
		return domain.Team{}, apperrors.MapError(err)
	}
	team, ok := repository.TeamCollection(snap.Teams).GetByID(teamID)
	if !ok {
		return domain.Team{}, apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
	}
	return RefreshSnapshots([]domain.Team{team}, snap.Users)[0], nil
}

// List returns every team with refreshed member snapshots.
func (s *TeamService) List(ctx context.Context, actor domain.Actor) ([]domain.Team, error) {
	if err := s.deps.authorize(actor, policy.OpViewDirectory, nil, "not allowed to view teams"); err != nil {
		return nil, err
	}
	snap, err := s.deps.Store.Load(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return RefreshSnapshots(snap.Teams, snap.Users), nil
}

// RefreshSnapshots re-derives every membership's display fields from the live users.
// Dangling references keep their stored name and email and read "Not Assigned".
// The input is not modified and nothing is written back.
func RefreshSnapshots(teams []domain.Team, users []domain.User) []domain.Team {
	out := make([]domain.Team, len(teams))
	for i, team := range teams {
		members := make([]domain.Membership, len(team.Members))
		for j, m := range team.Members {
			members[j], _ = domain.ResolveMember(m, users)
		}
		team.Members = members
		out[i] = team
	}
	return out
}

func buildMembers(team domain.Team, ids []string, users []domain.User) ([]domain.Membership, error) {
	existing := make(map[string]domain.Membership, len(team.Members))
	for _, m := range team.Members {
		existing[m.UserID] = m
	}

	seen := make(map[string]struct{}, len(ids))
	members := make([]domain.Membership, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, apperrors.NewValidationError("member id is required", map[string]any{"field": "user_ids"})
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		// a listed member whose user vanished stays as it was stored
		prior, wasMember := existing[id]
		if !wasMember {
			prior = domain.Membership{UserID: id}
		}
		member, found := domain.ResolveMember(prior, users)
		if !found && !wasMember {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		members = append(members, member)
	}
	return members, nil
}

func diffMembers(before, after []domain.Membership) (added, removed []string) {
	in := func(list []domain.Membership, id string) bool {
		for _, m := range list {
			if m.UserID == id {
				return true
			}
		}
		return false
	}
	for _, m := range after {
		if !in(before, m.UserID) {
			added = append(added, m.UserID)
		}
	}
	for _, m := range before {
		if !in(after, m.UserID) {
			removed = append(removed, m.UserID)
		}
	}
	return added, removed
}

func stampTeam(team *domain.Team, actor domain.Actor, now time.Time) {
	team.UpdatedAt = now
	team.UpdatedBy = actor.Name
	team.UpdatedByUserID = actor.ID
}

func validateTeamFields(name, description string) error {
	if name == "" {
		return apperrors.NewValidationError("team name is required", map[string]any{"field": "name"})
	}
	if description == "" {
		return apperrors.NewValidationError("team description is required", map[string]any{"field": "description"})
	}
	return nil
}
