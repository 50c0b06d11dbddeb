package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/policy"
	"github.com/spec-kit/org-directory/internal/repository"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// Messages surfaced for the super admin guard.
const (
	MsgSuperAdminDelete = "Super Admin accounts cannot be deleted"
	MsgSuperAdminModify = "Super Admin accounts cannot be modified"
)

// UserInput carries the fields for a new user.
type UserInput struct {
	Name        string
	Email       string
	Password    string
	Designation string
}

// UserPatch carries the mutable fields. Nil means "leave unchanged"; an empty
// Password also leaves the stored credential unchanged. CurrentPassword is only
// read by UpdateProfile, which requires it to match the stored credential.
type UserPatch struct {
	Name            *string
	Email           *string
	Password        *string
	Designation     *string
	CurrentPassword string
}

// Messages surfaced when a profile edit cannot prove the current credential.
const (
	MsgCurrentPasswordRequired  = "current password is required to make changes"
	MsgCurrentPasswordIncorrect = "current password is incorrect"
)

// UserService manages the user lifecycle.
type UserService struct {
	deps Dependencies
}

// NewUserService constructs the service.
func NewUserService(deps Dependencies) *UserService {
	return &UserService{deps: deps.withDefaults()}
}

// CreateEmployee creates an EMPLOYEE user.
func (s *UserService) CreateEmployee(ctx context.Context, actor domain.Actor, input UserInput) (domain.User, error) {
	return s.Create(ctx, actor, input, domain.RoleEmployee)
}

// CreateAdmin creates an ADMIN user.
func (s *UserService) CreateAdmin(ctx context.Context, actor domain.Actor, input UserInput) (domain.User, error) {
	return s.Create(ctx, actor, input, domain.RoleAdmin)
}

// Create validates input, authorizes the actor and appends a new user with role.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, input UserInput, role domain.Role) (domain.User, error) {
	op, ok := policy.CreateOperation(role)
	if !ok {
		s.deps.deny(actor, policy.Operation("create"+string(role)), nil)
		return domain.User{}, apperrors.NewForbidden("role cannot be created")
	}
	if err := s.deps.authorize(actor, op, nil, "not allowed to create "+strings.ToLower(string(role))+" users"); err != nil {
		return domain.User{}, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Designation = strings.TrimSpace(input.Designation)
	if err := s.validateInput(input, role); err != nil {
		return domain.User{}, err
	}
	if role != domain.RoleEmployee {
		input.Designation = ""
	}

	now := s.deps.Clock()
	user := domain.User{
		ID:              s.deps.IDs(),
		Email:           input.Email,
		Password:        input.Password,
		Name:            input.Name,
		Role:            role,
		Designation:     input.Designation,
		CreatedAt:       now,
		CreatedBy:       actor.Name,
		CreatedByUserID: actor.ID,
		UpdatedAt:       now,
		UpdatedBy:       actor.Name,
		UpdatedByUserID: actor.ID,
	}

	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		users := repository.UserCollection(snap.Users)
		if users.EmailTaken(user.Email, "") {
			return apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		if _, exists := users.GetByID(user.ID); exists {
			return apperrors.NewConflict("user id already in use", map[string]any{"id": user.ID})
		}
		snap.Users = append(snap.Users, user)
		return nil
	})
	if err != nil {
		return domain.User{}, apperrors.MapError(err)
	}

	s.deps.Logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("actor_id", actor.ID))
	s.deps.publish(ctx, events.EventUserCreated, user.ID, actor, events.UserChangedPayload{
		Email:       user.Email,
		Role:        user.Role,
		Designation: user.DisplayDesignation(),
	})
	return user, nil
}

// Get returns a user visible to the actor.
func (s *UserService) Get(ctx context.Context, actor domain.Actor, id string) (domain.User, error) {
	if err := s.deps.authorize(actor, policy.OpViewDirectory, nil, "not allowed to view users"); err != nil {
		return domain.User{}, err
	}
	snap, err := s.deps.Store.Load(ctx)
	if err != nil {
		return domain.User{}, apperrors.MapError(err)
	}
	user, ok := repository.UserCollection(snap.Users).GetByID(id)
	if !ok {
		return domain.User{}, apperrors.NewNotFound("user", map[string]any{"user_id": id})
	}
	return user, nil
}

// Update is the manage-users path: an actor edits another user's record. Own-profile
// edits go through UpdateProfile.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, targetID string, patch UserPatch) (domain.User, error) {
	return s.update(ctx, actor, targetID, patch, policy.OpUpdateUser)
}

// UpdateProfile is the self-service path for the actor's own record.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, patch UserPatch) (domain.User, error) {
	return s.update(ctx, actor, actor.ID, patch, policy.OpUpdateOwnProfile)
}

func (s *UserService) update(ctx context.Context, actor domain.Actor, targetID string, patch UserPatch, op policy.Operation) (domain.User, error) {
	var updated domain.User
	var sessionRefreshed bool
	var denied *denial

	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		denied = nil
		users := repository.UserCollection(snap.Users)
		target, ok := users.GetByID(targetID)
		if !ok {
			return apperrors.NewNotFound("user", map[string]any{"user_id": targetID})
		}
		if op == policy.OpUpdateUser && policy.TargetImmutable(&target) {
			denied = &denial{op: op, target: target}
			return apperrors.NewForbidden(MsgSuperAdminModify)
		}
		if !policy.CanPerform(actor, op, &target) {
			denied = &denial{op: op, target: target}
			return apperrors.NewForbidden("not allowed to update this user")
		}
		if op == policy.OpUpdateOwnProfile {
			if err := checkCurrentPassword(target, patch.CurrentPassword); err != nil {
				return err
			}
		}

		merged, err := s.merge(target, patch, users)
		if err != nil {
			return err
		}
		merged.UpdatedAt = s.deps.Clock()
		merged.UpdatedBy = actor.Name
		merged.UpdatedByUserID = actor.ID

		snap.Users = users.Replace(merged)
		sessionRefreshed = refreshSessionUser(snap, merged)
		updated = merged
		return nil
	})
	if err != nil {
		denied.record(s.deps, actor)
		return domain.User{}, apperrors.MapError(err)
	}

	s.deps.Logger.Info("user updated",
		zap.String("user_id", updated.ID),
		zap.String("actor_id", actor.ID),
		zap.Bool("self_service", op == policy.OpUpdateOwnProfile),
		zap.Bool("session_refreshed", sessionRefreshed))
	s.deps.publish(ctx, events.EventUserUpdated, updated.ID, actor, events.UserChangedPayload{
		Email:       updated.Email,
		Role:        updated.Role,
		Designation: updated.DisplayDesignation(),
		SelfService: op == policy.OpUpdateOwnProfile,
	})
	return updated, nil
}

// merge applies the mutable fields of patch onto target. Role, id and creation
// stamps are never touched.
func (s *UserService) merge(target domain.User, patch UserPatch, users repository.UserCollection) (domain.User, error) {
	merged := target

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.User{}, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
		}
		merged.Name = name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if err := validateEmail(email); err != nil {
			return domain.User{}, err
		}
		if users.EmailTaken(email, target.ID) {
			return domain.User{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		merged.Email = email
	}
	if patch.Password != nil && *patch.Password != "" {
		if err := s.deps.Passwords.Validate(*patch.Password); err != nil {
			return domain.User{}, err
		}
		merged.Password = *patch.Password
	}
	if patch.Designation != nil && policy.DesignationEditable(&target) {
		merged.Designation = strings.TrimSpace(*patch.Designation)
	}
	return merged, nil
}

// Delete removes a user and prunes every membership referencing it in the same
// store transaction.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, targetID string) error {
	var deleted domain.User
	var pruned []string
	var denied *denial

	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		denied = nil
		users := repository.UserCollection(snap.Users)
		target, ok := users.GetByID(targetID)
		if !ok {
			return apperrors.NewNotFound("user", map[string]any{"user_id": targetID})
		}
		if policy.TargetImmutable(&target) {
			denied = &denial{op: policy.OpDeleteUser, target: target}
			return apperrors.NewForbidden(MsgSuperAdminDelete)
		}
		if !policy.CanPerform(actor, policy.OpDeleteUser, &target) {
			denied = &denial{op: policy.OpDeleteUser, target: target}
			return apperrors.NewForbidden("not allowed to delete this user")
		}

		snap.Users = users.Without(targetID)
		var teams repository.TeamCollection
		teams, pruned = repository.TeamCollection(snap.Teams).PruneMember(targetID)
		snap.Teams = teams
		if snap.Session != nil && snap.Session.User.ID == targetID {
			snap.Session = nil
		}
		deleted = target
		return nil
	})
	if err != nil {
		denied.record(s.deps, actor)
		return apperrors.MapError(err)
	}

	s.deps.Logger.Info("user deleted",
		zap.String("user_id", deleted.ID),
		zap.String("actor_id", actor.ID),
		zap.Strings("pruned_teams", pruned))
	s.deps.publish(ctx, events.EventUserDeleted, deleted.ID, actor, events.UserDeletedPayload{
		Email:       deleted.Email,
		PrunedTeams: pruned,
	})
	return nil
}

// checkCurrentPassword guards self-service edits: the caller must prove the stored
// credential before any field changes.
func checkCurrentPassword(target domain.User, current string) error {
	if current == "" {
		return apperrors.NewValidationError(MsgCurrentPasswordRequired, map[string]any{"field": "current_password"})
	}
	if !auth.PasswordMatches(target.Password, current) {
		return apperrors.NewUnauthorized(MsgCurrentPasswordIncorrect)
	}
	return nil
}

func (s *UserService) validateInput(input UserInput, role domain.Role) error {
	if input.Name == "" {
		return apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	if err := validateEmail(input.Email); err != nil {
		return err
	}
	if err := s.deps.Passwords.Validate(input.Password); err != nil {
		return err
	}
	if role == domain.RoleEmployee && input.Designation == "" {
		return apperrors.NewValidationError("designation is required for employees", map[string]any{"field": "designation"})
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperrors.NewValidationError("email is required", map[string]any{"field": "email"})
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return apperrors.NewValidationError("email is invalid", map[string]any{"field": "email"})
	}
	return nil
}
