package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/observability"
	"github.com/spec-kit/org-directory/internal/policy"
	"github.com/spec-kit/org-directory/internal/repository"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator returns a fresh unique identifier.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string {
	return uuid.NewString()
}

// Dependencies encapsulates what the lifecycle services share.
type Dependencies struct {
	Store      repository.RecordStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      Clock
	IDs        IDGenerator
	Passwords  auth.PasswordPolicy
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.IDs == nil {
		d.IDs = NewUUID
	}
	if d.Passwords.MinLength <= 0 {
		d.Passwords = auth.NewPasswordPolicy(0)
	}
	return d
}

// authorize runs the policy and turns a denial into a Forbidden error.
func (d Dependencies) authorize(actor domain.Actor, op policy.Operation, target *domain.User, message string) error {
	if policy.CanPerform(actor, op, target) {
		return nil
	}
	d.deny(actor, op, target)
	return apperrors.NewForbidden(message)
}

// denial remembers a policy rejection made inside a store transaction. Stores may
// run the transform more than once, so it is recorded only after Update returns.
type denial struct {
	op     policy.Operation
	target domain.User
}

// record logs and counts d when set.
func (d *denial) record(deps Dependencies, actor domain.Actor) {
	if d == nil {
		return
	}
	deps.deny(actor, d.op, &d.target)
}

func (d Dependencies) deny(actor domain.Actor, op policy.Operation, target *domain.User) {
	fields := []zap.Field{
		zap.String("operation", string(op)),
		zap.String("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
	}
	if target != nil {
		fields = append(fields, zap.String("target_id", target.ID), zap.String("target_role", string(target.Role)))
	}
	d.Logger.Warn("authorization denied", fields...)
	d.Metrics.RecordDenial(string(op))
}

// publish emits an event after a committed mutation. Subscriber failures are
// logged and never undo the mutation.
func (d Dependencies) publish(ctx context.Context, eventType events.EventType, entityID string, actor domain.Actor, payload interface{}) {
	if d.Dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        d.IDs(),
		Type:      eventType,
		EntityID:  entityID,
		Actor:     events.ActorFrom(actor),
		Timestamp: d.Clock(),
		Payload:   payload,
	}
	if err := d.Dispatcher.Publish(ctx, event); err != nil {
		d.Logger.Error("event subscriber failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
