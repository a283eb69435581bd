// Package eventhandler reacts to user domain events: notification emails,
// search indexing, archiving and relaying to other services.
package eventhandler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/event"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/mailer"
)

// JSONPublisher puts a JSON message on a queue. *helpers.RabbitPublisher satisfies it.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type Indexer interface {
	Index(ctx context.Context, rec entity.Record) error
	Delete(ctx context.Context, id string) error
}

type Archiver interface {
	Archive(ctx context.Context, e event.UserDeleted) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id vo.UserID) (*entity.User, error)
}

// Deps are the collaborators shared by the handlers. Everything except Logger
// may be nil, in which case that side effect is skipped.
type Deps struct {
	Logger     logrus.FieldLogger
	Mail       JSONPublisher
	Index      Indexer
	Archive    Archiver
	Users      UserFinder
	Company    string
	SupportURL string
}

func (d Deps) log(e event.DomainEvent) logrus.FieldLogger {
	l := d.Logger
	if l == nil {
		l = logrus.StandardLogger()
	}
	m := e.Meta()
	return l.WithFields(logrus.Fields{
		"event_type":   m.Type,
		"event_id":     m.ID,
		"aggregate_id": m.AggregateID,
	})
}

func (d Deps) sendMail(ctx context.Context, to, template string, data map[string]any) error {
	if d.Mail == nil {
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}
	data["company"] = d.Company
	data["support_url"] = d.SupportURL
	if err := d.Mail.PublishJSON(ctx, mailer.EmailJob{To: to, Template: template, Data: data}); err != nil {
		return fmt.Errorf("enqueue %s email: %w", template, err)
	}
	return nil
}

// reindex loads the current state of the user and writes it to the index.
func (d Deps) reindex(ctx context.Context, id string) error {
	if d.Index == nil || d.Users == nil {
		return nil
	}
	uid, err := vo.NewUserID(id)
	if err != nil {
		return err
	}
	u, err := d.Users.FindByID(ctx, uid)
	if err != nil {
		return fmt.Errorf("load user for indexing: %w", err)
	}
	if u == nil {
		// deleted in the meantime
		return nil
	}
	if err := d.Index.Index(ctx, u.ToPersistence()); err != nil {
		return fmt.Errorf("index user: %w", err)
	}
	return nil
}

type UserCreatedHandler struct{ Deps }

func (h UserCreatedHandler) Handle(ctx context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.UserCreated)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	h.log(e).WithFields(logrus.Fields{"email": evt.Email, "role": evt.Role}).Info("user created")

	return errors.Join(
		h.sendMail(ctx, evt.Email, mailer.TemplateWelcome, map[string]any{"name": evt.Name}),
		h.reindex(ctx, evt.AggregateID),
	)
}

type UserUpdatedHandler struct{ Deps }

func (h UserUpdatedHandler) Handle(ctx context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.UserUpdated)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	log := h.log(e)
	log.WithField("changes", DescribeChanges(evt)).Info("user updated")

	var errs []error
	if evt.Email.Changed() {
		data := map[string]any{"old_email": evt.Email.Previous, "new_email": evt.Email.New}
		// notify the old and the new address
		errs = append(errs,
			h.sendMail(ctx, evt.Email.Previous, mailer.TemplateEmailChanged, data),
			h.sendMail(ctx, evt.Email.New, mailer.TemplateEmailChanged, data),
		)
	}
	if evt.Role.Changed() {
		log.WithFields(logrus.Fields{"previous_role": evt.Role.Previous, "new_role": evt.Role.New}).Warn("user role changed")
		if to := h.currentEmail(ctx, evt); to != "" {
			errs = append(errs, h.sendMail(ctx, to, mailer.TemplateRoleChanged, map[string]any{
				"previous_role": evt.Role.Previous,
				"new_role":      evt.Role.New,
			}))
		}
	}
	if evt.Name.Changed() {
		log.WithFields(logrus.Fields{"previous_name": evt.Name.Previous, "new_name": evt.Name.New}).Info("user renamed")
	}
	errs = append(errs, h.reindex(ctx, evt.AggregateID))
	return errors.Join(errs...)
}

func (h UserUpdatedHandler) currentEmail(ctx context.Context, evt event.UserUpdated) string {
	if evt.Email.Changed() {
		return evt.Email.New
	}
	if h.Users == nil {
		return ""
	}
	uid, err := vo.NewUserID(evt.AggregateID)
	if err != nil {
		return ""
	}
	u, err := h.Users.FindByID(ctx, uid)
	if err != nil || u == nil {
		return ""
	}
	return u.Email().Value()
}

// DescribeChanges renders the changed fields as "field: old → new", comma separated.
func DescribeChanges(evt event.UserUpdated) string {
	var parts []string
	for _, f := range []struct {
		name string
		c    *event.Change
	}{{"email", evt.Email}, {"name", evt.Name}, {"role", evt.Role}} {
		if f.c.Changed() {
			parts = append(parts, fmt.Sprintf("%s: %s → %s", f.name, f.c.Previous, f.c.New))
		}
	}
	return strings.Join(parts, ", ")
}

type UserDeletedHandler struct{ Deps }

func (h UserDeletedHandler) Handle(ctx context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.UserDeleted)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	h.log(e).WithField("email", evt.Email).Info("user deleted")

	var errs []error
	if h.Archive != nil {
		if err := h.Archive.Archive(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("archive user: %w", err))
		}
	}
	if h.Index != nil {
		if err := h.Index.Delete(ctx, evt.AggregateID); err != nil {
			errs = append(errs, fmt.Errorf("remove user from index: %w", err))
		}
	}
	errs = append(errs, h.sendMail(ctx, evt.Email, mailer.TemplateAccountDeleted, map[string]any{"name": evt.Name}))
	return errors.Join(errs...)
}

// Relay forwards every event, as JSON, to other services.
type Relay struct {
	Sender JSONPublisher
}

func (r Relay) Handle(ctx context.Context, e event.DomainEvent) error {
	if r.Sender == nil {
		return nil
	}
	if err := r.Sender.PublishJSON(ctx, e); err != nil {
		return fmt.Errorf("relay %s: %w", e.Meta().Type, err)
	}
	return nil
}

// Subscriber is the registration side of the event bus.
type Subscriber interface {
	Subscribe(eventType string, h event.Handler)
	SubscribeAll(h event.Handler)
}

// Register subscribes the user handlers, and the relay when sender is set.
func Register(bus Subscriber, deps Deps, sender JSONPublisher) {
	bus.Subscribe(event.TypeUserCreated, UserCreatedHandler{deps})
	bus.Subscribe(event.TypeUserUpdated, UserUpdatedHandler{deps})
	bus.Subscribe(event.TypeUserDeleted, UserDeletedHandler{deps})
	if sender != nil {
		bus.SubscribeAll(Relay{Sender: sender})
	}
}
