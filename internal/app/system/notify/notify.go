// Package notify tells trio members their group for the day is ready.
//
// Store writes one in-app notification per member. NATS publishes the same
// notice for realtime listeners. Multi fans a notice out to several notifiers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"github.com/dalemusser/rantrio/internal/domain/models"
)

const groupFormedTitle = "Your group is ready!"

// NotificationWriter persists notifications in bulk.
type NotificationWriter interface {
	InsertMany(ctx context.Context, ns []models.Notification) error
}

// Store notifies members through the notifications collection.
type Store struct {
	w NotificationWriter
}

var _ formation.Notifier = (*Store)(nil)

// NewStore returns a Store writing through w.
func NewStore(w NotificationWriter) *Store {
	return &Store{w: w}
}

// NotifyGroup writes one group_formed notification per member.
func (s *Store) NotifyGroup(ctx context.Context, n formation.GroupNotice) error {
	ns := GroupFormed(n)
	if len(ns) == 0 {
		return nil
	}
	if err := s.w.InsertMany(ctx, ns); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

// GroupFormed builds the per-member notifications for a newly formed group.
func GroupFormed(n formation.GroupNotice) []models.Notification {
	msg := fmt.Sprintf("You've been matched with %d other users for today.", n.MemberCount-1)

	out := make([]models.Notification, 0, len(n.MemberIDs))
	for _, uid := range n.MemberIDs {
		out = append(out, models.Notification{
			UserID:  uid,
			Type:    models.NotificationGroupFormed,
			Title:   groupFormedTitle,
			Message: msg,
			Metadata: map[string]string{
				"group_id":   n.GroupID,
				"date":       n.Date,
				"group_size": strconv.Itoa(n.MemberCount),
			},
		})
	}
	return out
}

// Multi sends a notice to every notifier in order. All are attempted even
// when an earlier one fails.
type Multi []formation.Notifier

// NotifyGroup implements formation.Notifier.
func (m Multi) NotifyGroup(ctx context.Context, n formation.GroupNotice) error {
	var errs []error
	for _, nf := range m {
		if nf == nil {
			continue
		}
		if err := nf.NotifyGroup(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
