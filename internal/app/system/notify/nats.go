package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "rantrio"

// Publisher is the subset of *nats.Conn used to send notices.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes group notices on core NATS subjects:
//
//	<prefix>.group.<group_id>   once per group
//	<prefix>.user.<user_id>     once per member
type NATS struct {
	pub    Publisher
	prefix string
	log    *zap.Logger
}

var _ formation.Notifier = (*NATS)(nil)

// NewNATS returns a NATS notifier. An empty prefix uses DefaultSubjectPrefix.
func NewNATS(pub Publisher, prefix string, logger *zap.Logger) *NATS {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATS{pub: pub, prefix: prefix, log: logger}
}

// GroupSubject returns the subject a group's notice is published on.
func (p *NATS) GroupSubject(groupID string) string {
	return p.prefix + ".group." + groupID
}

// UserSubject returns the subject a member's notice is published on.
func (p *NATS) UserSubject(userID string) string {
	return p.prefix + ".user." + userID
}

// NotifyGroup publishes n to the group subject and to each member's subject.
func (p *NATS) NotifyGroup(ctx context.Context, n formation.GroupNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	if err := p.pub.Publish(p.GroupSubject(n.GroupID), data); err != nil {
		return fmt.Errorf("publish group notice: %w", err)
	}

	var errs []error
	for _, uid := range n.MemberIDs {
		if err := p.pub.Publish(p.UserSubject(uid), data); err != nil {
			p.log.Warn("failed to publish member notice",
				zap.String("group_id", n.GroupID),
				zap.String("user_id", uid),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("publish to %s: %w", uid, err))
		}
	}
	return errors.Join(errs...)
}

// Connect opens a NATS connection that keeps reconnecting for the life of
// the process.
func Connect(url string, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("rantrio"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return nc, nil
}
