// Package txn runs MongoDB multi-document transactions with a fallback for
// deployments that do not support them (standalone servers used in local
// development and tests).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when transactions or sessions are unavailable.
const (
	codeIllegalOperation        = 20
	codeInvalidOptions          = 51
	codeOperationNotSupportedTx = 263
)

// Run executes fn inside a transaction on client.
//
// If the deployment rejects transactions, fn is executed once more with the
// plain context. Callers that need all-or-nothing semantics in that mode can
// detect it with InTransaction and compensate themselves.
func Run(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logger.Warn("transactions unavailable, running without one", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logger.Warn("transactions unavailable, running without one", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// InTransaction reports whether ctx carries a MongoDB session, which is the
// case only inside Run's transactional path.
func InTransaction(ctx context.Context) bool {
	return mongo.SessionFromContext(ctx) != nil
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone mongod, old servers, some managed offerings).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeInvalidOptions, codeOperationNotSupportedTx:
			return true
		}
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "transaction") && strings.Contains(s, "replica set"):
		return true
	case strings.Contains(s, "session") && strings.Contains(s, "not supported"):
		return true
	case strings.Contains(s, "illegal operation"):
		return true
	}
	return false
}
