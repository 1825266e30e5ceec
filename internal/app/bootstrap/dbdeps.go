// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// NATS is nil when nats_url is blank.
	NATS *nats.Conn

	// svc is allocated in ConnectDB and filled in by Startup, so the
	// handler and shutdown hooks see what Startup built.
	svc *services
}
