// Package firestore implements the domain repositories over Google Cloud
// Firestore, the application's document store.
package firestore

import (
	"context"
	"log/slog"

	"cinescope/config"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

// Collection names. Counters and audit events live beside the profiles in
// the same database.
const (
	collectionProfiles   = "profiles"
	collectionLockouts   = "login_attempts"
	collectionRateLimits = "rate_limits"
	collectionAuditLogs  = "audit_logs"
)

// Params defines the parameters required to build the Firestore client.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the Firestore client once at process start. The handle is
// reused for the process lifetime and closed on shutdown.
func New(ctx context.Context, params Params) (*firestore.Client, error) {
	var opts []option.ClientOption
	if params.Config.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(params.Config.Firebase.CredentialsPath))
	}

	client, err := firestore.NewClient(ctx, params.Config.Firebase.ProjectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Firestore client")
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("Closing Firestore client")

			return errors.WithStack(client.Close())
		},
	})

	return client, nil
}
