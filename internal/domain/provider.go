package domain

import "context"

// DataProvider is the backend the dashboard talks to.
// Login returns ErrInvalidCredentials when no account matches.
type DataProvider interface {
	Login(ctx context.Context, creds Credentials) (Session, error)
	FetchDashboardData(ctx context.Context, token string) (Snapshot, error)
}
