package client

import (
	"context"

	"github.com/dmitrijs2005/billboard/internal/client/models"
)

// Client is the Bill Board backend API. Methods taking a token call
// endpoints scoped to the token's user.
type Client interface {
	GetProfile(ctx context.Context, token string) (*models.Profile, error)
	PutProfile(ctx context.Context, token string, profile models.ProfileInput) (*models.Profile, error)
	ListSaved(ctx context.Context, token string) ([]models.Bill, error)
	SaveBill(ctx context.Context, token string, billID int64) error
	UnsaveBill(ctx context.Context, token string, billID int64) error
	MyRecommendations(ctx context.Context, token string, limit int) ([]models.Bill, error)
	DeleteAccount(ctx context.Context, token string) error

	Search(ctx context.Context, query string, limit int) ([]models.Bill, error)
	ListProfiles(ctx context.Context) ([]string, error)
	GetPublicProfile(ctx context.Context, username string) (*models.UserProfile, error)
	Recommendations(ctx context.Context, username string, limit int) ([]models.Bill, error)
	Health(ctx context.Context) (*models.Health, error)
}
