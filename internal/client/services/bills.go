package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/billboard/internal/client/models"
	"github.com/dmitrijs2005/billboard/internal/client/repositories/bills"
	"github.com/dmitrijs2005/billboard/internal/common"
	"github.com/dmitrijs2005/billboard/internal/logging"
)

// BillAPI is the browsing part of the API.
type BillAPI interface {
	MyRecommendations(ctx context.Context, token string, limit int) ([]models.Bill, error)
	Search(ctx context.Context, query string, limit int) ([]models.Bill, error)
	ListProfiles(ctx context.Context) ([]string, error)
	GetPublicProfile(ctx context.Context, username string) (*models.UserProfile, error)
	Recommendations(ctx context.Context, username string, limit int) ([]models.Bill, error)
	Health(ctx context.Context) (*models.Health, error)
}

// BillService fetches bills from the API and keeps every record it sees in the
// local catalog, so a bill can be looked up by id later.
type BillService struct {
	api     BillAPI
	tokens  TokenSource
	catalog bills.Repository
	log     logging.Logger
}

// NewBillService builds the service. catalog may be nil, in which case Get
// always reports common.ErrorNotFound.
func NewBillService(api BillAPI, tokens TokenSource, catalog bills.Repository, log logging.Logger) *BillService {
	return &BillService{api: api, tokens: tokens, catalog: catalog, log: log.With("component", "bills")}
}

func (s *BillService) Search(ctx context.Context, query string, limit int) ([]models.Bill, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", common.ErrorValidation)
	}

	found, err := s.api.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	s.Remember(ctx, found)
	return found, nil
}

// MyRecommendations returns recommendations for the signed-in user.
func (s *BillService) MyRecommendations(ctx context.Context, limit int) ([]models.Bill, error) {
	token := s.tokens.AuthToken()
	if token == "" {
		return nil, common.ErrNotSignedIn
	}

	recs, err := s.api.MyRecommendations(ctx, token, limit)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	s.Remember(ctx, recs)
	return recs, nil
}

// RecommendationsFor returns recommendations for a public profile.
func (s *BillService) RecommendationsFor(ctx context.Context, username string, limit int) ([]models.Bill, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: empty username", common.ErrorValidation)
	}

	recs, err := s.api.Recommendations(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("recommendations for %s: %w", username, err)
	}
	s.Remember(ctx, recs)
	return recs, nil
}

func (s *BillService) Profiles(ctx context.Context) ([]string, error) {
	names, err := s.api.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return names, nil
}

// Profile returns the public profile of username.
func (s *BillService) Profile(ctx context.Context, username string) (*models.UserProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: empty username", common.ErrorValidation)
	}

	p, err := s.api.GetPublicProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", username, err)
	}
	return p, nil
}

func (s *BillService) Health(ctx context.Context) (*models.Health, error) {
	return s.api.Health(ctx)
}

// Get returns a bill seen earlier from the local catalog.
func (s *BillService) Get(ctx context.Context, id int64) (*models.Bill, error) {
	if s.catalog == nil {
		return nil, common.ErrorNotFound
	}
	return s.catalog.GetByID(ctx, id)
}

// Recent lists the most recently seen bills from the local catalog.
func (s *BillService) Recent(ctx context.Context, limit int) ([]models.Bill, error) {
	if s.catalog == nil {
		return []models.Bill{}, nil
	}
	return s.catalog.List(ctx, limit)
}

// Remember writes bills to the local catalog. Failures are logged only.
func (s *BillService) Remember(ctx context.Context, seen []models.Bill) {
	if s.catalog == nil || len(seen) == 0 {
		return
	}
	if err := s.catalog.UpsertMany(ctx, seen); err != nil {
		s.log.Warn(ctx, "catalog write failed", "count", len(seen), "error", err)
	}
}
