package bills

import (
	"context"

	"github.com/dmitrijs2005/billboard/internal/client/models"
)

type Repository interface {
	UpsertMany(ctx context.Context, bills []models.Bill) error
	GetByID(ctx context.Context, id int64) (*models.Bill, error)
	List(ctx context.Context, limit int) ([]models.Bill, error)
	Clear(ctx context.Context) error
}
