package purchases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/ecofinds-backend/internal/listings"
	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	"github.com/angelmondragon/ecofinds-backend/pkg/pagination"
)

// Service exposes the buyer's purchase history view.
type Service interface {
	History(ctx context.Context, buyerID uuid.UUID, q listings.Query) (*PurchasePage, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) History(ctx context.Context, buyerID uuid.UUID, q listings.Query) (*PurchasePage, error) {
	rows, err := s.repo.ListByBuyer(ctx, buyerID, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}
	records := make([]PurchaseDTO, 0, len(rows))
	for _, row := range rows {
		records = append(records, toDTO(row))
	}
	if q.Sort == "" {
		q.Sort = enums.SortNewest
	}
	filtered := listings.Apply(records, q)

	statuses := []string{listings.AllValues}
	for _, status := range enums.PurchaseStatuses() {
		statuses = append(statuses, status.String())
	}
	return &PurchasePage{
		Items:      listings.Paginate(filtered, q.Page),
		Count:      len(filtered),
		Total:      len(records),
		Categories: listings.Categories(records),
		Statuses:   statuses,
	}, nil
}
