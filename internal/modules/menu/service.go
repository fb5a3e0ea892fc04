package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service defines menu management business logic.
type Service interface {
	CreateItem(ctx context.Context, req UpsertMenuItemRequest) (*MenuItem, error)
	GetItem(ctx context.Context, id string) (*MenuItem, error)
	// ListItems returns the browsable menu; availableOnly hides 86'd dishes
	// from customers while staff still see everything.
	ListItems(ctx context.Context, category string, availableOnly bool) ([]*MenuItem, error)
	UpdateItem(ctx context.Context, id string, req UpsertMenuItemRequest) (*MenuItem, error)
	SetAvailability(ctx context.Context, id string, available bool) error
}

type service struct {
	repo Repository
}

// NewService creates a new menu service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateItem(ctx context.Context, req UpsertMenuItemRequest) (*MenuItem, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	item := &MenuItem{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsAvailable: available,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id string) (*MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListItems(ctx context.Context, category string, availableOnly bool) ([]*MenuItem, error) {
	return s.repo.List(ctx, category, availableOnly)
}

func (s *service) UpdateItem(ctx context.Context, id string, req UpsertMenuItemRequest) (*MenuItem, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = req.Name
	item.Description = req.Description
	item.Category = req.Category
	item.Price = req.Price
	item.ImageURL = req.ImageURL
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) SetAvailability(ctx context.Context, id string, available bool) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SetAvailability(ctx, id, available)
}

func validate(req UpsertMenuItemRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.Category == "" {
		return fmt.Errorf("category is required")
	}
	if req.Price.IsNegative() || req.Price.IsZero() {
		return fmt.Errorf("price must be greater than 0")
	}
	return nil
}
