package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service defines dining table business logic.
type Service interface {
	// CreateTable registers a table and mints its QR slug.
	CreateTable(ctx context.Context, req CreateTableRequest) (*DiningTable, error)
	// ResolveQRSlug maps a scanned QR slug to its table; inactive tables do not resolve.
	ResolveQRSlug(ctx context.Context, slug string) (*DiningTable, error)
	ListTables(ctx context.Context) ([]*DiningTable, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type service struct {
	repo Repository
}

// NewService creates a new table service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateTable(ctx context.Context, req CreateTableRequest) (*DiningTable, error) {
	if req.Number == "" {
		return nil, fmt.Errorf("number is required")
	}
	if req.Seats <= 0 {
		return nil, fmt.Errorf("seats must be greater than 0")
	}
	if _, err := s.repo.GetByNumber(ctx, req.Number); err == nil {
		return nil, fmt.Errorf("table %s already exists", req.Number)
	}

	t := &DiningTable{
		ID:       uuid.New(),
		Number:   req.Number,
		QRSlug:   generateQRSlug(),
		Seats:    req.Seats,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) ResolveQRSlug(ctx context.Context, slug string) (*DiningTable, error) {
	t, err := s.repo.GetByQRSlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrTableNotFound
	}
	return t, nil
}

func (s *service) ListTables(ctx context.Context) ([]*DiningTable, error) {
	return s.repo.List(ctx)
}

func (s *service) SetActive(ctx context.Context, id string, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

// generateQRSlug mints the opaque slug embedded in the printed QR code.
func generateQRSlug() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
