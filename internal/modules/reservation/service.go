package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service defines reservation business logic.
type Service interface {
	CreateReservation(ctx context.Context, req CreateReservationRequest) (*Reservation, error)
	GetReservation(ctx context.Context, id string) (*Reservation, error)
	ListReservations(ctx context.Context, status string) ([]*Reservation, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Reservation, error)
}

type service struct {
	repo Repository
}

// NewService creates a new reservation service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateReservation(ctx context.Context, req CreateReservationRequest) (*Reservation, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.Phone == "" {
		return nil, fmt.Errorf("phone is required")
	}
	if req.PartySize <= 0 {
		return nil, fmt.Errorf("party_size must be greater than 0")
	}
	if req.ReservedAt.Before(time.Now()) {
		return nil, fmt.Errorf("reserved_at must be in the future")
	}

	res := &Reservation{
		ID:         uuid.New(),
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		PartySize:  req.PartySize,
		ReservedAt: req.ReservedAt,
		Notes:      req.Notes,
		Status:     StatusNew,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetReservation(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListReservations(ctx context.Context, status string) ([]*Reservation, error) {
	return s.repo.List(ctx, status)
}

func (s *service) UpdateStatus(ctx context.Context, id string, status string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := ReservationStatus(strings.ToUpper(status))
	switch next {
	case StatusConfirmed, StatusCancelled:
	default:
		return nil, fmt.Errorf("unsupported status: %s", status)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	res.Status = next
	return res, nil
}
