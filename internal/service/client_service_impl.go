package service

import (
	"context"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/repository"
	"github.com/google/uuid"
)

type clientService struct {
	clients repository.ClientRepo
}

func NewClientService(clients repository.ClientRepo) ClientService {
	return &clientService{clients: clients}
}

func (s *clientService) Create(ctx context.Context, c *domain.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := c.Validate(); err != nil {
		return err
	}
	return s.clients.Create(ctx, c)
}

func (s *clientService) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *clientService) GetByCode(ctx context.Context, code string) (*domain.Client, error) {
	return s.clients.GetByCode(ctx, code)
}

func (s *clientService) List(ctx context.Context, activeOnly bool) ([]*domain.Client, error) {
	return s.clients.List(ctx, activeOnly)
}

func (s *clientService) Update(ctx context.Context, c *domain.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.UpdatedAt = time.Now().UTC()
	return s.clients.Update(ctx, c)
}

type reviewerService struct {
	reviewers repository.ReviewerRepo
}

func NewReviewerService(reviewers repository.ReviewerRepo) ReviewerService {
	return &reviewerService{reviewers: reviewers}
}

func (s *reviewerService) Create(ctx context.Context, r *domain.Reviewer) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Role == "" {
		r.Role = domain.RoleStaff
	}
	r.CreatedAt = time.Now().UTC()
	return s.reviewers.Create(ctx, r)
}

func (s *reviewerService) GetByID(ctx context.Context, id string) (*domain.Reviewer, error) {
	return s.reviewers.GetByID(ctx, id)
}

func (s *reviewerService) List(ctx context.Context) ([]*domain.Reviewer, error) {
	return s.reviewers.List(ctx)
}
