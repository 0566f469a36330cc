// Package hobbies wraps the /hobbies endpoints.
package hobbies

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"hobbyhub/internal/client/api"
	"hobbyhub/internal/models"
)

const basePath = "/hobbies"

// ListParams filters GET /hobbies. Zero fields are omitted.
type ListParams struct {
	Category models.HobbyCategory
	Search   string
	Page     int
	Limit    int
}

func (p ListParams) query() map[string]string {
	q := map[string]string{}
	if p.Category != "" {
		q["category"] = string(p.Category)
	}
	if p.Search != "" {
		q["search"] = p.Search
	}
	if p.Page > 0 {
		q["page"] = strconv.Itoa(p.Page)
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	return q
}

// CreateInput is the body of POST /hobbies.
type CreateInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Category    models.HobbyCategory `json:"category,omitempty"`
	ImageURL    string               `json:"imageUrl,omitempty"`
}

// UpdateInput is the body of PUT /hobbies/:id. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Category    *models.HobbyCategory `json:"category,omitempty"`
	ImageURL    *string               `json:"imageUrl,omitempty"`
}

type Service struct {
	client *api.Client
	log    *slog.Logger
}

func NewService(client *api.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, log: logger}
}

func itemPath(id string) string {
	return basePath + "/" + url.PathEscape(id)
}

func (s *Service) List(ctx context.Context, params ListParams) (*api.Page[models.Hobby], error) {
	env, err := s.client.Get(ctx, basePath, params.query())
	if err != nil {
		return nil, err
	}
	return api.DecodePage[models.Hobby](env)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Hobby, error) {
	env, err := s.client.Get(ctx, itemPath(id), nil)
	if err != nil {
		return nil, err
	}
	return api.Decode[*models.Hobby](env)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Hobby, error) {
	return s.mutate(ctx, func() (*api.Envelope, error) { return s.client.Post(ctx, basePath, in) })
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Hobby, error) {
	return s.mutate(ctx, func() (*api.Envelope, error) { return s.client.Put(ctx, itemPath(id), in) })
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Delete(ctx, itemPath(id)); err != nil {
		return err
	}
	s.invalidate(ctx, basePath)
	// the hobby's events are gone with it
	s.invalidate(ctx, "/events")
	return nil
}

// Join adds the current user to the hobby. Joining twice is harmless.
func (s *Service) Join(ctx context.Context, id string) (*models.Hobby, error) {
	return s.mutate(ctx, func() (*api.Envelope, error) { return s.client.Post(ctx, itemPath(id)+"/join", nil) })
}

func (s *Service) Leave(ctx context.Context, id string) (*models.Hobby, error) {
	return s.mutate(ctx, func() (*api.Envelope, error) { return s.client.Delete(ctx, itemPath(id)+"/join") })
}

// mutate runs a write and drops cached hobby reads on success.
func (s *Service) mutate(ctx context.Context, call func() (*api.Envelope, error)) (*models.Hobby, error) {
	env, err := call()
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, basePath)
	return api.Decode[*models.Hobby](env)
}

func (s *Service) invalidate(ctx context.Context, prefix string) {
	if err := s.client.InvalidateCache(ctx, prefix); err != nil {
		s.log.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}
