// Package events wraps the /events endpoints and groups nearby events for the map.
package events

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"hobbyhub/internal/client/api"
	"hobbyhub/internal/geo"
	"hobbyhub/internal/models"

	"github.com/pkg/errors"
)

const basePath = "/events"

// ListParams filters GET /events. Zero fields are omitted.
type ListParams struct {
	HobbyID string
	From    time.Time
	To      time.Time
	Page    int
	Limit   int
}

func (p ListParams) query() map[string]string {
	q := map[string]string{}
	if p.HobbyID != "" {
		q["hobbyId"] = p.HobbyID
	}
	if !p.From.IsZero() {
		q["from"] = p.From.UTC().Format(time.RFC3339)
	}
	if !p.To.IsZero() {
		q["to"] = p.To.UTC().Format(time.RFC3339)
	}
	if p.Page > 0 {
		q["page"] = strconv.Itoa(p.Page)
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	return q
}

// CreateInput is the body of POST /events. A zero EndsAt lets the server pick a default.
type CreateInput struct {
	HobbyID     string     `json:"hobbyId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartsAt    time.Time  `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Address     string     `json:"address,omitempty"`
	Capacity    int        `json:"capacity,omitempty"`
}

// UpdateInput is the body of PUT /events/:id. Nil fields are left unchanged.
type UpdateInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
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

func (s *Service) List(ctx context.Context, params ListParams) (*api.Page[models.Event], error) {
	env, err := s.client.Get(ctx, basePath, params.query())
	if err != nil {
		return nil, err
	}
	return api.DecodePage[models.Event](env)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Event, error) {
	env, err := s.client.Get(ctx, itemPath(id), nil)
	if err != nil {
		return nil, err
	}
	return api.Decode[*models.Event](env)
}

// Nearby lists upcoming events within radiusKm of (lat, lng), nearest first.
// A radiusKm of 0 uses the server default.
func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.Event, error) {
	if !geo.Valid(lat, lng) {
		return nil, errors.Errorf("invalid coordinates %f,%f", lat, lng)
	}
	q := map[string]string{
		"lat": strconv.FormatFloat(lat, 'f', -1, 64),
		"lng": strconv.FormatFloat(lng, 'f', -1, 64),
	}
	if radiusKm > 0 {
		q["radius"] = strconv.FormatFloat(radiusKm, 'f', -1, 64)
	}
	env, err := s.client.Get(ctx, basePath+"/nearby", q)
	if err != nil {
		return nil, err
	}
	return api.Decode[[]models.Event](env)
}

// Clusters groups the nearby events into map markers no wider than clusterKm.
func (s *Service) Clusters(ctx context.Context, lat, lng, radiusKm, clusterKm float64) ([]geo.Cluster, error) {
	events, err := s.Nearby(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}
	return ClusterEvents(events, clusterKm), nil
}

// ClusterEvents converts events to points and clusters them.
func ClusterEvents(events []models.Event, clusterKm float64) []geo.Cluster {
	points := make([]geo.Point, len(events))
	for i, e := range events {
		points[i] = geo.Point{ID: e.ID, Lat: e.Latitude, Lng: e.Longitude}
	}
	return geo.ClusterPoints(points, clusterKm)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Event, error) {
	return s.mutate(ctx, func() (*api.Envelope, error) { return s.client.Post(ctx, basePath, in) })
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Event, error) {
	return s.mutate(ctx, func() (*api.Envelope, error) { return s.client.Put(ctx, itemPath(id), in) })
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Delete(ctx, itemPath(id)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Attend reserves a seat. A full event fails with code EVENT_FULL.
func (s *Service) Attend(ctx context.Context, id string) (*models.Event, error) {
	return s.mutate(ctx, func() (*api.Envelope, error) { return s.client.Post(ctx, itemPath(id)+"/attend", nil) })
}

func (s *Service) Unattend(ctx context.Context, id string) (*models.Event, error) {
	return s.mutate(ctx, func() (*api.Envelope, error) { return s.client.Delete(ctx, itemPath(id)+"/attend") })
}

func (s *Service) mutate(ctx context.Context, call func() (*api.Envelope, error)) (*models.Event, error) {
	env, err := call()
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return api.Decode[*models.Event](env)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.client.InvalidateCache(ctx, basePath); err != nil {
		s.log.Warn("cache invalidation failed", "prefix", basePath, "error", err)
	}
}
