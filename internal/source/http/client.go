// Package http implements the property source against the listing service's
// REST API.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/score"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/source"
)

var _ source.Source = (*Client)(nil)

// Config holds connection settings for the listing service.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the listing service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client

	now func() time.Time
}

// NewClient creates an HTTP property source.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: timeout},
		now:     time.Now,
	}, nil
}

func (c *Client) Get(ctx context.Context, id string) (domain.Property, error) {
	var dto propertyDTO
	err := c.getJSON(ctx, "/api/v1/properties/"+url.PathEscape(id), nil, &dto)
	if err != nil {
		return domain.Property{}, err
	}
	return dto.toDomain(), nil
}

func (c *Client) List(ctx context.Context, offset, limit int) ([]domain.Property, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return c.listProperties(ctx, q)
}

func (c *Client) ListIDs(ctx context.Context) ([]string, error) {
	var resp struct {
		IDs []string `json:"ids"`
	}
	if err := c.getJSON(ctx, "/api/v1/properties/ids", nil, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

func (c *Client) ModifiedSince(ctx context.Context, since time.Time) ([]domain.Property, error) {
	q := url.Values{}
	q.Set("modified_since", since.UTC().Format(time.RFC3339))
	return c.listProperties(ctx, q)
}

func (c *Client) VastuAnalyzedSince(ctx context.Context, since time.Time) ([]domain.Property, error) {
	q := url.Values{}
	q.Set("vastu_analyzed_since", since.UTC().Format(time.RFC3339))
	return c.listProperties(ctx, q)
}

func (c *Client) ReportsExpiringWithin(ctx context.Context, lookahead time.Duration) ([]domain.Property, error) {
	q := url.Values{}
	q.Set("report_expires_before", c.now().Add(lookahead).UTC().Format(time.RFC3339))
	return c.listProperties(ctx, q)
}

func (c *Client) EngagementChangedSince(ctx context.Context, since time.Time) ([]domain.Property, error) {
	q := url.Values{}
	q.Set("engagement_changed_since", since.UTC().Format(time.RFC3339))
	return c.listProperties(ctx, q)
}

// Profile fetches the user's preference profile. The listing service answers
// 404 for users without one, which surfaces as domain.ErrNotFound.
func (c *Client) Profile(ctx context.Context, userID string) (score.Profile, error) {
	var dto profileDTO
	err := c.getJSON(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/preferences", nil, &dto)
	if err != nil {
		return score.Profile{}, err
	}
	p, err := score.NewProfile(dto.VastuImportance, dto.ClimateAversion,
		dto.BudgetFit, dto.Popularity, dto.BudgetMax)
	if err != nil {
		return score.Profile{}, fmt.Errorf("profile %s: %w", userID, err)
	}
	return p, nil
}

// Ping probes the listing service with a minimal page request.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("limit", "1")
	_, err := c.listProperties(ctx, q)
	return err
}

func (c *Client) listProperties(ctx context.Context, q url.Values) ([]domain.Property, error) {
	var resp struct {
		Properties []propertyDTO `json:"properties"`
	}
	if err := c.getJSON(ctx, "/api/v1/properties", q, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Property, len(resp.Properties))
	for i, dto := range resp.Properties {
		out[i] = dto.toDomain()
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, domain.ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s: %w",
			path, resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrSourceUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}

// profileDTO is the listing service's wire representation of a user
// preference profile.
type profileDTO struct {
	VastuImportance float64 `json:"vastu_importance"`
	ClimateAversion float64 `json:"climate_aversion"`
	BudgetFit       float64 `json:"budget_fit"`
	Popularity      float64 `json:"popularity"`
	BudgetMax       float64 `json:"budget_max"`
}

// propertyDTO is the listing service's wire representation of a property.
type propertyDTO struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Price            float64   `json:"price"`
	Bedrooms         int       `json:"bedrooms"`
	Bathrooms        int       `json:"bathrooms"`
	PropertyType     string    `json:"property_type"`
	City             string    `json:"city"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	YearBuilt        int       `json:"year_built"`
	AreaSqft         float64   `json:"area_sqft"`
	Amenities        []string  `json:"amenities"`
	VastuScore       float64   `json:"vastu_score"`
	ClimateRiskScore float64   `json:"climate_risk_score"`
	Views            int64     `json:"views"`
	Favorites        int64     `json:"favorites"`
	UpdatedAt        time.Time `json:"updated_at"`
	VastuAnalyzedAt  time.Time `json:"vastu_analyzed_at"`
	ReportExpiresAt  time.Time `json:"report_expires_at"`
	EngagementSyncAt time.Time `json:"engagement_sync_at"`
}

func (d propertyDTO) toDomain() domain.Property {
	return domain.Property{
		ID:               d.ID,
		Title:            d.Title,
		Price:            d.Price,
		Bedrooms:         d.Bedrooms,
		Bathrooms:        d.Bathrooms,
		PropertyType:     d.PropertyType,
		City:             d.City,
		Latitude:         d.Latitude,
		Longitude:        d.Longitude,
		YearBuilt:        d.YearBuilt,
		AreaSqft:         d.AreaSqft,
		Amenities:        d.Amenities,
		VastuScore:       d.VastuScore,
		ClimateRiskScore: d.ClimateRiskScore,
		Views:            d.Views,
		Favorites:        d.Favorites,
		UpdatedAt:        d.UpdatedAt,
		VastuAnalyzedAt:  d.VastuAnalyzedAt,
		ReportExpiresAt:  d.ReportExpiresAt,
		EngagementSyncAt: d.EngagementSyncAt,
	}
}
