// internal/apiclient/client.go
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/soukcraft/soukcraft-web/internal/config"
	"github.com/soukcraft/soukcraft-web/internal/models"
)

// ErrNotFound is returned when the upstream answers 404 for a lookup,
// typically because the access code does not match any ad.
var ErrNotFound = errors.New("ad not found")

// APIError carries a non-2xx upstream status. The frontend never retries;
// callers translate it into a user-visible message.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API returned status %d", e.StatusCode)
}

// Upload is a file pending transfer to the upstream API.
type Upload struct {
	Filename string
	Data     []byte
}

// NewAd is the multipart payload for POST /api/ads. Price stays a string:
// it is forwarded exactly as the user typed it.
type NewAd struct {
	Title       string
	Description string
	Price       string
	Category    models.Category
	PhoneNumber string
	Image       Upload
}

// AdUpdate is the multipart payload for PUT /api/ads/{accessCode}.
// NewImage nil means "keep existing image"; ExistingImage carries the
// current server-side path either way.
type AdUpdate struct {
	Title         string
	Description   string
	Price         string
	Category      models.Category
	PhoneNumber   string
	ExistingImage string
	NewImage      *Upload
}

// Client wraps the upstream ads REST API. All trust is deferred to the
// server: access codes are passed through unmodified in the request path.
type Client struct {
	baseURL        string
	uploadsBaseURL string
	httpClient     *http.Client
}

func New(cfg config.APIConfig) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		uploadsBaseURL: strings.TrimRight(cfg.UploadsBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Ads fetches the public feed.
func (c *Client) Ads(ctx context.Context) ([]models.Ad, error) {
	var ads []models.Ad
	if err := c.getJSON(ctx, "/api/ads", &ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// AdByCode looks up a single ad by its access code.
func (c *Client) AdByCode(ctx context.Context, code string) (*models.Ad, error) {
	var ad models.Ad
	if err := c.getJSON(ctx, "/api/ads/"+url.PathEscape(code), &ad); err != nil {
		return nil, err
	}
	return &ad, nil
}

// CreateAd submits a new ad and returns the server-issued access code.
// The code is shown to the user exactly once and never stored here.
func (c *Client) CreateAd(ctx context.Context, ad NewAd) (string, error) {
	body, contentType, err := encodeAdForm(adForm{
		Title:       ad.Title,
		Description: ad.Description,
		Price:       ad.Price,
		Category:    ad.Category,
		PhoneNumber: ad.PhoneNumber,
		Image:       &ad.Image,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/ads", contentType, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var created struct {
		AccessCode string `json:"accessCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	return created.AccessCode, nil
}

// UpdateAd submits an authenticated update. The image part is included
// only when a replacement was picked.
func (c *Client) UpdateAd(ctx context.Context, code string, upd AdUpdate) (*models.Ad, error) {
	body, contentType, err := encodeAdForm(adForm{
		Title:         upd.Title,
		Description:   upd.Description,
		Price:         upd.Price,
		Category:      upd.Category,
		PhoneNumber:   upd.PhoneNumber,
		ExistingImage: upd.ExistingImage,
		HasExisting:   true,
		Image:         upd.NewImage,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPut, "/api/ads/"+url.PathEscape(code), contentType, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var ad models.Ad
	if err := json.NewDecoder(resp.Body).Decode(&ad); err != nil {
		return nil, fmt.Errorf("decode update response: %w", err)
	}
	return &ad, nil
}

// DeleteAd issues the authenticated delete. Irreversible upstream.
func (c *Client) DeleteAd(ctx context.Context, code string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/ads/"+url.PathEscape(code), "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// AdminStats fetches the precomputed aggregate payload.
func (c *Client) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	if err := c.getJSON(ctx, "/api/admin/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ImageURL resolves a server-relative image path against the uploads host.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return c.uploadsBaseURL + "/uploads/" + strings.TrimLeft(path, "/")
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response for %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).WithError(err).Warn("Upstream API call failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
}

// adForm mirrors the FormData the browser client sends: plain fields first,
// then the optional image binary.
type adForm struct {
	Title         string
	Description   string
	Price         string
	Category      models.Category
	PhoneNumber   string
	ExistingImage string
	HasExisting   bool
	Image         *Upload
}

func encodeAdForm(form adForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":        form.Title,
		"description":  form.Description,
		"price":        form.Price,
		"category":     string(form.Category),
		"phone_number": form.PhoneNumber,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if form.HasExisting {
		if err := w.WriteField("existingImage", form.ExistingImage); err != nil {
			return nil, "", fmt.Errorf("write field existingImage: %w", err)
		}
	}

	if form.Image != nil {
		part, err := w.CreateFormFile("image", form.Image.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(form.Image.Data); err != nil {
			return nil, "", fmt.Errorf("write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
