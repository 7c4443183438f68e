// internal/handlers/pages_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/soukcraft/soukcraft-web/internal/apiclient"
	"github.com/soukcraft/soukcraft-web/internal/config"
	"github.com/soukcraft/soukcraft-web/internal/handlers"
	"github.com/soukcraft/soukcraft-web/internal/manage"
	"github.com/soukcraft/soukcraft-web/internal/models"
	"github.com/soukcraft/soukcraft-web/internal/router"
)

const testAccessCode = "123456"

type PagesTestSuite struct {
	suite.Suite
	upstream *httptest.Server
	router   *gin.Engine

	failFeed    bool
	createCalls int
	updateCalls int
	deleteCalls int
}

func (s *PagesTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	s.upstream = httptest.NewServer(http.HandlerFunc(s.serveUpstream))

	cfg := &config.Config{
		Environment: "test",
		API: config.APIConfig{
			BaseURL:        s.upstream.URL,
			UploadsBaseURL: s.upstream.URL,
			Timeout:        5,
			MaxImageSize:   10 << 20,
		},
		Manage:    config.ManageConfig{SessionTTL: 30},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		Templates: config.TemplatesConfig{Glob: "../../web/templates/*.html"},
	}

	api := apiclient.New(cfg.API)
	store := manage.NewStore(time.Duration(cfg.Manage.SessionTTL) * time.Minute)
	s.router = router.InitializeWith(cfg, api, store)
}

func (s *PagesTestSuite) TearDownSuite() {
	s.upstream.Close()
}

func (s *PagesTestSuite) serveUpstream(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/ads":
		if s.failFeed {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]models.Ad{
			{ID: "1", Title: "Clay Pot", Description: "Handmade pottery", Price: 250, Category: models.CategoryPotteries, PhoneNumber: "0612345678", ImagePath: "pot.jpg"},
			{ID: "2", Title: "Berber Rug", Description: "Wool carpet", Price: 900, Category: models.CategoryCarpets, PhoneNumber: "0712345678", ImagePath: "rug.jpg"},
		})

	case r.Method == http.MethodPost && r.URL.Path == "/api/ads":
		s.createCalls++
		json.NewEncoder(w).Encode(map[string]string{"accessCode": "654321"})

	case r.Method == http.MethodGet && r.URL.Path == "/api/ads/"+testAccessCode:
		json.NewEncoder(w).Encode(models.Ad{
			ID: "1", Title: "Pot", Description: "Handmade with care",
			Price: 250, Category: models.CategoryPotteries,
			PhoneNumber: "0612345678", ImagePath: "pot.jpg",
		})

	case r.Method == http.MethodPut && r.URL.Path == "/api/ads/"+testAccessCode:
		s.updateCalls++
		r.ParseMultipartForm(16 << 20)
		json.NewEncoder(w).Encode(models.Ad{
			ID: "1", Title: r.FormValue("title"), Description: r.FormValue("description"),
			Category: models.Category(r.FormValue("category")),
			PhoneNumber: r.FormValue("phone_number"), ImagePath: r.FormValue("existingImage"),
		})

	case r.Method == http.MethodDelete && r.URL.Path == "/api/ads/"+testAccessCode:
		s.deleteCalls++
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet && r.URL.Path == "/api/admin/stats":
		json.NewEncoder(w).Encode(models.AdminStats{
			Total:           12,
			ByCategory:      []models.CategoryCount{{Category: models.CategoryPotteries, Count: 7}},
			TopContributors: []models.Contributor{{PhoneNumber: "0612345678", AdCount: 4}},
			Latest:          []models.LatestAd{{Title: "Pot", CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}},
		})

	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *PagesTestSuite) serve(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == handlers.SessionCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

// startEditing looks an ad up and returns the session cookie in Editing state.
func (s *PagesTestSuite) startEditing() *http.Cookie {
	w := s.serve(postForm("/manage/lookup", url.Values{"access_code": {testAccessCode}}))
	s.Require().Equal(http.StatusSeeOther, w.Code)
	return sessionCookie(s.T(), w)
}

func (s *PagesTestSuite) TestHomePageRendersFeed() {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	w := s.serve(req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Clay Pot")
	assert.Contains(s.T(), w.Body.String(), "Berber Rug")
}

func (s *PagesTestSuite) TestHomePageFiltersFeed() {
	req, _ := http.NewRequest(http.MethodGet, "/?q=pottery", nil)
	w := s.serve(req)

	assert.Contains(s.T(), w.Body.String(), "Clay Pot")
	assert.NotContains(s.T(), w.Body.String(), "Berber Rug")
}

func (s *PagesTestSuite) TestHomePageUpstreamFailure() {
	s.failFeed = true
	defer func() { s.failFeed = false }()

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	w := s.serve(req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Failed to load ads. Please try again later.")
}

func (s *PagesTestSuite) TestSubmitValidationFailureSkipsUpstream() {
	before := s.createCalls

	body, contentType := multipartForm(s.T(), map[string]string{
		"title":        "",
		"description":  strings.Repeat("d", 30),
		"price":        "-5",
		"category":     "potteries",
		"phone_number": "123",
	}, "", nil)

	req, _ := http.NewRequest(http.MethodPost, "/add", body)
	req.Header.Set("Content-Type", contentType)
	w := s.serve(req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Title is required")
	assert.Contains(s.T(), w.Body.String(), "Description must be ≤25 characters")
	assert.Contains(s.T(), w.Body.String(), "Price must be &gt; 0 MAD")
	assert.Contains(s.T(), w.Body.String(), "Invalid Moroccan number")
	assert.Contains(s.T(), w.Body.String(), "Image is required")
	assert.Equal(s.T(), before, s.createCalls)
}

func (s *PagesTestSuite) TestSubmitSuccessShowsAccessCodeOnce() {
	before := s.createCalls

	body, contentType := multipartForm(s.T(), map[string]string{
		"title":        "Pot",
		"description":  "Handmade with care",
		"price":        "250.00",
		"category":     "potteries",
		"phone_number": "0612345678",
	}, "pot.jpg", []byte("binary"))

	req, _ := http.NewRequest(http.MethodPost, "/add", body)
	req.Header.Set("Content-Type", contentType)
	w := s.serve(req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Your access code:")
	assert.Contains(s.T(), w.Body.String(), "654321")
	assert.Equal(s.T(), before+1, s.createCalls)
}

func (s *PagesTestSuite) TestManageLookupFailureKeepsCode() {
	w := s.serve(postForm("/manage/lookup", url.Values{"access_code": {"000000"}}))
	require.Equal(s.T(), http.StatusSeeOther, w.Code)
	cookie := sessionCookie(s.T(), w)

	req, _ := http.NewRequest(http.MethodGet, "/manage", nil)
	w = s.serve(req, cookie)

	assert.Contains(s.T(), w.Body.String(), "Ad not found. Please check your access code.")
	assert.Contains(s.T(), w.Body.String(), `value="000000"`)
}

func (s *PagesTestSuite) TestManageLookupSuccessShowsEditor() {
	cookie := s.startEditing()

	req, _ := http.NewRequest(http.MethodGet, "/manage", nil)
	w := s.serve(req, cookie)

	assert.Contains(s.T(), w.Body.String(), "Edit Your Ad")
	assert.Contains(s.T(), w.Body.String(), `value="Pot"`)
}

func (s *PagesTestSuite) TestManageUpdateValidationFailure() {
	cookie := s.startEditing()
	before := s.updateCalls

	w := s.serve(postForm("/manage/update", url.Values{
		"title":        {"Vase"},
		"description":  {strings.Repeat("d", 30)},
		"price":        {"250"},
		"category":     {"potteries"},
		"phone_number": {"0612345678"},
	}), cookie)
	require.Equal(s.T(), http.StatusSeeOther, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/manage", nil)
	w = s.serve(req, cookie)

	assert.Contains(s.T(), w.Body.String(), "Description must be ≤25 characters")
	assert.Equal(s.T(), before, s.updateCalls)
}

func (s *PagesTestSuite) TestManageUpdateSuccess() {
	cookie := s.startEditing()
	before := s.updateCalls

	w := s.serve(postForm("/manage/update", url.Values{
		"title":        {"Vase"},
		"description":  {"Handmade with care"},
		"price":        {"300"},
		"category":     {"potteries"},
		"phone_number": {"0612345678"},
	}), cookie)
	require.Equal(s.T(), http.StatusSeeOther, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/manage", nil)
	w = s.serve(req, cookie)

	assert.Contains(s.T(), w.Body.String(), "Ad updated successfully!")
	assert.Contains(s.T(), w.Body.String(), `value="Vase"`)
	assert.Equal(s.T(), before+1, s.updateCalls)
}

func (s *PagesTestSuite) TestManageDeleteNeedsConfirmation() {
	cookie := s.startEditing()
	before := s.deleteCalls

	w := s.serve(postForm("/manage/delete", url.Values{}), cookie)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Are you sure you want to delete this ad?")
	assert.Equal(s.T(), before, s.deleteCalls)
}

func (s *PagesTestSuite) TestManageDeleteConfirmedNavigatesHome() {
	cookie := s.startEditing()
	before := s.deleteCalls

	w := s.serve(postForm("/manage/delete", url.Values{"confirm": {"yes"}}), cookie)

	require.Equal(s.T(), http.StatusSeeOther, w.Code)
	assert.Equal(s.T(), "/", w.Header().Get("Location"))
	assert.Equal(s.T(), before+1, s.deleteCalls)

	// The session is gone; the old cookie lands back in Lookup
	req, _ := http.NewRequest(http.MethodGet, "/manage", nil)
	w = s.serve(req, cookie)
	assert.Contains(s.T(), w.Body.String(), "Manage Your Ad")
	assert.NotContains(s.T(), w.Body.String(), "Edit Your Ad")
}

func (s *PagesTestSuite) TestManageUpdateWithoutSessionRedirects() {
	w := s.serve(postForm("/manage/update", url.Values{"title": {"Vase"}}))
	assert.Equal(s.T(), http.StatusSeeOther, w.Code)
	assert.Equal(s.T(), "/manage", w.Header().Get("Location"))
}

func (s *PagesTestSuite) TestAdminStatsPage() {
	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	w := s.serve(req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Total Ads")
	assert.Contains(s.T(), w.Body.String(), "12")
	assert.Contains(s.T(), w.Body.String(), "0612345678")
	assert.Contains(s.T(), w.Body.String(), "01/05/2024")
}

func (s *PagesTestSuite) TestHealthCheck() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := s.serve(req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "healthy")
}

func multipartForm(t *testing.T, fields map[string]string, filename string, data []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestPagesSuite(t *testing.T) {
	suite.Run(t, new(PagesTestSuite))
}
