package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"filmverse/internal/database"
	"filmverse/internal/middleware"
	"filmverse/internal/modules/auth"
	"filmverse/internal/modules/favorite"
	"filmverse/internal/modules/feed"
	"filmverse/internal/modules/filmnote"
	jwtsvc "filmverse/internal/pkg/jwt"
	"filmverse/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
	feedServer *httptest.Server
	csrfToken  string
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

const upstreamPayload = `{
	"id": 969681,
	"title": "Spider-Man: Brand New Day",
	"release_date": "2026-07-31",
	"type": "Movie",
	"days_until": 120,
	"following_production": {
		"id": 1003596,
		"title": "Avengers: Doomsday",
		"release_date": "2026-12-18",
		"type": "Movie"
	}
}`

func setupTestSuite(t *testing.T) *E2ETestSuite {
	// Use in-memory SQLite for testing
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db), "Failed to migrate test database")

	// Fake upstream feed so no test touches the network
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, upstreamPayload)
	}))
	t.Cleanup(feedServer.Close)

	userRepo := repository.NewUserRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	filmNoteRepo := repository.NewFilmNoteRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	authService := auth.NewService(userRepo, jwtService)
	authHandler := auth.NewHandler(authService, false, 24*60*60)

	favoriteService := favorite.NewService(favoriteRepo)
	favoriteHandler := favorite.NewHandler(favoriteService)

	noteService := filmnote.NewService(filmNoteRepo)
	noteHandler := filmnote.NewHandler(noteService)

	feedClient := feed.NewClient(feedServer.URL, 5*time.Second, 2, time.Hour)
	feedHandler := feed.NewHandler(feedClient)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CSRF(false))

	v1 := r.Group("/api/v1")

	// Public routes
	authHandler.RegisterPublicRoutes(v1)
	feedHandler.RegisterPublicRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(jwtService))
	{
		authHandler.RegisterProtectedRoutes(protected)
		favoriteHandler.RegisterRoutes(protected)
		noteHandler.RegisterRoutes(protected)
		feedHandler.RegisterProtectedRoutes(protected)
	}

	suite := &E2ETestSuite{
		router:     r,
		db:         db,
		jwtService: jwtService,
		feedServer: feedServer,
	}
	suite.primeCSRFToken(t)
	return suite
}

// primeCSRFToken does one safe request to pick up the double-submit cookie,
// the same thing a browser does on first page load.
func (s *E2ETestSuite) primeCSRFToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/films/upcoming", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.CSRFCookieName {
			s.csrfToken = cookie.Value
			return
		}
	}
	t.Fatal("no CSRF cookie issued on safe request")
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyBytes []byte
	var err error

	if body != nil {
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method != "GET" && method != "HEAD" {
		req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: s.csrfToken})
		req.Header.Set(middleware.CSRFHeaderName, s.csrfToken)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w, nil
}

func parseResponse(w *httptest.ResponseRecorder) (*TestResponse, error) {
	var resp TestResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	if err != nil {
		log.Printf("Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	}
	return &resp, err
}

func (s *E2ETestSuite) registerUser(t *testing.T, email, name string) string {
	reqBody := map[string]interface{}{
		"email":    email,
		"password": "Password123!",
		"name":     name,
	}
	w, err := s.makeRequest("POST", "/api/v1/auth/register", reqBody, "")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, "registration failed: %s", w.Body.String())

	resp, err := parseResponse(w)
	require.NoError(t, err)
	require.True(t, resp.Success)
	return resp.Data["token"].(string)
}

func testFilmBody(filmID int64) map[string]interface{} {
	return map[string]interface{}{
		"film_id":           filmID,
		"film_title":        "Spider-Man: Brand New Day",
		"film_release_date": "2026-07-31",
		"film_type":         "Movie",
	}
}

// =============================================================================
// Test Flow 1: Registration and Authentication
// =============================================================================

func TestFlow1_RegistrationAndAuth(t *testing.T) {
	suite := setupTestSuite(t)

	t.Run("POST /auth/register", func(t *testing.T) {
		token := suite.registerUser(t, "fan@test.com", "Film Fan")
		assert.NotEmpty(t, token)

		log.Printf("✅ POST /auth/register - SUCCESS")
	})

	t.Run("POST /auth/register duplicate email", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"email":    "fan@test.com",
			"password": "Password123!",
			"name":     "Copycat",
		}
		w, err := suite.makeRequest("POST", "/api/v1/auth/register", reqBody, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("POST /auth/login", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"email":    "fan@test.com",
			"password": "Password123!",
		}
		w, err := suite.makeRequest("POST", "/api/v1/auth/login", reqBody, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data["token"])

		log.Printf("✅ POST /auth/login - SUCCESS")
	})

	t.Run("POST /auth/login wrong password", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"email":    "fan@test.com",
			"password": "wrong-password",
		}
		w, err := suite.makeRequest("POST", "/api/v1/auth/login", reqBody, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /users/me", func(t *testing.T) {
		token := suite.registerUser(t, "me@test.com", "Me Myself")

		w, err := suite.makeRequest("GET", "/api/v1/users/me", nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		userMap := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, "me@test.com", userMap["email"])

		log.Printf("✅ GET /users/me - SUCCESS")
	})

	t.Run("GET /users/me without token", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/users/me", nil, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// Test Flow 2: Favorites Lifecycle
// =============================================================================

func TestFlow2_FavoritesLifecycle(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerUser(t, "collector@test.com", "Collector")

	var favoriteID int64

	t.Run("POST /favorites", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/favorites", testFilmBody(969681), token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		fav := resp.Data["favorite"].(map[string]interface{})
		favoriteID = int64(fav["id"].(float64))
		assert.Equal(t, float64(969681), fav["film_id"])

		log.Printf("✅ POST /favorites - SUCCESS (favorite_id: %d)", favoriteID)
	})

	t.Run("POST /favorites again is idempotent", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/favorites", testFilmBody(969681), token)
		require.NoError(t, err)
		// Already favorited: same record, 200 instead of 201.
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		fav := resp.Data["favorite"].(map[string]interface{})
		assert.Equal(t, float64(favoriteID), fav["id"])
	})

	t.Run("GET /favorites", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/favorites", nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		favorites := resp.Data["favorites"].([]interface{})
		assert.Len(t, favorites, 1)

		log.Printf("✅ GET /favorites - SUCCESS")
	})

	t.Run("POST /favorites/check", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/favorites/check",
			map[string]interface{}{"film_id": 969681}, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		assert.Equal(t, true, resp.Data["is_favorite"])
	})

	t.Run("PUT /favorites/:id theories", func(t *testing.T) {
		body := map[string]interface{}{"theories": "Mephisto, this time for sure"}
		w, err := suite.makeRequest("PUT", fmt.Sprintf("/api/v1/favorites/%d", favoriteID), body, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		fav := resp.Data["favorite"].(map[string]interface{})
		assert.Equal(t, "Mephisto, this time for sure", fav["theories"])
		assert.Nil(t, fav["notes"])

		log.Printf("✅ PUT /favorites/:id - SUCCESS")
	})

	t.Run("PUT /favorites/:id notes leaves theories", func(t *testing.T) {
		body := map[string]interface{}{"notes": "buy tickets early"}
		w, err := suite.makeRequest("PUT", fmt.Sprintf("/api/v1/favorites/%d", favoriteID), body, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		fav := resp.Data["favorite"].(map[string]interface{})
		assert.Equal(t, "Mephisto, this time for sure", fav["theories"])
		assert.Equal(t, "buy tickets early", fav["notes"])
	})

	t.Run("PUT /favorites/:id empty string clears", func(t *testing.T) {
		body := map[string]interface{}{"theories": ""}
		w, err := suite.makeRequest("PUT", fmt.Sprintf("/api/v1/favorites/%d", favoriteID), body, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		fav := resp.Data["favorite"].(map[string]interface{})
		assert.Nil(t, fav["theories"])
		assert.Equal(t, "buy tickets early", fav["notes"])
	})

	t.Run("PUT /favorites/:id overlong text", func(t *testing.T) {
		body := map[string]interface{}{"theories": strings.Repeat("a", 5001)}
		w, err := suite.makeRequest("PUT", fmt.Sprintf("/api/v1/favorites/%d", favoriteID), body, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("DELETE /favorites/:id", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/favorites/%d", favoriteID), nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		// Gone now.
		w, err = suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/favorites/%d", favoriteID), nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, w.Code)

		log.Printf("✅ DELETE /favorites/:id - SUCCESS")
	})

	t.Run("POST /favorites/toggle twice", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/favorites/toggle", testFilmBody(1003596), token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		resp, err := parseResponse(w)
		require.NoError(t, err)
		assert.Equal(t, true, resp.Data["is_favorite"])
		assert.NotNil(t, resp.Data["favorite"])

		w, err = suite.makeRequest("POST", "/api/v1/favorites/toggle", testFilmBody(1003596), token)
		require.NoError(t, err)
		resp, err = parseResponse(w)
		require.NoError(t, err)
		assert.Equal(t, false, resp.Data["is_favorite"])

		log.Printf("✅ POST /favorites/toggle - SUCCESS")
	})
}

// =============================================================================
// Test Flow 3: Ownership Boundaries
// =============================================================================

func TestFlow3_OwnershipBoundaries(t *testing.T) {
	suite := setupTestSuite(t)
	aliceToken := suite.registerUser(t, "alice@test.com", "Alice")
	bobToken := suite.registerUser(t, "bob@test.com", "Bob")

	var aliceFavoriteID int64

	t.Run("Setup: Alice favorites a film", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/favorites", testFilmBody(969681), aliceToken)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		fav := resp.Data["favorite"].(map[string]interface{})
		aliceFavoriteID = int64(fav["id"].(float64))
	})

	t.Run("Bob cannot update Alice's favorite", func(t *testing.T) {
		body := map[string]interface{}{"theories": "hijacked"}
		w, err := suite.makeRequest("PUT", fmt.Sprintf("/api/v1/favorites/%d", aliceFavoriteID), body, bobToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		assert.Equal(t, "FORBIDDEN", resp.Error.Code)

		log.Printf("✅ Cross-user PUT rejected - SUCCESS")
	})

	t.Run("Bob cannot delete Alice's favorite", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/favorites/%d", aliceFavoriteID), nil, bobToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Bob does not see Alice's favorites", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/favorites", nil, bobToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		favorites := resp.Data["favorites"].([]interface{})
		assert.Empty(t, favorites)
	})

	t.Run("Both can favorite the same film", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/favorites", testFilmBody(969681), bobToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

// =============================================================================
// Test Flow 4: CSRF Protection
// =============================================================================

func TestFlow4_CSRFProtection(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerUser(t, "csrf@test.com", "CSRF Tester")

	t.Run("mutation without CSRF header gets 419", func(t *testing.T) {
		bodyBytes, err := json.Marshal(testFilmBody(969681))
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/v1/favorites", bytes.NewBuffer(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		// Cookie present but header missing.
		req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: suite.csrfToken})

		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)

		assert.Equal(t, middleware.StatusCSRFMismatch, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		assert.Equal(t, "CSRF_TOKEN_MISMATCH", resp.Error.Code)

		log.Printf("✅ CSRF mismatch rejected with 419 - SUCCESS")
	})

	t.Run("mutation with mismatched header gets 419", func(t *testing.T) {
		bodyBytes, err := json.Marshal(testFilmBody(969681))
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/v1/favorites", bytes.NewBuffer(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: suite.csrfToken})
		req.Header.Set(middleware.CSRFHeaderName, "forged-token")

		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)

		assert.Equal(t, middleware.StatusCSRFMismatch, w.Code)
	})
}

// =============================================================================
// Test Flow 5: Film Notes
// =============================================================================

func TestFlow5_FilmNotes(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerUser(t, "theorist@test.com", "Theorist")

	var noteID int64

	t.Run("POST /film-notes", func(t *testing.T) {
		body := map[string]interface{}{
			"film_id":   969681,
			"note_text": "The suit in the trailer is the classic one",
			"note_type": "theory",
		}
		w, err := suite.makeRequest("POST", "/api/v1/film-notes", body, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		note := resp.Data["note"].(map[string]interface{})
		noteID = int64(note["id"].(float64))

		log.Printf("✅ POST /film-notes - SUCCESS (note_id: %d)", noteID)
	})

	t.Run("POST /film-notes invalid type", func(t *testing.T) {
		body := map[string]interface{}{
			"film_id":   969681,
			"note_text": "x",
			"note_type": "rant",
		}
		w, err := suite.makeRequest("POST", "/api/v1/film-notes", body, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("GET /film-notes", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/film-notes?film_id=969681", nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		notes := resp.Data["notes"].([]interface{})
		assert.Len(t, notes, 1)
	})

	t.Run("PUT /film-notes/:id", func(t *testing.T) {
		body := map[string]interface{}{"note_text": "Updated: it's a new suit after all"}
		w, err := suite.makeRequest("PUT", fmt.Sprintf("/api/v1/film-notes/%d", noteID), body, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("DELETE /film-notes/:id", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/film-notes/%d", noteID), nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		w, err = suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/film-notes/%d", noteID), nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, w.Code)

		log.Printf("✅ DELETE /film-notes/:id - SUCCESS")
	})
}

// =============================================================================
// Test Flow 6: Upstream Film Feed
// =============================================================================

func TestFlow6_FilmFeed(t *testing.T) {
	suite := setupTestSuite(t)

	t.Run("GET /films/upcoming is public", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/films/upcoming", nil, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp, err := parseResponse(w)
		require.NoError(t, err)
		film := resp.Data["film"].(map[string]interface{})
		assert.Equal(t, float64(969681), film["id"])
		assert.Equal(t, "Spider-Man: Brand New Day", film["title"])
		// Known film ids are enriched with a hosted trailer.
		assert.NotEmpty(t, film["video_url"])

		log.Printf("✅ GET /films/upcoming - SUCCESS")
	})

	t.Run("DELETE /films/cache requires auth", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", "/api/v1/films/cache", nil, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("DELETE /films/cache", func(t *testing.T) {
		token := suite.registerUser(t, "admin@test.com", "Admin Fan")

		w, err := suite.makeRequest("DELETE", "/api/v1/films/cache", nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		log.Printf("✅ DELETE /films/cache - SUCCESS")
	})

	t.Run("GET /films/upcoming survives upstream outage via cache", func(t *testing.T) {
		// Warm the cache, then kill the upstream.
		w, err := suite.makeRequest("GET", "/api/v1/films/upcoming", nil, "")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, w.Code)

		suite.feedServer.Close()

		w, err = suite.makeRequest("GET", "/api/v1/films/upcoming", nil, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// =============================================================================
// Main Test Runner
// =============================================================================

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
