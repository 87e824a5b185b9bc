package favsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

const (
	csrfCookieName = "XSRF-TOKEN"
	csrfHeaderName = "X-XSRF-TOKEN"

	statusCSRFMismatch = 419
)

// RemoteStore talks to the favorites REST API. It carries the session as a
// bearer token and plays the double-submit CSRF game: the token cookie is
// picked up from any safe request and echoed back in a header on mutations.
type RemoteStore struct {
	baseURL    string // e.g. https://host/api/v1
	httpClient *http.Client
}

func NewRemoteStore(baseURL string, timeout time.Duration) *RemoteStore {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	jar, _ := cookiejar.New(nil)
	return &RemoteStore{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

type recordView struct {
	ID          int64     `json:"id"`
	FilmID      int64     `json:"film_id"`
	Title       string    `json:"title"`
	Overview    *string   `json:"overview"`
	PosterURL   *string   `json:"poster_url"`
	ReleaseDate string    `json:"release_date"`
	Type        string    `json:"type"`
	Theories    *string   `json:"theories"`
	Notes       *string   `json:"notes"`
	AddedAt     time.Time `json:"added_at"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type filmSnapshotBody struct {
	FilmID          int64   `json:"film_id"`
	FilmTitle       string  `json:"film_title"`
	FilmOverview    *string `json:"film_overview,omitempty"`
	FilmPosterURL   *string `json:"film_poster_url,omitempty"`
	FilmReleaseDate string  `json:"film_release_date"`
	FilmType        string  `json:"film_type,omitempty"`
}

func (s *RemoteStore) List(ctx context.Context, identity Identity) ([]Record, error) {
	var data struct {
		Favorites []recordView `json:"favorites"`
	}
	if _, err := s.do(ctx, identity, http.MethodGet, "/favorites", nil, &data); err != nil {
		return nil, err
	}

	records := make([]Record, len(data.Favorites))
	for i, v := range data.Favorites {
		records[i] = toRecord(v)
	}
	return records, nil
}

func (s *RemoteStore) Create(ctx context.Context, identity Identity, film Film) (*Record, bool, error) {
	var data struct {
		Favorite recordView `json:"favorite"`
	}
	status, err := s.do(ctx, identity, http.MethodPost, "/favorites", snapshotBody(film), &data)
	if err != nil {
		return nil, false, err
	}

	rec := toRecord(data.Favorite)
	return &rec, status == http.StatusCreated, nil
}

func (s *RemoteStore) Update(ctx context.Context, identity Identity, recordID int64, patch FieldPatch) (*Record, error) {
	body := struct {
		Theories *string `json:"theories,omitempty"`
		Notes    *string `json:"notes,omitempty"`
	}{Theories: patch.Theories, Notes: patch.Notes}

	var data struct {
		Favorite recordView `json:"favorite"`
	}
	path := fmt.Sprintf("/favorites/%d", recordID)
	if _, err := s.do(ctx, identity, http.MethodPut, path, body, &data); err != nil {
		return nil, err
	}

	rec := toRecord(data.Favorite)
	return &rec, nil
}

func (s *RemoteStore) Delete(ctx context.Context, identity Identity, recordID int64) error {
	path := fmt.Sprintf("/favorites/%d", recordID)
	_, err := s.do(ctx, identity, http.MethodDelete, path, nil, nil)
	return err
}

func (s *RemoteStore) Toggle(ctx context.Context, identity Identity, film Film) (bool, *Record, error) {
	var data struct {
		IsFavorite bool        `json:"is_favorite"`
		Favorite   *recordView `json:"favorite"`
	}
	if _, err := s.do(ctx, identity, http.MethodPost, "/favorites/toggle", snapshotBody(film), &data); err != nil {
		return false, nil, err
	}

	if data.Favorite == nil {
		return data.IsFavorite, nil, nil
	}
	rec := toRecord(*data.Favorite)
	return data.IsFavorite, &rec, nil
}

// do performs one request and decodes the response envelope into out.
// Returns the HTTP status so callers can tell 201 from 200.
func (s *RemoteStore) do(ctx context.Context, identity Identity, method, path string, body any, out any) (int, error) {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+identity.Token)

	if method != http.MethodGet && method != http.MethodHead {
		token, err := s.csrfToken(ctx, identity)
		if err != nil {
			return 0, err
		}
		req.Header.Set(csrfHeaderName, token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil && resp.StatusCode < 400 {
		return resp.StatusCode, fmt.Errorf("%w: bad response body", ErrUnavailable)
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, s.mapError(resp.StatusCode, &env)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: bad response body", ErrUnavailable)
		}
	}
	return resp.StatusCode, nil
}

func (s *RemoteStore) mapError(status int, env *envelope) error {
	message := ""
	if env.Error != nil {
		message = env.Error.Message
	}

	switch status {
	case http.StatusUnauthorized, statusCSRFMismatch:
		return ErrSessionExpired
	case http.StatusForbidden:
		return ErrNotOwner
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if env.Error != nil {
			for field, rule := range env.Error.Details {
				return &ValidationError{Field: field, Rule: rule}
			}
		}
		return &ValidationError{Field: "request", Rule: message}
	default:
		return fmt.Errorf("%w: status %d %s", ErrUnavailable, status, message)
	}
}

// csrfToken returns the double-submit token, priming the cookie with a safe
// request when the jar does not have one yet.
func (s *RemoteStore) csrfToken(ctx context.Context, identity Identity) (string, error) {
	if token := s.cookieValue(csrfCookieName); token != "" {
		return token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/favorites", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+identity.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body.Close()

	if token := s.cookieValue(csrfCookieName); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("%w: no CSRF token issued", ErrUnavailable)
}

func (s *RemoteStore) cookieValue(name string) string {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range s.httpClient.Jar.Cookies(u) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func snapshotBody(film Film) filmSnapshotBody {
	body := filmSnapshotBody{
		FilmID:          film.ID,
		FilmTitle:       film.Title,
		FilmReleaseDate: film.ReleaseDate,
		FilmType:        film.Type,
	}
	if film.Overview != "" {
		body.FilmOverview = &film.Overview
	}
	if film.PosterURL != "" {
		body.FilmPosterURL = &film.PosterURL
	}
	return body
}

func toRecord(v recordView) Record {
	rec := Record{
		ID:          v.ID,
		FilmID:      v.FilmID,
		Title:       v.Title,
		ReleaseDate: v.ReleaseDate,
		Type:        v.Type,
		AddedAt:     v.AddedAt,
	}
	if v.Overview != nil {
		rec.Overview = *v.Overview
	}
	if v.PosterURL != nil {
		rec.PosterURL = *v.PosterURL
	}
	if v.Theories != nil {
		rec.Theories = *v.Theories
	}
	if v.Notes != nil {
		rec.Notes = *v.Notes
	}
	return rec
}
