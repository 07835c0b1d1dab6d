package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"encore/internal/asset"
	"encore/internal/logging"
	"encore/internal/services"
)

// Backend defines the platform operations the submission pipeline uses.
type Backend interface {
	SubmitSong(ctx context.Context, sub SongSubmission) (*SubmissionRecord, error)
	CreatePodcastShow(ctx context.Context, sub ShowSubmission) (*SubmissionRecord, error)
	CreatePodcastEpisode(ctx context.Context, sub EpisodeSubmission) (*SubmissionRecord, error)
	SubmitVideo(ctx context.Context, sub VideoSubmission) (*SubmissionRecord, error)
	UpdateVideoSubmission(ctx context.Context, sub VideoSubmission) (*SubmissionRecord, error)
	CreateBlogPost(ctx context.Context, post BlogPost) (*SubmissionRecord, error)
	SaveArtistProfile(ctx context.Context, update ProfileUpdate) (*SubmissionRecord, error)
	AdminEditSubmission(ctx context.Context, sub SongSubmission) (*SubmissionRecord, error)
	AdminEditArtistProfile(ctx context.Context, update ProfileUpdate) (*SubmissionRecord, error)
	ListSubmissions(ctx context.Context, opts ListOptions) ([]SubmissionRecord, error)
	WhoAmI(ctx context.Context) (*Principal, error)
	CheckBlocked(ctx context.Context) (bool, error)
}

// Client talks to the platform's HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "platform")
		}
	}
}

// New creates a platform client.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("platform base url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("platform api token required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SubmitSong uploads a single or album release. A populated ID updates the
// stored submission instead of creating one.
func (c *Client) SubmitSong(ctx context.Context, sub SongSubmission) (*SubmissionRecord, error) {
	fields := map[string]string{
		"title":        sub.Title,
		"artist_name":  sub.ArtistName,
		"genre":        sub.Genre,
		"release_type": sub.ReleaseType,
		"release_date": sub.ReleaseDate,
	}
	var parts []filePart
	attachHandle(fields, &parts, "artwork", sub.Artwork)
	attachHandle(fields, &parts, "audio", sub.Audio)
	attachTracks(fields, &parts, sub.Tracks)

	method, endpoint := http.MethodPost, "/v1/songs"
	if sub.ID != "" {
		method, endpoint = http.MethodPut, "/v1/songs/"+url.PathEscape(sub.ID)
	}
	return c.submitMultipart(ctx, KindSong, method, endpoint, fields, parts)
}

// CreatePodcastShow registers a show. A populated ID updates it instead.
func (c *Client) CreatePodcastShow(ctx context.Context, sub ShowSubmission) (*SubmissionRecord, error) {
	fields := map[string]string{
		"title":       sub.Title,
		"author":      sub.Author,
		"description": sub.Description,
		"language":    sub.Language,
		"category":    sub.Category,
	}
	var parts []filePart
	attachHandle(fields, &parts, "artwork", sub.Artwork)

	method, endpoint := http.MethodPost, "/v1/podcast/shows"
	if sub.ID != "" {
		method, endpoint = http.MethodPut, "/v1/podcast/shows/"+url.PathEscape(sub.ID)
	}
	return c.submitMultipart(ctx, KindPodcastShow, method, endpoint, fields, parts)
}

// CreatePodcastEpisode attaches an episode to an existing show.
func (c *Client) CreatePodcastEpisode(ctx context.Context, sub EpisodeSubmission) (*SubmissionRecord, error) {
	if sub.ShowID == "" {
		return nil, services.Wrap(services.ErrValidation, string(KindPodcastEpisode), "create", "show id is required", nil)
	}
	fields := map[string]string{
		"title":       sub.Title,
		"description": sub.Description,
	}
	var parts []filePart
	attachHandle(fields, &parts, "audio", sub.Audio)
	attachHandle(fields, &parts, "artwork", sub.Artwork)

	endpoint := "/v1/podcast/shows/" + url.PathEscape(sub.ShowID) + "/episodes"
	method := http.MethodPost
	if sub.ID != "" {
		method, endpoint = http.MethodPut, endpoint+"/"+url.PathEscape(sub.ID)
	}
	return c.submitMultipart(ctx, KindPodcastEpisode, method, endpoint, fields, parts)
}

// SubmitVideo uploads a video release.
func (c *Client) SubmitVideo(ctx context.Context, sub VideoSubmission) (*SubmissionRecord, error) {
	return c.sendVideo(ctx, http.MethodPost, "/v1/videos", sub)
}

// UpdateVideoSubmission replaces the metadata and any re-supplied payloads of
// a stored video submission.
func (c *Client) UpdateVideoSubmission(ctx context.Context, sub VideoSubmission) (*SubmissionRecord, error) {
	if sub.ID == "" {
		return nil, services.Wrap(services.ErrValidation, string(KindVideo), "update", "submission id is required", nil)
	}
	return c.sendVideo(ctx, http.MethodPut, "/v1/videos/"+url.PathEscape(sub.ID), sub)
}

func (c *Client) sendVideo(ctx context.Context, method, endpoint string, sub VideoSubmission) (*SubmissionRecord, error) {
	fields := map[string]string{
		"title":       sub.Title,
		"artist_name": sub.ArtistName,
		"description": sub.Description,
	}
	var parts []filePart
	attachHandle(fields, &parts, "video", sub.Video)
	attachHandle(fields, &parts, "thumbnail", sub.Thumbnail)
	return c.submitMultipart(ctx, KindVideo, method, endpoint, fields, parts)
}

// CreateBlogPost publishes a text post with an optional header image.
func (c *Client) CreateBlogPost(ctx context.Context, post BlogPost) (*SubmissionRecord, error) {
	fields := map[string]string{
		"title": post.Title,
		"body":  post.Body,
	}
	var parts []filePart
	attachHandle(fields, &parts, "header", post.Header)

	method, endpoint := http.MethodPost, "/v1/blog/posts"
	if post.ID != "" {
		method, endpoint = http.MethodPut, "/v1/blog/posts/"+url.PathEscape(post.ID)
	}
	return c.submitMultipart(ctx, KindBlogPost, method, endpoint, fields, parts)
}

// SaveArtistProfile replaces the caller's public profile.
func (c *Client) SaveArtistProfile(ctx context.Context, update ProfileUpdate) (*SubmissionRecord, error) {
	return c.sendProfile(ctx, "/v1/profile", update)
}

// AdminEditSubmission edits any user's song submission. The platform enforces
// the role; the client only routes to the admin endpoint.
func (c *Client) AdminEditSubmission(ctx context.Context, sub SongSubmission) (*SubmissionRecord, error) {
	if sub.ID == "" {
		return nil, services.Wrap(services.ErrValidation, string(KindSong), "admin edit", "submission id is required", nil)
	}
	fields := map[string]string{
		"title":        sub.Title,
		"artist_name":  sub.ArtistName,
		"genre":        sub.Genre,
		"release_type": sub.ReleaseType,
		"release_date": sub.ReleaseDate,
	}
	var parts []filePart
	attachHandle(fields, &parts, "artwork", sub.Artwork)
	attachHandle(fields, &parts, "audio", sub.Audio)
	attachTracks(fields, &parts, sub.Tracks)
	return c.submitMultipart(ctx, KindSong, http.MethodPut, "/v1/admin/songs/"+url.PathEscape(sub.ID), fields, parts)
}

// AdminEditArtistProfile edits another artist's profile.
func (c *Client) AdminEditArtistProfile(ctx context.Context, update ProfileUpdate) (*SubmissionRecord, error) {
	if update.ArtistID == "" {
		return nil, services.Wrap(services.ErrValidation, string(KindArtistProfile), "admin edit", "artist id is required", nil)
	}
	return c.sendProfile(ctx, "/v1/admin/artists/"+url.PathEscape(update.ArtistID)+"/profile", update)
}

func (c *Client) sendProfile(ctx context.Context, endpoint string, update ProfileUpdate) (*SubmissionRecord, error) {
	fields := map[string]string{
		"name":      update.Name,
		"biography": update.Biography,
		"website":   update.Website,
	}
	var parts []filePart
	attachHandle(fields, &parts, "photo", update.Photo)
	return c.submitMultipart(ctx, KindArtistProfile, http.MethodPut, endpoint, fields, parts)
}

// ListSubmissions fetches the caller's submissions, or everyone's with
// opts.All on an admin token.
func (c *Client) ListSubmissions(ctx context.Context, opts ListOptions) ([]SubmissionRecord, error) {
	params := url.Values{}
	if opts.All {
		params.Set("all", strconv.FormatBool(true))
	}
	if opts.Kind != "" {
		params.Set("kind", string(opts.Kind))
	}
	endpoint := "/v1/submissions"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var payload struct {
		Submissions []SubmissionRecord `json:"submissions"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, "", "list submissions", &payload); err != nil {
		return nil, err
	}
	return payload.Submissions, nil
}

// WhoAmI resolves the token to its account.
func (c *Client) WhoAmI(ctx context.Context) (*Principal, error) {
	var principal Principal
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, "", "whoami", &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

// CheckBlocked probes whether the account is barred from submitting. Callers
// decide how to treat probe failures; this method only reports them.
func (c *Client) CheckBlocked(ctx context.Context) (bool, error) {
	var payload struct {
		Blocked bool `json:"blocked"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/me/blocked", nil, "", "blocked probe", &payload); err != nil {
		return false, err
	}
	return payload.Blocked, nil
}

// FetchAsset downloads a platform-stored payload into a byte-backed handle,
// for flows that re-edit a stored submission locally.
func (c *Client) FetchAsset(ctx context.Context, assetURL string) (asset.Handle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return asset.Handle{}, fmt.Errorf("build asset request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return asset.Handle{}, services.Wrap(services.ErrRemote, "", "fetch asset", fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return asset.Handle{}, c.statusError(resp, "", "fetch asset", latency)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return asset.Handle{}, services.Wrap(services.ErrRemote, "", "fetch asset", "read payload", err)
	}
	filename := path.Base(req.URL.Path)
	return asset.FromBytes(filename, resp.Header.Get("Content-Type"), data), nil
}

// attachHandle routes a handle into the request. Remote handles become a
// "<field>_url" form value so the platform keeps its stored payload; zero
// handles are omitted entirely.
func attachHandle(fields map[string]string, parts *[]filePart, field string, h asset.Handle) {
	switch {
	case h.IsZero():
	case h.Remote():
		fields[field+"_url"] = h.URL()
	default:
		*parts = append(*parts, filePart{field: field, handle: h})
	}
}

func attachTracks(fields map[string]string, parts *[]filePart, tracks []TrackUpload) {
	if len(tracks) == 0 {
		return
	}
	fields["track_count"] = strconv.Itoa(len(tracks))
	for i, track := range tracks {
		prefix := "track_" + strconv.Itoa(i+1)
		fields[prefix+"_title"] = track.Title
		fields[prefix+"_artist"] = track.Artist
		attachHandle(fields, parts, prefix+"_audio", track.Audio)
	}
}

func (c *Client) submitMultipart(ctx context.Context, kind SubmissionKind, method, endpoint string, fields map[string]string, parts []filePart) (*SubmissionRecord, error) {
	body, contentType := encodeMultipart(fields, parts)
	defer body.Close()

	var record SubmissionRecord
	if err := c.doKind(ctx, kind, method, endpoint, body, contentType, "submit", &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType, operation string, out any) error {
	return c.doKind(ctx, "", method, endpoint, body, contentType, operation, out)
}

func (c *Client) doKind(ctx context.Context, kind SubmissionKind, method, endpoint string, body io.Reader, contentType, operation string, out any) error {
	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrRemote, string(kind), operation, fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	logging.WithContext(ctx, c.logger).Debug("platform request",
		logging.String("method", method),
		logging.String("endpoint", endpoint),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp, string(kind), operation, latency)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrRemote, string(kind), operation, "decode response", err)
	}
	return nil
}

// statusError maps an HTTP failure to a classified error, carrying the
// platform's own error message verbatim when the body supplies one.
func (c *Client) statusError(resp *http.Response, kind, operation string, latency time.Duration) error {
	message := remoteMessage(resp.Body)
	if message == "" {
		message = fmt.Sprintf("platform returned %d (latency=%v)", resp.StatusCode, latency)
	}

	marker := services.ErrRemote
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		marker = services.ErrUnauthorized
	case http.StatusForbidden:
		marker = services.ErrBlocked
	case http.StatusNotFound:
		marker = services.ErrNotFound
	}
	return services.Wrap(marker, kind, operation, message, nil)
}

func remoteMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}
