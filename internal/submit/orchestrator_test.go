package submit

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"encore/internal/artwork"
	"encore/internal/logging"
	"encore/internal/platform"
	"encore/internal/querycache"
	"encore/internal/services"
)

type fakeBackend struct {
	mu sync.Mutex

	songCalls    int
	lastSong     platform.SongSubmission
	songErr      error
	adminCalls   int
	showCalls    int
	episodeCalls int
	videoCalls   int
	updateCalls  int
	blogCalls    int
	profileCalls int

	blocked      bool
	blockedErr   error
	blockedProbe int
	onProbe      func()
}

func (f *fakeBackend) record() *platform.SubmissionRecord {
	return &platform.SubmissionRecord{ID: "sub-1", Status: "pending"}
}

func (f *fakeBackend) SubmitSong(ctx context.Context, sub platform.SongSubmission) (*platform.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.songCalls++
	f.lastSong = sub
	if f.songErr != nil {
		return nil, f.songErr
	}
	return f.record(), nil
}

func (f *fakeBackend) CreatePodcastShow(ctx context.Context, sub platform.ShowSubmission) (*platform.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showCalls++
	return f.record(), nil
}

func (f *fakeBackend) CreatePodcastEpisode(ctx context.Context, sub platform.EpisodeSubmission) (*platform.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodeCalls++
	return f.record(), nil
}

func (f *fakeBackend) SubmitVideo(ctx context.Context, sub platform.VideoSubmission) (*platform.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videoCalls++
	return f.record(), nil
}

func (f *fakeBackend) UpdateVideoSubmission(ctx context.Context, sub platform.VideoSubmission) (*platform.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	return f.record(), nil
}

func (f *fakeBackend) CreateBlogPost(ctx context.Context, post platform.BlogPost) (*platform.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blogCalls++
	return f.record(), nil
}

func (f *fakeBackend) SaveArtistProfile(ctx context.Context, update platform.ProfileUpdate) (*platform.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	return f.record(), nil
}

func (f *fakeBackend) AdminEditSubmission(ctx context.Context, sub platform.SongSubmission) (*platform.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminCalls++
	f.lastSong = sub
	return f.record(), nil
}

func (f *fakeBackend) AdminEditArtistProfile(ctx context.Context, update platform.ProfileUpdate) (*platform.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	return f.record(), nil
}

func (f *fakeBackend) ListSubmissions(ctx context.Context, opts platform.ListOptions) ([]platform.SubmissionRecord, error) {
	return nil, nil
}

func (f *fakeBackend) WhoAmI(ctx context.Context) (*platform.Principal, error) {
	return &platform.Principal{ID: "user-1"}, nil
}

func (f *fakeBackend) CheckBlocked(ctx context.Context) (bool, error) {
	f.mu.Lock()
	f.blockedProbe++
	probe := f.onProbe
	f.mu.Unlock()
	if probe != nil {
		probe()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocked, f.blockedErr
}

func (f *fakeBackend) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.songCalls + f.adminCalls + f.showCalls + f.episodeCalls +
		f.videoCalls + f.updateCalls + f.blogCalls + f.profileCalls + f.blockedProbe
}

type fakeCache struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeCache) Invalidate(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, keys...)
	return nil
}

func (f *fakeCache) invalidated(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.keys {
		if k == key {
			return true
		}
	}
	return false
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func squarePNG(t *testing.T, side int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, side, side))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newOrchestrator(t *testing.T, backend *fakeBackend, cache *fakeCache, failOpen bool) *Orchestrator {
	t.Helper()
	o, err := New(Options{
		Principal:            platform.Principal{ID: "user-1", Name: "Tester"},
		Backend:              backend,
		Cache:                cache,
		Artwork:              artwork.Validator{Side: 300},
		FailOpenBlockedProbe: failOpen,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return o
}

func singleDraft(t *testing.T) *SongDraft {
	t.Helper()
	dir := t.TempDir()
	return &SongDraft{
		Title:       "Night Drive",
		ArtistName:  "The Commuters",
		Genre:       "electronic",
		ReleaseType: "single",
		ArtworkPath: writeFile(t, dir, "cover.png", squarePNG(t, 300)),
		AudioPath:   writeFile(t, dir, "track.mp3", []byte("mp3-payload")),
	}
}

func TestSubmitSongHappyPath(t *testing.T) {
	backend := &fakeBackend{}
	cache := &fakeCache{}
	o := newOrchestrator(t, backend, cache, true)
	draft := singleDraft(t)

	record, err := o.SubmitSong(context.Background(), draft)
	if err != nil {
		t.Fatalf("SubmitSong failed: %v", err)
	}
	if record.ID != "sub-1" {
		t.Errorf("record id: got %q", record.ID)
	}
	if backend.songCalls != 1 {
		t.Errorf("exactly one SubmitSong call expected, got %d", backend.songCalls)
	}
	audio, err := backend.lastSong.Audio.Bytes()
	if err != nil {
		t.Fatalf("audio handle not resolvable: %v", err)
	}
	if string(audio) != "mp3-payload" {
		t.Errorf("audio payload: got %q", audio)
	}
	if _, err := backend.lastSong.Artwork.Bytes(); err != nil {
		t.Errorf("artwork handle not resolvable: %v", err)
	}
	if !cache.invalidated(querycache.KeyMySubmissions) {
		t.Error("my-submissions should be invalidated")
	}
	if o.Phase() != PhaseSettled {
		t.Errorf("phase: got %s", o.Phase())
	}
	if draft.Title != "" {
		t.Error("draft should reset after settlement")
	}
}

func TestWrongArtworkRejectedBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(t, backend, &fakeCache{}, true)
	draft := singleDraft(t)
	draft.ArtworkPath = writeFile(t, t.TempDir(), "cover.png", squarePNG(t, 120))

	_, err := o.SubmitSong(context.Background(), draft)
	if !services.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Artwork must be exactly 300×300 pixels. Current: 120×120") {
		t.Errorf("rejection reason lost: %v", err)
	}
	if backend.totalCalls() != 0 {
		t.Error("no network call may happen on validation failure")
	}
	if o.Phase() != PhasePending {
		t.Errorf("phase should return to pending, got %s", o.Phase())
	}
	if draft.Title != "Night Drive" {
		t.Error("draft text must survive validation failure")
	}
}

func TestRemoteFailurePreservesDraftText(t *testing.T) {
	backend := &fakeBackend{
		songErr: services.Wrap(services.ErrRemote, "song", "submit", "release date must not be in the past", nil),
	}
	o := newOrchestrator(t, backend, &fakeCache{}, true)
	draft := singleDraft(t)

	_, err := o.SubmitSong(context.Background(), draft)
	if !services.IsRemote(err) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if !strings.Contains(err.Error(), "release date must not be in the past") {
		t.Errorf("remote message should surface verbatim: %v", err)
	}
	if draft.Title != "Night Drive" || draft.ArtistName != "The Commuters" {
		t.Error("draft text must survive a remote failure")
	}
	if !draft.Artwork.IsZero() || !draft.Audio.IsZero() {
		t.Error("encoded handles should be cleared so a retry re-encodes")
	}
	if o.Phase() != PhasePending {
		t.Errorf("phase should return to pending, got %s", o.Phase())
	}
}

func TestAlbumSubmissionEncodesEachTrack(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(t, backend, &fakeCache{}, true)
	dir := t.TempDir()
	draft := &SongDraft{
		Title:       "LP",
		ArtistName:  "A",
		ReleaseType: "album",
		ArtworkPath: writeFile(t, dir, "cover.png", squarePNG(t, 300)),
		Tracks: []TrackDraft{
			{Title: "One", Artist: "A", AudioPath: writeFile(t, dir, "1.mp3", []byte("one"))},
			{Title: "Two", Artist: "A", AudioPath: writeFile(t, dir, "2.mp3", []byte("two"))},
		},
	}

	if _, err := o.SubmitSong(context.Background(), draft); err != nil {
		t.Fatalf("SubmitSong failed: %v", err)
	}
	if len(backend.lastSong.Tracks) != 2 {
		t.Fatalf("tracks: got %d", len(backend.lastSong.Tracks))
	}
	for i, want := range []string{"one", "two"} {
		data, err := backend.lastSong.Tracks[i].Audio.Bytes()
		if err != nil {
			t.Fatalf("track %d not resolvable: %v", i+1, err)
		}
		if string(data) != want {
			t.Errorf("track %d payload: got %q", i+1, data)
		}
	}
}

func TestEditReusesStoredPayloads(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(t, backend, &fakeCache{}, true)
	draft := &SongDraft{
		ID: "sub-7", Title: "Remaster", ArtistName: "A", ReleaseType: "single",
		ExistingArtworkURL: "https://cdn.example.com/a.png",
		ExistingAudioURL:   "https://cdn.example.com/a.mp3",
	}

	if _, err := o.SubmitSong(context.Background(), draft); err != nil {
		t.Fatalf("SubmitSong failed: %v", err)
	}
	if !backend.lastSong.Artwork.Remote() || backend.lastSong.Artwork.URL() != "https://cdn.example.com/a.png" {
		t.Error("edit should reuse the stored artwork handle")
	}
	if !backend.lastSong.Audio.Remote() {
		t.Error("edit should reuse the stored audio handle")
	}
}

func TestBlockedAccountStopsSubmission(t *testing.T) {
	backend := &fakeBackend{blocked: true}
	o := newOrchestrator(t, backend, &fakeCache{}, true)

	_, err := o.SubmitSong(context.Background(), singleDraft(t))
	if !errors.Is(err, services.ErrBlocked) {
		t.Fatalf("expected blocked error, got %v", err)
	}
	if backend.songCalls != 0 {
		t.Error("blocked account must not reach SubmitSong")
	}
}

func TestProbeFailureFailsOpenPerPolicy(t *testing.T) {
	backend := &fakeBackend{blockedErr: errors.New("probe timeout")}
	o := newOrchestrator(t, backend, &fakeCache{}, true)

	if _, err := o.SubmitSong(context.Background(), singleDraft(t)); err != nil {
		t.Fatalf("fail-open policy should let the submission proceed: %v", err)
	}
	if backend.songCalls != 1 {
		t.Error("submission should have gone through")
	}
}

func TestProbeFailureFailsClosedPerPolicy(t *testing.T) {
	backend := &fakeBackend{blockedErr: errors.New("probe timeout")}
	o := newOrchestrator(t, backend, &fakeCache{}, false)

	_, err := o.SubmitSong(context.Background(), singleDraft(t))
	if err == nil {
		t.Fatal("fail-closed policy should stop the submission")
	}
	if backend.songCalls != 0 {
		t.Error("submission must not go through when the probe fails closed")
	}
}

func TestNewRequiresPrincipalAndBackend(t *testing.T) {
	if _, err := New(Options{Backend: &fakeBackend{}}); err == nil {
		t.Error("missing principal should fail")
	}
	if _, err := New(Options{Principal: platform.Principal{ID: "u"}}); err == nil {
		t.Error("missing backend should fail")
	}
}

func TestCreateShowValidatesLanguageBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(t, backend, &fakeCache{}, true)
	draft := &ShowDraft{Title: "Show", Author: "Host", Language: "zz-!!-bad", ArtworkPath: "a.png"}

	_, err := o.CreateShow(context.Background(), draft)
	if !services.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.totalCalls() != 0 {
		t.Error("no network call may happen on validation failure")
	}
}

func TestCreateShowInvalidatesShowListing(t *testing.T) {
	backend := &fakeBackend{}
	cache := &fakeCache{}
	o := newOrchestrator(t, backend, cache, true)
	draft := &ShowDraft{
		Title: "Show", Author: "Host", Language: "en",
		ArtworkPath: writeFile(t, t.TempDir(), "cover.png", squarePNG(t, 300)),
	}

	if _, err := o.CreateShow(context.Background(), draft); err != nil {
		t.Fatalf("CreateShow failed: %v", err)
	}
	if backend.showCalls != 1 {
		t.Errorf("show calls: got %d", backend.showCalls)
	}
	if !cache.invalidated(querycache.KeyPodcastShows) {
		t.Error("podcast-shows should be invalidated")
	}
}

func TestVideoEditRoutesToUpdate(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(t, backend, &fakeCache{}, true)
	draft := &VideoDraft{
		ID: "vid-1", Title: "Cut",
		ExistingVideoURL: "https://cdn.example.com/v.mp4",
	}

	if _, err := o.SubmitVideo(context.Background(), draft); err != nil {
		t.Fatalf("SubmitVideo failed: %v", err)
	}
	if backend.updateCalls != 1 || backend.videoCalls != 0 {
		t.Errorf("edit should route to update: update=%d create=%d", backend.updateCalls, backend.videoCalls)
	}
}

func TestProfileAdminEditRequiresRole(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(t, backend, &fakeCache{}, true)
	draft := &ProfileDraft{ArtistID: "other-artist", Name: "N"}

	_, err := o.SaveProfile(context.Background(), draft)
	if !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if backend.totalCalls() != 0 {
		t.Error("no network call may happen without the admin role")
	}
}

func TestAdminEditSongRequiresRole(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(t, backend, &fakeCache{}, true)

	_, err := o.AdminEditSong(context.Background(), &SongDraft{ID: "sub-1"})
	if !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminEditSongWithRole(t *testing.T) {
	backend := &fakeBackend{}
	o, err := New(Options{
		Principal: platform.Principal{ID: "admin-1", Role: "admin"},
		Backend:   backend,
		Cache:     &fakeCache{},
		Artwork:   artwork.Validator{Side: 300},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	draft := &SongDraft{
		ID: "sub-9", Title: "Fixed", ArtistName: "A", ReleaseType: "single",
		ExistingArtworkURL: "https://cdn.example.com/a.png",
		ExistingAudioURL:   "https://cdn.example.com/a.mp3",
	}

	if _, err := o.AdminEditSong(context.Background(), draft); err != nil {
		t.Fatalf("AdminEditSong failed: %v", err)
	}
	if backend.adminCalls != 1 {
		t.Errorf("admin edit calls: got %d", backend.adminCalls)
	}
}

func TestProbeRunsInSubmittingPhase(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(t, backend, &fakeCache{}, true)
	backend.onProbe = func() {
		if got := o.Phase(); got != PhaseSubmitting {
			t.Errorf("blocked probe should run in the submitting phase, got %s", got)
		}
	}

	if _, err := o.SubmitSong(context.Background(), singleDraft(t)); err != nil {
		t.Fatalf("SubmitSong failed: %v", err)
	}
	if backend.blockedProbe != 1 {
		t.Errorf("probe calls: got %d", backend.blockedProbe)
	}
}

func TestUnreadableArtworkKeepsIOError(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(t, backend, &fakeCache{}, true)
	draft := singleDraft(t)
	draft.ArtworkPath = filepath.Join(t.TempDir(), "absent.png")

	_, err := o.SubmitSong(context.Background(), draft)
	if !services.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if strings.Contains(err.Error(), "Failed to load image") {
		t.Errorf("open failure must not report a decode failure: %v", err)
	}
	if !strings.Contains(err.Error(), "artwork unreadable") {
		t.Errorf("open failure should name the unreadable file: %v", err)
	}
	if backend.totalCalls() != 0 {
		t.Error("no network call may happen when the artwork cannot be read")
	}
}

func TestPipelineLogsCarryContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}

	backend := &fakeBackend{}
	o, err := New(Options{
		Principal:            platform.Principal{ID: "user-1", Name: "Tester"},
		Backend:              backend,
		Cache:                &fakeCache{},
		Artwork:              artwork.Validator{Side: 300},
		Logger:               logger,
		FailOpenBlockedProbe: true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := o.SubmitSong(context.Background(), singleDraft(t)); err != nil {
		t.Fatalf("SubmitSong failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"msg":"song submitted"`,
		`"kind":"song"`,
		`"actor":"user-1"`,
		`"submission_id":"sub-1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestPostBlogInvalidatesBlogListing(t *testing.T) {
	backend := &fakeBackend{}
	cache := &fakeCache{}
	o := newOrchestrator(t, backend, cache, true)

	if _, err := o.PostBlog(context.Background(), &BlogDraft{Title: "Notes", Body: "Hello"}); err != nil {
		t.Fatalf("PostBlog failed: %v", err)
	}
	if backend.blogCalls != 1 {
		t.Errorf("blog calls: got %d", backend.blogCalls)
	}
	if !cache.invalidated(querycache.KeyBlogPosts) {
		t.Error("blog-posts should be invalidated")
	}
}
