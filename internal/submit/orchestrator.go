package submit

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"encore/internal/artwork"
	"encore/internal/asset"
	"encore/internal/logging"
	"encore/internal/platform"
	"encore/internal/progress"
	"encore/internal/querycache"
	"encore/internal/services"
)

// Phase names where a submission currently is. Failures return the
// orchestrator to PhasePending with the draft's text intact.
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseValidating Phase = "validating"
	PhaseEncoding   Phase = "encoding"
	PhaseSubmitting Phase = "submitting"
	PhaseSettled    Phase = "settled"
)

// Kind labels used in error classification and log fields.
const (
	kindSong    = "song"
	kindShow    = "podcast show"
	kindEpisode = "podcast episode"
	kindVideo   = "video"
	kindBlog    = "blog post"
	kindProfile = "artist profile"
)

func validationErr(kind, message string) error {
	return services.Wrap(services.ErrValidation, kind, "validate", message, nil)
}

// Invalidator is the slice of the query cache settlement needs.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Options configures an Orchestrator. Principal and Backend are required;
// everything else has a working default.
type Options struct {
	Principal platform.Principal
	Backend   platform.Backend
	Cache     Invalidator
	Encoder   *asset.Encoder
	Artwork   artwork.Validator
	Tracker   *progress.Tracker
	Logger    *slog.Logger

	// FailOpenBlockedProbe lets a submission proceed when the blocked-account
	// probe itself errors. A definitive "blocked" answer always stops it.
	FailOpenBlockedProbe bool
}

// Orchestrator drives a draft through validation, encoding, and the single
// remote submission call, then settles the local state.
type Orchestrator struct {
	principal platform.Principal
	backend   platform.Backend
	cache     Invalidator
	encoder   *asset.Encoder
	artwork   artwork.Validator
	tracker   *progress.Tracker
	logger    *slog.Logger
	failOpen  bool

	mu    sync.Mutex
	phase Phase
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, ...string) error { return nil }

// New builds an orchestrator. Identity is an explicit input; a zero principal
// is a hard precondition failure, never an ambient lookup.
func New(opts Options) (*Orchestrator, error) {
	if opts.Principal.ID == "" {
		return nil, errors.New("orchestrator requires a signed-in principal")
	}
	if opts.Backend == nil {
		return nil, errors.New("orchestrator requires a platform backend")
	}
	o := &Orchestrator{
		principal: opts.Principal,
		backend:   opts.Backend,
		cache:     opts.Cache,
		encoder:   opts.Encoder,
		artwork:   opts.Artwork,
		tracker:   opts.Tracker,
		logger:    opts.Logger,
		failOpen:  opts.FailOpenBlockedProbe,
		phase:     PhasePending,
	}
	if o.cache == nil {
		o.cache = noopInvalidator{}
	}
	if o.encoder == nil {
		o.encoder = asset.NewEncoder(0)
	}
	if o.tracker == nil {
		o.tracker = progress.NewTracker()
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	o.logger = logging.NewComponentLogger(o.logger, "submit")
	return o, nil
}

// Phase returns the orchestrator's current phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Tracker exposes the progress tracker feeding this orchestrator's uploads.
func (o *Orchestrator) Tracker() *progress.Tracker { return o.tracker }

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

// clearable is the draft surface shared by every failure path.
type clearable interface{ ClearAssets() }

// fail rolls the pipeline back to Pending. Encoded handles are dropped so a
// retry re-encodes; draft text survives untouched.
func (o *Orchestrator) fail(draft clearable, err error) error {
	draft.ClearAssets()
	o.tracker.ResetAll()
	o.setPhase(PhasePending)
	return err
}

// pipelineContext annotates ctx with the fields every log line of this
// submission should carry; downstream loggers derive them via
// logging.WithContext, including the platform client's request logging.
func (o *Orchestrator) pipelineContext(ctx context.Context, kind string) context.Context {
	ctx = services.WithKind(ctx, kind)
	return services.WithActor(ctx, o.principal.ID)
}

// settle invalidates the cached queries a successful submission affects and
// resets the local form state.
func (o *Orchestrator) settle(ctx context.Context, draft interface {
	clearable
	Reset()
}, keys []string) {
	o.setPhase(PhaseSettled)
	if err := o.cache.Invalidate(ctx, keys...); err != nil {
		logging.WithContext(ctx, o.logger).Warn("cache invalidation failed", logging.Error(err))
	}
	draft.Reset()
	o.tracker.ResetAll()
}

// logSettled records the outcome under the submission's context fields.
func (o *Orchestrator) logSettled(ctx context.Context, msg, submissionID string) {
	ctx = services.WithSubmissionID(ctx, submissionID)
	logging.WithContext(ctx, o.logger).Info(msg)
}

// checkBlocked probes the account standing at the start of the submitting
// phase, right before the remote call. Probe errors fail open or closed per
// policy; a definitive blocked answer is always terminal.
func (o *Orchestrator) checkBlocked(ctx context.Context, kind string) error {
	blocked, err := o.backend.CheckBlocked(ctx)
	if err != nil {
		if o.failOpen {
			logging.WithContext(ctx, o.logger).Warn("blocked-account probe failed, proceeding per policy", logging.Error(err))
			return nil
		}
		return services.Wrap(services.ErrRemote, kind, "blocked probe", "probe failed", err)
	}
	if blocked {
		return services.Wrap(services.ErrBlocked, kind, "submit", "account is blocked from submitting", nil)
	}
	return nil
}

// encodeJob names one binary field to encode under its tracker key.
type encodeJob struct {
	key  string
	path string
	dest *asset.Handle
}

// runEncodes encodes every job concurrently. All jobs must resolve before the
// pipeline advances; the first error wins.
func (o *Orchestrator) runEncodes(ctx context.Context, jobs []encodeJob) error {
	if len(jobs) == 0 {
		return nil
	}
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, job := range jobs {
		wg.Add(1)
		go func(job encodeJob) {
			defer wg.Done()
			handle, err := o.encoder.Encode(ctx, job.path, o.tracker.Func(job.key))
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			*job.dest = handle
		}(job)
	}
	wg.Wait()
	return firstErr
}

// gateArtwork runs the artwork validator over path. The rejection reason is
// surfaced verbatim as the validation error message; an unreadable file keeps
// its own IO error rather than masquerading as a decode failure.
func (o *Orchestrator) gateArtwork(ctx context.Context, kind, path string) error {
	res, err := o.artwork.Validate(ctx, path)
	if err != nil {
		return services.Wrap(services.ErrValidation, kind, "artwork", "artwork unreadable", err)
	}
	if !res.Valid {
		return services.Wrap(services.ErrValidation, kind, "artwork", res.Reason, nil)
	}
	return nil
}

// SubmitSong runs the song pipeline: validate, gate artwork, encode the
// changed binary fields, then one SubmitSong call. Edits reuse stored
// payloads for any binary field left empty.
func (o *Orchestrator) SubmitSong(ctx context.Context, draft *SongDraft) (*platform.SubmissionRecord, error) {
	ctx = o.pipelineContext(ctx, kindSong)
	o.setPhase(PhaseValidating)
	if err := draft.validate(); err != nil {
		return nil, o.fail(draft, err)
	}
	if draft.ArtworkPath != "" {
		if err := o.gateArtwork(ctx, kindSong, draft.ArtworkPath); err != nil {
			return nil, o.fail(draft, err)
		}
	}

	o.setPhase(PhaseEncoding)
	var jobs []encodeJob
	if draft.ArtworkPath != "" {
		jobs = append(jobs, encodeJob{key: "artwork", path: draft.ArtworkPath, dest: &draft.Artwork})
	} else if draft.ExistingArtworkURL != "" {
		draft.Artwork = asset.FromURL(draft.ExistingArtworkURL)
	}
	if draft.ReleaseType == "album" {
		for i := range draft.Tracks {
			jobs = append(jobs, encodeJob{
				key:  "track-" + strconv.Itoa(i+1),
				path: draft.Tracks[i].AudioPath,
				dest: &draft.Tracks[i].Audio,
			})
		}
	} else if draft.AudioPath != "" {
		jobs = append(jobs, encodeJob{key: "audio", path: draft.AudioPath, dest: &draft.Audio})
	} else if draft.ExistingAudioURL != "" {
		draft.Audio = asset.FromURL(draft.ExistingAudioURL)
	}
	if err := o.runEncodes(ctx, jobs); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseSubmitting)
	if err := o.checkBlocked(ctx, kindSong); err != nil {
		return nil, o.fail(draft, err)
	}

	sub := platform.SongSubmission{
		ID:          draft.ID,
		Title:       draft.Title,
		ArtistName:  draft.ArtistName,
		Genre:       draft.Genre,
		ReleaseType: draft.ReleaseType,
		ReleaseDate: draft.ReleaseDate,
		Artwork:     draft.Artwork,
		Audio:       draft.Audio,
	}
	for _, track := range draft.Tracks {
		sub.Tracks = append(sub.Tracks, platform.TrackUpload{
			Title: track.Title, Artist: track.Artist, Audio: track.Audio,
		})
	}
	record, err := o.backend.SubmitSong(ctx, sub)
	if err != nil {
		return nil, o.fail(draft, err)
	}

	o.logSettled(ctx, "song submitted", record.ID)
	o.settle(ctx, draft, []string{querycache.KeyMySubmissions, querycache.KeyAllSubmissions})
	return record, nil
}

// CreateShow runs the podcast show pipeline.
func (o *Orchestrator) CreateShow(ctx context.Context, draft *ShowDraft) (*platform.SubmissionRecord, error) {
	ctx = o.pipelineContext(ctx, kindShow)
	o.setPhase(PhaseValidating)
	if err := draft.validate(); err != nil {
		return nil, o.fail(draft, err)
	}
	if draft.ArtworkPath != "" {
		if err := o.gateArtwork(ctx, kindShow, draft.ArtworkPath); err != nil {
			return nil, o.fail(draft, err)
		}
	}

	o.setPhase(PhaseEncoding)
	var jobs []encodeJob
	if draft.ArtworkPath != "" {
		jobs = append(jobs, encodeJob{key: "artwork", path: draft.ArtworkPath, dest: &draft.Artwork})
	} else if draft.ExistingArtworkURL != "" {
		draft.Artwork = asset.FromURL(draft.ExistingArtworkURL)
	}
	if err := o.runEncodes(ctx, jobs); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseSubmitting)
	if err := o.checkBlocked(ctx, kindShow); err != nil {
		return nil, o.fail(draft, err)
	}

	record, err := o.backend.CreatePodcastShow(ctx, platform.ShowSubmission{
		ID:          draft.ID,
		Title:       draft.Title,
		Author:      draft.Author,
		Description: draft.Description,
		Language:    draft.Language,
		Category:    draft.Category,
		Artwork:     draft.Artwork,
	})
	if err != nil {
		return nil, o.fail(draft, err)
	}

	o.logSettled(ctx, "show created", record.ID)
	o.settle(ctx, draft, []string{
		querycache.KeyMySubmissions, querycache.KeyAllSubmissions, querycache.KeyPodcastShows,
	})
	return record, nil
}

// CreateEpisode runs the podcast episode pipeline.
func (o *Orchestrator) CreateEpisode(ctx context.Context, draft *EpisodeDraft) (*platform.SubmissionRecord, error) {
	ctx = o.pipelineContext(ctx, kindEpisode)
	o.setPhase(PhaseValidating)
	if err := draft.validate(); err != nil {
		return nil, o.fail(draft, err)
	}
	if draft.ArtworkPath != "" {
		if err := o.gateArtwork(ctx, kindEpisode, draft.ArtworkPath); err != nil {
			return nil, o.fail(draft, err)
		}
	}

	o.setPhase(PhaseEncoding)
	var jobs []encodeJob
	if draft.AudioPath != "" {
		jobs = append(jobs, encodeJob{key: "audio", path: draft.AudioPath, dest: &draft.Audio})
	} else if draft.ExistingAudioURL != "" {
		draft.Audio = asset.FromURL(draft.ExistingAudioURL)
	}
	if draft.ArtworkPath != "" {
		jobs = append(jobs, encodeJob{key: "artwork", path: draft.ArtworkPath, dest: &draft.Artwork})
	} else if draft.ExistingArtworkURL != "" {
		draft.Artwork = asset.FromURL(draft.ExistingArtworkURL)
	}
	if err := o.runEncodes(ctx, jobs); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseSubmitting)
	if err := o.checkBlocked(ctx, kindEpisode); err != nil {
		return nil, o.fail(draft, err)
	}

	record, err := o.backend.CreatePodcastEpisode(ctx, platform.EpisodeSubmission{
		ID:          draft.ID,
		ShowID:      draft.ShowID,
		Title:       draft.Title,
		Description: draft.Description,
		Audio:       draft.Audio,
		Artwork:     draft.Artwork,
	})
	if err != nil {
		return nil, o.fail(draft, err)
	}

	o.logSettled(ctx, "episode created", record.ID)
	o.settle(ctx, draft, []string{
		querycache.KeyMySubmissions, querycache.KeyAllSubmissions, querycache.KeyPodcastEpisodes,
	})
	return record, nil
}

// SubmitVideo runs the video pipeline; a draft with an ID updates the stored
// submission instead of creating a new one.
func (o *Orchestrator) SubmitVideo(ctx context.Context, draft *VideoDraft) (*platform.SubmissionRecord, error) {
	ctx = o.pipelineContext(ctx, kindVideo)
	o.setPhase(PhaseValidating)
	if err := draft.validate(); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseEncoding)
	var jobs []encodeJob
	if draft.VideoPath != "" {
		jobs = append(jobs, encodeJob{key: "video", path: draft.VideoPath, dest: &draft.Video})
	} else if draft.ExistingVideoURL != "" {
		draft.Video = asset.FromURL(draft.ExistingVideoURL)
	}
	if draft.ThumbnailPath != "" {
		jobs = append(jobs, encodeJob{key: "thumbnail", path: draft.ThumbnailPath, dest: &draft.Thumbnail})
	} else if draft.ExistingThumbnailURL != "" {
		draft.Thumbnail = asset.FromURL(draft.ExistingThumbnailURL)
	}
	if err := o.runEncodes(ctx, jobs); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseSubmitting)
	if err := o.checkBlocked(ctx, kindVideo); err != nil {
		return nil, o.fail(draft, err)
	}

	sub := platform.VideoSubmission{
		ID:          draft.ID,
		Title:       draft.Title,
		ArtistName:  draft.ArtistName,
		Description: draft.Description,
		Video:       draft.Video,
		Thumbnail:   draft.Thumbnail,
	}
	var (
		record *platform.SubmissionRecord
		err    error
	)
	if draft.Editing() {
		record, err = o.backend.UpdateVideoSubmission(ctx, sub)
	} else {
		record, err = o.backend.SubmitVideo(ctx, sub)
	}
	if err != nil {
		return nil, o.fail(draft, err)
	}

	o.logSettled(ctx, "video submitted", record.ID)
	o.settle(ctx, draft, []string{querycache.KeyMySubmissions, querycache.KeyAllSubmissions})
	return record, nil
}

// PostBlog runs the blog post pipeline.
func (o *Orchestrator) PostBlog(ctx context.Context, draft *BlogDraft) (*platform.SubmissionRecord, error) {
	ctx = o.pipelineContext(ctx, kindBlog)
	o.setPhase(PhaseValidating)
	if err := draft.validate(); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseEncoding)
	var jobs []encodeJob
	if draft.HeaderPath != "" {
		jobs = append(jobs, encodeJob{key: "header", path: draft.HeaderPath, dest: &draft.Header})
	} else if draft.ExistingHeaderURL != "" {
		draft.Header = asset.FromURL(draft.ExistingHeaderURL)
	}
	if err := o.runEncodes(ctx, jobs); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseSubmitting)
	if err := o.checkBlocked(ctx, kindBlog); err != nil {
		return nil, o.fail(draft, err)
	}

	record, err := o.backend.CreateBlogPost(ctx, platform.BlogPost{
		ID:     draft.ID,
		Title:  draft.Title,
		Body:   draft.Body,
		Header: draft.Header,
	})
	if err != nil {
		return nil, o.fail(draft, err)
	}

	o.logSettled(ctx, "post published", record.ID)
	o.settle(ctx, draft, []string{
		querycache.KeyMySubmissions, querycache.KeyAllSubmissions, querycache.KeyBlogPosts,
	})
	return record, nil
}

// SaveProfile runs the artist profile pipeline. With a populated ArtistID the
// caller must hold the admin role and the edit routes to the admin endpoint.
func (o *Orchestrator) SaveProfile(ctx context.Context, draft *ProfileDraft) (*platform.SubmissionRecord, error) {
	ctx = o.pipelineContext(ctx, kindProfile)
	o.setPhase(PhaseValidating)
	if draft.ArtistID != "" && !o.principal.IsAdmin() {
		return nil, o.fail(draft, services.Wrap(services.ErrUnauthorized, kindProfile, "admin edit",
			"admin role required to edit another artist's profile", nil))
	}
	if err := draft.validate(); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseEncoding)
	var jobs []encodeJob
	if draft.PhotoPath != "" {
		jobs = append(jobs, encodeJob{key: "photo", path: draft.PhotoPath, dest: &draft.Photo})
	} else if draft.ExistingPhotoURL != "" {
		draft.Photo = asset.FromURL(draft.ExistingPhotoURL)
	}
	if err := o.runEncodes(ctx, jobs); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseSubmitting)
	if err := o.checkBlocked(ctx, kindProfile); err != nil {
		return nil, o.fail(draft, err)
	}

	update := platform.ProfileUpdate{
		ArtistID:  draft.ArtistID,
		Name:      draft.Name,
		Biography: draft.Biography,
		Website:   draft.Website,
		Photo:     draft.Photo,
	}
	var (
		record *platform.SubmissionRecord
		err    error
	)
	if draft.ArtistID != "" {
		record, err = o.backend.AdminEditArtistProfile(ctx, update)
	} else {
		record, err = o.backend.SaveArtistProfile(ctx, update)
	}
	if err != nil {
		return nil, o.fail(draft, err)
	}

	o.logSettled(ctx, "profile saved", record.ID)
	o.settle(ctx, draft, []string{querycache.KeyArtistProfile})
	return record, nil
}

// AdminEditSong edits any user's song submission through the admin endpoint.
// The platform enforces the role server-side; the local check keeps a plain
// user from uploading payloads that would only be rejected afterwards.
func (o *Orchestrator) AdminEditSong(ctx context.Context, draft *SongDraft) (*platform.SubmissionRecord, error) {
	ctx = o.pipelineContext(ctx, kindSong)
	if !o.principal.IsAdmin() {
		o.setPhase(PhasePending)
		return nil, services.Wrap(services.ErrUnauthorized, kindSong, "admin edit", "admin role required", nil)
	}
	if draft.ID == "" {
		o.setPhase(PhasePending)
		return nil, validationErr(kindSong, "submission id is required")
	}

	o.setPhase(PhaseValidating)
	if err := draft.validate(); err != nil {
		return nil, o.fail(draft, err)
	}
	if draft.ArtworkPath != "" {
		if err := o.gateArtwork(ctx, kindSong, draft.ArtworkPath); err != nil {
			return nil, o.fail(draft, err)
		}
	}

	o.setPhase(PhaseEncoding)
	var jobs []encodeJob
	if draft.ArtworkPath != "" {
		jobs = append(jobs, encodeJob{key: "artwork", path: draft.ArtworkPath, dest: &draft.Artwork})
	} else if draft.ExistingArtworkURL != "" {
		draft.Artwork = asset.FromURL(draft.ExistingArtworkURL)
	}
	if draft.AudioPath != "" {
		jobs = append(jobs, encodeJob{key: "audio", path: draft.AudioPath, dest: &draft.Audio})
	} else if draft.ExistingAudioURL != "" {
		draft.Audio = asset.FromURL(draft.ExistingAudioURL)
	}
	if err := o.runEncodes(ctx, jobs); err != nil {
		return nil, o.fail(draft, err)
	}

	o.setPhase(PhaseSubmitting)
	record, err := o.backend.AdminEditSubmission(ctx, platform.SongSubmission{
		ID:          draft.ID,
		Title:       draft.Title,
		ArtistName:  draft.ArtistName,
		Genre:       draft.Genre,
		ReleaseType: draft.ReleaseType,
		ReleaseDate: draft.ReleaseDate,
		Artwork:     draft.Artwork,
		Audio:       draft.Audio,
	})
	if err != nil {
		return nil, o.fail(draft, err)
	}

	o.logSettled(ctx, "submission edited by admin", record.ID)
	o.settle(ctx, draft, []string{querycache.KeyMySubmissions, querycache.KeyAllSubmissions})
	return record, nil
}
