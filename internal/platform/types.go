package platform

import "encore/internal/asset"

// Principal identifies the signed-in account a client acts as.
type Principal struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Blocked bool   `json:"blocked"`
}

// IsAdmin reports whether the principal may edit other users' submissions.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

// SubmissionKind names the content types the platform distributes.
type SubmissionKind string

const (
	KindSong           SubmissionKind = "song"
	KindPodcastShow    SubmissionKind = "podcast_show"
	KindPodcastEpisode SubmissionKind = "podcast_episode"
	KindVideo          SubmissionKind = "video"
	KindBlogPost       SubmissionKind = "blog_post"
	KindArtistProfile  SubmissionKind = "artist_profile"
)

// SubmissionRecord is the platform's view of a stored submission, returned by
// the listing and mutation endpoints.
type SubmissionRecord struct {
	ID          string         `json:"id"`
	Kind        SubmissionKind `json:"kind"`
	Title       string         `json:"title"`
	ArtistName  string         `json:"artist_name"`
	Status      string         `json:"status"`
	ArtworkURL  string         `json:"artwork_url,omitempty"`
	AudioURL    string         `json:"audio_url,omitempty"`
	VideoURL    string         `json:"video_url,omitempty"`
	SubmittedAt string         `json:"submitted_at"`
	OwnerID     string         `json:"owner_id"`
}

// TrackUpload is one album track ready for transfer.
type TrackUpload struct {
	Title  string
	Artist string
	Audio  asset.Handle
}

// SongSubmission carries a single or album release. Artwork and Audio may be
// URL-backed on edits; the platform keeps the stored payload for those fields.
type SongSubmission struct {
	ID          string
	Title       string
	ArtistName  string
	Genre       string
	ReleaseType string
	ReleaseDate string
	Artwork     asset.Handle
	Audio       asset.Handle
	Tracks      []TrackUpload
}

// ShowSubmission creates or updates a podcast show.
type ShowSubmission struct {
	ID          string
	Title       string
	Author      string
	Description string
	Language    string
	Category    string
	Artwork     asset.Handle
}

// EpisodeSubmission attaches an episode to an existing show.
type EpisodeSubmission struct {
	ID          string
	ShowID      string
	Title       string
	Description string
	Audio       asset.Handle
	Artwork     asset.Handle
}

// VideoSubmission carries a video release.
type VideoSubmission struct {
	ID          string
	Title       string
	ArtistName  string
	Description string
	Video       asset.Handle
	Thumbnail   asset.Handle
}

// BlogPost is a text-first submission with an optional header image.
type BlogPost struct {
	ID     string
	Title  string
	Body   string
	Header asset.Handle
}

// ProfileUpdate carries the artist profile form.
type ProfileUpdate struct {
	ArtistID  string
	Name      string
	Biography string
	Website   string
	Photo     asset.Handle
}

// ListOptions filters submission listings. All defaults to the caller's own
// submissions; admins may request everyone's.
type ListOptions struct {
	All  bool
	Kind SubmissionKind
}
