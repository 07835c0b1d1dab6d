package submit

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"encore/internal/asset"
)

// TrackDraft is one album track in a song draft.
type TrackDraft struct {
	Title     string
	Artist    string
	AudioPath string
	Audio     asset.Handle
}

// SongDraft holds the song submission form. A populated ID marks an edit of a
// stored submission; empty binary paths on an edit mean "keep the stored
// payload", carried through the Existing* URLs.
type SongDraft struct {
	ID          string
	Title       string
	ArtistName  string
	Genre       string
	ReleaseType string
	ReleaseDate string
	ArtworkPath string
	AudioPath   string
	Artwork     asset.Handle
	Audio       asset.Handle
	Tracks      []TrackDraft

	ExistingArtworkURL string
	ExistingAudioURL   string
}

// Editing reports whether the draft targets a stored submission.
func (d *SongDraft) Editing() bool { return d.ID != "" }

func (d *SongDraft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return validationErr(kindSong, "title is required")
	}
	if strings.TrimSpace(d.ArtistName) == "" {
		return validationErr(kindSong, "artist name is required")
	}
	switch d.ReleaseType {
	case "single", "album":
	default:
		return validationErr(kindSong, "release type must be single or album")
	}
	if d.ArtworkPath == "" && !(d.Editing() && d.ExistingArtworkURL != "") {
		return validationErr(kindSong, "artwork is required")
	}
	if d.ReleaseType == "album" {
		return d.validateTracks()
	}
	if d.AudioPath == "" && !(d.Editing() && d.ExistingAudioURL != "") {
		return validationErr(kindSong, "audio file is required")
	}
	return nil
}

// validateTracks enforces the album invariant: a non-empty track list, each
// track with its own title, artist, and audio.
func (d *SongDraft) validateTracks() error {
	if len(d.Tracks) == 0 {
		return validationErr(kindSong, "album must include at least one track")
	}
	for i, track := range d.Tracks {
		n := i + 1
		if strings.TrimSpace(track.Title) == "" {
			return validationErr(kindSong, fmt.Sprintf("track %d: title is required", n))
		}
		if strings.TrimSpace(track.Artist) == "" {
			return validationErr(kindSong, fmt.Sprintf("track %d: artist is required", n))
		}
		if track.AudioPath == "" {
			return validationErr(kindSong, fmt.Sprintf("track %d: audio file is required", n))
		}
	}
	return nil
}

// ClearAssets drops the encoded handles so a retry re-encodes from the source
// paths. Text fields and paths stay intact.
func (d *SongDraft) ClearAssets() {
	d.Artwork = asset.Handle{}
	d.Audio = asset.Handle{}
	for i := range d.Tracks {
		d.Tracks[i].Audio = asset.Handle{}
	}
}

// Reset returns the draft to its zero state after a settled submission.
func (d *SongDraft) Reset() { *d = SongDraft{} }

// ShowDraft holds the podcast show form.
type ShowDraft struct {
	ID          string
	Title       string
	Author      string
	Description string
	Language    string
	Category    string
	ArtworkPath string
	Artwork     asset.Handle

	ExistingArtworkURL string
}

func (d *ShowDraft) Editing() bool { return d.ID != "" }

func (d *ShowDraft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return validationErr(kindShow, "title is required")
	}
	if strings.TrimSpace(d.Author) == "" {
		return validationErr(kindShow, "author is required")
	}
	if strings.TrimSpace(d.Language) == "" {
		return validationErr(kindShow, "language is required")
	}
	if _, err := language.Parse(d.Language); err != nil {
		return validationErr(kindShow, fmt.Sprintf("language %q is not a valid BCP 47 tag", d.Language))
	}
	if d.ArtworkPath == "" && !(d.Editing() && d.ExistingArtworkURL != "") {
		return validationErr(kindShow, "artwork is required")
	}
	return nil
}

func (d *ShowDraft) ClearAssets() { d.Artwork = asset.Handle{} }
func (d *ShowDraft) Reset()       { *d = ShowDraft{} }

// EpisodeDraft holds the podcast episode form.
type EpisodeDraft struct {
	ID          string
	ShowID      string
	Title       string
	Description string
	AudioPath   string
	ArtworkPath string
	Audio       asset.Handle
	Artwork     asset.Handle

	ExistingAudioURL   string
	ExistingArtworkURL string
}

func (d *EpisodeDraft) Editing() bool { return d.ID != "" }

func (d *EpisodeDraft) validate() error {
	if strings.TrimSpace(d.ShowID) == "" {
		return validationErr(kindEpisode, "show id is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return validationErr(kindEpisode, "title is required")
	}
	if d.AudioPath == "" && !(d.Editing() && d.ExistingAudioURL != "") {
		return validationErr(kindEpisode, "audio file is required")
	}
	return nil
}

func (d *EpisodeDraft) ClearAssets() {
	d.Audio = asset.Handle{}
	d.Artwork = asset.Handle{}
}
func (d *EpisodeDraft) Reset() { *d = EpisodeDraft{} }

// VideoDraft holds the video submission form.
type VideoDraft struct {
	ID            string
	Title         string
	ArtistName    string
	Description   string
	VideoPath     string
	ThumbnailPath string
	Video         asset.Handle
	Thumbnail     asset.Handle

	ExistingVideoURL     string
	ExistingThumbnailURL string
}

func (d *VideoDraft) Editing() bool { return d.ID != "" }

func (d *VideoDraft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return validationErr(kindVideo, "title is required")
	}
	if d.VideoPath == "" && !(d.Editing() && d.ExistingVideoURL != "") {
		return validationErr(kindVideo, "video file is required")
	}
	return nil
}

func (d *VideoDraft) ClearAssets() {
	d.Video = asset.Handle{}
	d.Thumbnail = asset.Handle{}
}
func (d *VideoDraft) Reset() { *d = VideoDraft{} }

// BlogDraft holds the blog post form.
type BlogDraft struct {
	ID         string
	Title      string
	Body       string
	HeaderPath string
	Header     asset.Handle

	ExistingHeaderURL string
}

func (d *BlogDraft) Editing() bool { return d.ID != "" }

func (d *BlogDraft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return validationErr(kindBlog, "title is required")
	}
	if strings.TrimSpace(d.Body) == "" {
		return validationErr(kindBlog, "body is required")
	}
	return nil
}

func (d *BlogDraft) ClearAssets() { d.Header = asset.Handle{} }
func (d *BlogDraft) Reset()       { *d = BlogDraft{} }

// ProfileDraft holds the artist profile form. ArtistID is only set on admin
// edits of another artist's profile.
type ProfileDraft struct {
	ArtistID  string
	Name      string
	Biography string
	Website   string
	PhotoPath string
	Photo     asset.Handle

	ExistingPhotoURL string
}

func (d *ProfileDraft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return validationErr(kindProfile, "name is required")
	}
	return nil
}

func (d *ProfileDraft) ClearAssets() { d.Photo = asset.Handle{} }
func (d *ProfileDraft) Reset()       { *d = ProfileDraft{} }
