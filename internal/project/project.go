// Package project manages portfolio projects: their content, attached files,
// version history, download counts and visitor favorites.
package project

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/showcase/service/internal/filedex"
)

var (
	// ErrNotFound is returned when a project (or one of its files) does not exist.
	ErrNotFound = errors.New("project not found")
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("invalid input")
	// ErrConflict is returned for slug and version clashes.
	ErrConflict = errors.New("conflict")
)

const (
	maxTitleLen   = 200
	maxSummaryLen = 500
	maxTags       = 20
	maxTagLen     = 40
	maxVersionLen = 50
)

// Project is one portfolio entry.
type Project struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	Media       []Media   `json:"media"`
	Files       []File    `json:"files"`
	Versions    []Version `json:"versions"`
	Featured    bool      `json:"featured"`
	Published   bool      `json:"published"`
	Downloads   int64     `json:"downloads"`
	Favorites   int       `json:"favorites"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MediaKind is the type of a media item shown in a project gallery.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaEmbed MediaKind = "embed"
)

// Media is an image, video or embedded player shown with a project.
type Media struct {
	Kind    MediaKind `json:"kind"`
	URL     string    `json:"url"`
	Caption string    `json:"caption,omitempty"`
}

// File is a downloadable file stored in blob storage.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Hash        string    `json:"hash"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Version is one entry of a project's release history.
type Version struct {
	Version    string    `json:"version"`
	Notes      string    `json:"notes,omitempty"`
	Files      []File    `json:"files"`
	ReleasedAt time.Time `json:"releasedAt"`
}

// FileFromEntry converts a file index entry into a project file.
func FileFromEntry(e filedex.Entry) File {
	return File{
		ID:          e.ID,
		Name:        e.Name,
		Slug:        e.Slug,
		Key:         e.Key,
		URL:         e.URL,
		Hash:        e.Hash,
		Size:        e.Size,
		ContentType: e.ContentType,
		UploadedAt:  e.CreatedAt,
	}
}

// Entry converts f back into a file index entry.
func (f File) Entry() filedex.Entry {
	return filedex.Entry{
		ID:          f.ID,
		Name:        f.Name,
		Slug:        f.Slug,
		Key:         f.Key,
		URL:         f.URL,
		Hash:        f.Hash,
		Size:        f.Size,
		ContentType: f.ContentType,
		CreatedAt:   f.UploadedAt,
	}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", invalid("title must be at most %d characters", maxTitleLen)
	}
	return title, nil
}

func validateSummary(summary string) (string, error) {
	summary = strings.TrimSpace(summary)
	if utf8.RuneCountInString(summary) > maxSummaryLen {
		return "", invalid("summary must be at most %d characters", maxSummaryLen)
	}
	return summary, nil
}

// normalizeTags trims, lowercases and de-duplicates tags, keeping first-seen order.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t == "" || seen[t] {
			continue
		}
		if utf8.RuneCountInString(t) > maxTagLen {
			return nil, invalid("tag %q is longer than %d characters", t, maxTagLen)
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > maxTags {
		return nil, invalid("at most %d tags are allowed", maxTags)
	}
	return out, nil
}

func validateMedia(media []Media) ([]Media, error) {
	out := make([]Media, 0, len(media))
	for i, m := range media {
		switch m.Kind {
		case MediaImage, MediaVideo, MediaEmbed:
		case "":
			m.Kind = MediaImage
		default:
			return nil, invalid("media[%d]: unknown kind %q", i, m.Kind)
		}
		m.URL = strings.TrimSpace(m.URL)
		u, err := url.Parse(m.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, invalid("media[%d]: url must be an absolute http(s) URL", i)
		}
		m.Caption = strings.TrimSpace(m.Caption)
		out = append(out, m)
	}
	return out, nil
}

func validateVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("version is required")
	}
	if utf8.RuneCountInString(v) > maxVersionLen {
		return "", invalid("version must be at most %d characters", maxVersionLen)
	}
	return v, nil
}
