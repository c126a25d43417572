// Package file serves downloadable files: uploads are de-duplicated through
// the file index before reaching blob storage, and downloads redirect to the
// blob URL.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/showcase/service/internal/filedex"
	"github.com/showcase/service/internal/project"
	"github.com/showcase/service/internal/storage"
	"github.com/showcase/service/internal/telemetry"
)

const (
	keyPrefix       = "files/"
	releaseParallel = 4
)

// ErrEmpty is returned for zero-byte uploads.
var ErrEmpty = errors.New("file is empty")

// Upload is one incoming file.
type Upload struct {
	Name        string
	ContentType string
	Body        io.ReadSeeker
	// Project, when set, is the id or slug of the project to attach to.
	Project string
}

// Result is what an upload produced.
type Result struct {
	File      project.File     `json:"file"`
	Duplicate bool             `json:"duplicate"`
	Project   *project.Project `json:"project,omitempty"`
}

// Service contains the business logic for file uploads and downloads.
type Service struct {
	index    *filedex.Index
	store    storage.Storage
	projects *project.Service
	metrics  *telemetry.Metrics

	// claims orders uploads that may reuse an entry against releases that
	// may drop it: an upload holds it from registering until the file is
	// attached, a release holds it from the reference check until the blob
	// is gone.
	claims sync.Mutex
}

// NewService creates a new file Service. metrics may be nil.
func NewService(index *filedex.Index, store storage.Storage, projects *project.Service, metrics *telemetry.Metrics) *Service {
	return &Service{index: index, store: store, projects: projects, metrics: metrics}
}

// Rehydrate loads the files referenced by stored projects into the index.
func (s *Service) Rehydrate(ctx context.Context) (int, error) {
	entries, err := s.projects.Files(ctx)
	if err != nil {
		return 0, fmt.Errorf("rehydrate file index: %w", err)
	}
	return s.index.Load(entries), nil
}

// Upload hashes the content, stores it unless identical content is already
// stored, and optionally attaches the file to a project.
func (s *Service) Upload(ctx context.Context, u Upload) (*Result, error) {
	var target *project.Project
	if u.Project != "" {
		p, err := s.projects.Get(ctx, u.Project)
		if err != nil {
			return nil, err
		}
		target = p
	}

	hash, size, err := filedex.Sum(u.Body)
	if err != nil {
		return nil, fmt.Errorf("hash upload: %w", err)
	}
	if size == 0 {
		return nil, ErrEmpty
	}
	contentType := detectContentType(u.Name, u.ContentType)

	mint := func(ctx context.Context, slug string) (filedex.Blob, error) {
		if _, err := u.Body.Seek(0, io.SeekStart); err != nil {
			return filedex.Blob{}, fmt.Errorf("rewind upload: %w", err)
		}
		key := keyPrefix + slug
		if err := s.store.Upload(ctx, key, u.Body, size, contentType); err != nil {
			return filedex.Blob{}, err
		}
		return filedex.Blob{Key: key, URL: s.store.PublicURL(key)}, nil
	}

	res, err := s.register(ctx, filedex.Upload{
		Name:        u.Name,
		Hash:        hash,
		Size:        size,
		ContentType: contentType,
	}, mint, target)
	if err != nil {
		return nil, err
	}
	s.metrics.Upload(ctx, res.Duplicate, size)

	zerolog.Ctx(ctx).Info().
		Str("file", res.File.ID).
		Str("slug", res.File.Slug).
		Int64("size", size).
		Bool("duplicate", res.Duplicate).
		Msg("file uploaded")
	return res, nil
}

func (s *Service) register(ctx context.Context, u filedex.Upload, mint filedex.MintFunc, target *project.Project) (*Result, error) {
	s.claims.Lock()
	defer s.claims.Unlock()

	entry, dup, err := s.index.Register(ctx, u, mint)
	if err != nil {
		return nil, err
	}
	res := &Result{File: project.FileFromEntry(entry), Duplicate: dup}
	if target != nil {
		p, err := s.projects.AttachFile(ctx, target.ID, res.File)
		if err != nil {
			return nil, err
		}
		res.Project = p
	}
	return res, nil
}

// Resolve finds a file by id, slug or original filename.
func (s *Service) Resolve(identifier string) (project.File, error) {
	e, err := s.index.Resolve(identifier)
	if err != nil {
		return project.File{}, err
	}
	return project.FileFromEntry(e), nil
}

// Meta resolves identifier like Resolve. Unless drafts is set, files used
// only by unpublished projects are reported as not found.
func (s *Service) Meta(ctx context.Context, identifier string, drafts bool) (project.File, error) {
	f, err := s.Resolve(identifier)
	if err != nil {
		return project.File{}, err
	}
	if drafts {
		return f, nil
	}
	ok, err := s.projects.FileVisible(ctx, f.ID)
	if err != nil {
		return project.File{}, err
	}
	if !ok {
		return project.File{}, filedex.ErrNotFound
	}
	return f, nil
}

// Download resolves identifier like Meta and, when projectID is set, counts
// a download for that project. A missing project, or a draft when drafts is
// not set, does not block the download and is not counted.
func (s *Service) Download(ctx context.Context, identifier, projectID string, drafts bool) (project.File, error) {
	f, err := s.Meta(ctx, identifier, drafts)
	if err != nil {
		return project.File{}, err
	}
	if projectID != "" {
		s.countDownload(ctx, projectID, drafts)
	}
	s.metrics.Download(ctx)
	return f, nil
}

func (s *Service) countDownload(ctx context.Context, projectID string, drafts bool) {
	log := zerolog.Ctx(ctx)
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		log.Warn().Err(err).Str("project", projectID).Msg("record download")
		return
	}
	if !p.Published && !drafts {
		log.Debug().Str("project", p.ID).Msg("download of draft not counted")
		return
	}
	if err := s.projects.RecordDownload(ctx, p.ID); err != nil {
		log.Warn().Err(err).Str("project", p.ID).Msg("record download")
	}
}

// List returns every indexed file, oldest first.
func (s *Service) List() []project.File {
	entries := s.index.Entries()
	out := make([]project.File, len(entries))
	for i, e := range entries {
		out[i] = project.FileFromEntry(e)
	}
	return out
}

// Release drops files from the index and deletes their blobs. Files a
// project references again by now are kept.
func (s *Service) Release(ctx context.Context, files []project.File) error {
	s.claims.Lock()
	defer s.claims.Unlock()

	referenced, err := s.projects.Files(ctx)
	if err != nil {
		return fmt.Errorf("release files: %w", err)
	}
	inUse := make(map[string]bool, len(referenced))
	for _, e := range referenced {
		inUse[e.ID] = true
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(releaseParallel)
	for _, f := range files {
		if inUse[f.ID] {
			zerolog.Ctx(ctx).Debug().Str("file", f.ID).Msg("file still referenced, kept")
			continue
		}
		g.Go(func() error {
			s.index.Forget(f.ID)
			if f.Key == "" {
				return nil
			}
			if err := s.store.Delete(ctx, f.Key); err != nil {
				return fmt.Errorf("delete blob %s: %w", f.Key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// IsNotFound returns true when the error indicates a missing file or project.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, filedex.ErrNotFound) || errors.Is(err, project.ErrNotFound)
}

func detectContentType(name, declared string) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(name))); t != "" {
		return t
	}
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	return "application/octet-stream"
}
