package project

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/showcase/service/internal/filedex"
)

// Sort orders for List.
const (
	SortRecent  = "recent"
	SortPopular = "popular"
	SortTitle   = "title"
)

// Input is the payload for creating a project.
type Input struct {
	Title       string   `json:"title" example:"Tiny Synth"`
	Slug        string   `json:"slug,omitempty" example:"tiny-synth"`
	Summary     string   `json:"summary,omitempty" example:"A four-voice synthesizer in 8 KB"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" example:"audio,embedded"`
	Media       []Media  `json:"media,omitempty"`
	Featured    bool     `json:"featured,omitempty"`
	Published   *bool    `json:"published,omitempty"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Slug        *string   `json:"slug,omitempty"`
	Summary     *string   `json:"summary,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Media       *[]Media  `json:"media,omitempty"`
	Featured    *bool     `json:"featured,omitempty"`
	Published   *bool     `json:"published,omitempty"`
}

// VersionInput is the payload for adding a release to a project.
type VersionInput struct {
	Version string   `json:"version" example:"1.2.0"`
	Notes   string   `json:"notes,omitempty" example:"Adds MIDI input"`
	FileIDs []string `json:"fileIds,omitempty"`
}

// Filter narrows List results.
type Filter struct {
	Tag           string
	Query         string
	Featured      *bool
	IncludeDrafts bool
	Sort          string
	Limit         int
	Offset        int
}

// TagCount is how many published projects carry a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Service contains the business logic for projects.
type Service struct {
	repo  *Repository
	now   func() time.Time
	newID func() string
}

// NewService creates a new project Service.
func NewService(repo *Repository) *Service {
	return &Service{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// List returns the projects matching f and the total before pagination.
func (s *Service) List(ctx context.Context, f Filter) ([]Project, int, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, 0, err
	}

	tag := strings.ToLower(strings.TrimSpace(f.Tag))
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Project, 0, len(st.Projects))
	for _, p := range st.Projects {
		if !p.Published && !f.IncludeDrafts {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		if tag != "" && !hasTag(p, tag) {
			continue
		}
		if query != "" && !matches(p, query) {
			continue
		}
		out = append(out, p)
	}

	sortProjects(out, f.Sort)

	total := len(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = out[:0]
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

// Get returns the project with the given id or slug.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*Project, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := find(st.Projects, idOrSlug)
	if i < 0 {
		return nil, ErrNotFound
	}
	p := st.Projects[i]
	return &p, nil
}

// Create validates in and stores a new project.
func (s *Service) Create(ctx context.Context, in Input) (*Project, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	summary, err := validateSummary(in.Summary)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	media, err := validateMedia(in.Media)
	if err != nil {
		return nil, err
	}
	published := true
	if in.Published != nil {
		published = *in.Published
	}

	now := s.now()
	p := Project{
		ID:          s.newID(),
		Title:       title,
		Summary:     summary,
		Description: strings.TrimSpace(in.Description),
		Tags:        tags,
		Media:       media,
		Files:       []File{},
		Versions:    []Version{},
		Featured:    in.Featured,
		Published:   published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.Mutate(ctx, func(st *State) error {
		slug, err := pickSlug(st.Projects, p.ID, in.Slug, title)
		if err != nil {
			return err
		}
		p.Slug = slug
		st.Projects = append(st.Projects, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

// Update applies patch to the project with the given id.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Project, error) {
	var out Project
	err := s.repo.Mutate(ctx, func(st *State) error {
		i := find(st.Projects, id)
		if i < 0 {
			return ErrNotFound
		}
		p := st.Projects[i]

		if patch.Title != nil {
			title, err := validateTitle(*patch.Title)
			if err != nil {
				return err
			}
			p.Title = title
		}
		if patch.Slug != nil {
			slug, err := pickSlug(st.Projects, p.ID, *patch.Slug, p.Title)
			if err != nil {
				return err
			}
			p.Slug = slug
		}
		if patch.Summary != nil {
			summary, err := validateSummary(*patch.Summary)
			if err != nil {
				return err
			}
			p.Summary = summary
		}
		if patch.Description != nil {
			p.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Tags != nil {
			tags, err := normalizeTags(*patch.Tags)
			if err != nil {
				return err
			}
			p.Tags = tags
		}
		if patch.Media != nil {
			media, err := validateMedia(*patch.Media)
			if err != nil {
				return err
			}
			p.Media = media
		}
		if patch.Featured != nil {
			p.Featured = *patch.Featured
		}
		if patch.Published != nil {
			p.Published = *patch.Published
		}

		p.UpdatedAt = s.now()
		st.Projects[i] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &out, nil
}

// Delete removes a project. It returns the removed project and the files no
// remaining project references, so the caller can release their blobs.
func (s *Service) Delete(ctx context.Context, id string) (*Project, []File, error) {
	var (
		removed Project
		orphans []File
	)
	err := s.repo.Mutate(ctx, func(st *State) error {
		i := find(st.Projects, id)
		if i < 0 {
			return ErrNotFound
		}
		removed = st.Projects[i]
		st.Projects = append(st.Projects[:i:i], st.Projects[i+1:]...)
		delete(st.Favorites, removed.ID)
		orphans = unreferenced(st.Projects, projectFiles(removed))
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("delete project: %w", err)
	}
	return &removed, orphans, nil
}

// AttachFile adds f to the project's downloads. Attaching a file that is
// already there is a no-op.
func (s *Service) AttachFile(ctx context.Context, id string, f File) (*Project, error) {
	var out Project
	err := s.repo.Mutate(ctx, func(st *State) error {
		i := find(st.Projects, id)
		if i < 0 {
			return ErrNotFound
		}
		p := st.Projects[i]
		for _, existing := range p.Files {
			if existing.ID == f.ID {
				out = p
				return nil
			}
		}
		p.Files = append(p.Files, f)
		p.UpdatedAt = s.now()
		st.Projects[i] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("attach file: %w", err)
	}
	return &out, nil
}

// DetachFile removes a file from the project's downloads and from its
// versions. orphan is true when no project references the file any more.
func (s *Service) DetachFile(ctx context.Context, id, fileID string) (file File, orphan bool, err error) {
	err = s.repo.Mutate(ctx, func(st *State) error {
		i := find(st.Projects, id)
		if i < 0 {
			return ErrNotFound
		}
		p := st.Projects[i]

		found := false
		kept := p.Files[:0:0]
		for _, f := range p.Files {
			if f.ID == fileID {
				file, found = f, true
				continue
			}
			kept = append(kept, f)
		}
		if !found {
			return fmt.Errorf("%w: file %s is not attached", ErrNotFound, fileID)
		}
		p.Files = kept
		for vi, v := range p.Versions {
			vf := v.Files[:0:0]
			for _, f := range v.Files {
				if f.ID != fileID {
					vf = append(vf, f)
				}
			}
			p.Versions[vi].Files = vf
		}
		p.UpdatedAt = s.now()
		st.Projects[i] = p

		orphan = len(unreferenced(st.Projects, []File{file})) == 1
		return nil
	})
	if err != nil {
		return File{}, false, fmt.Errorf("detach file: %w", err)
	}
	return file, orphan, nil
}

// AddVersion records a release. Versions are kept newest first and a version
// string can only be used once per project. FileIDs must name files already
// attached to the project.
func (s *Service) AddVersion(ctx context.Context, id string, in VersionInput) (*Version, error) {
	version, err := validateVersion(in.Version)
	if err != nil {
		return nil, err
	}

	var out Version
	err = s.repo.Mutate(ctx, func(st *State) error {
		i := find(st.Projects, id)
		if i < 0 {
			return ErrNotFound
		}
		p := st.Projects[i]
		for _, v := range p.Versions {
			if strings.EqualFold(v.Version, version) {
				return fmt.Errorf("%w: version %s already exists", ErrConflict, version)
			}
		}

		files := make([]File, 0, len(in.FileIDs))
		for _, fid := range in.FileIDs {
			f, ok := fileByID(p.Files, fid)
			if !ok {
				return invalid("file %s is not attached to this project", fid)
			}
			files = append(files, f)
		}

		now := s.now()
		out = Version{
			Version:    version,
			Notes:      strings.TrimSpace(in.Notes),
			Files:      files,
			ReleasedAt: now,
		}
		p.Versions = append([]Version{out}, p.Versions...)
		p.UpdatedAt = now
		st.Projects[i] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add version: %w", err)
	}
	return &out, nil
}

// RecordDownload increments the project's download counter.
func (s *Service) RecordDownload(ctx context.Context, idOrSlug string) error {
	err := s.repo.Mutate(ctx, func(st *State) error {
		i := find(st.Projects, idOrSlug)
		if i < 0 {
			return ErrNotFound
		}
		st.Projects[i].Downloads++
		return nil
	})
	if err != nil {
		return fmt.Errorf("record download: %w", err)
	}
	return nil
}

// Favorite marks the project as a favorite of visitor. It returns the new
// favorite count and whether anything changed.
func (s *Service) Favorite(ctx context.Context, id, visitor string) (int, bool, error) {
	return s.setFavorite(ctx, id, visitor, true)
}

// Unfavorite removes visitor's favorite mark from the project.
func (s *Service) Unfavorite(ctx context.Context, id, visitor string) (int, bool, error) {
	return s.setFavorite(ctx, id, visitor, false)
}

func (s *Service) setFavorite(ctx context.Context, id, visitor string, on bool) (int, bool, error) {
	if visitor == "" {
		return 0, false, invalid("visitor id is required")
	}
	var (
		count   int
		changed bool
	)
	err := s.repo.Mutate(ctx, func(st *State) error {
		i := find(st.Projects, id)
		if i < 0 || !st.Projects[i].Published {
			return ErrNotFound
		}
		pid := st.Projects[i].ID
		visitors := st.Favorites[pid]
		at := indexOf(visitors, visitor)
		switch {
		case on && at < 0:
			visitors = append(visitors, visitor)
			changed = true
		case !on && at >= 0:
			visitors = append(visitors[:at:at], visitors[at+1:]...)
			changed = true
		}
		if len(visitors) == 0 {
			delete(st.Favorites, pid)
		} else {
			st.Favorites[pid] = visitors
		}
		st.Projects[i].Favorites = len(visitors)
		count = len(visitors)
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("favorite: %w", err)
	}
	return count, changed, nil
}

// FavoritesOf lists the published projects visitor has favorited.
func (s *Service) FavoritesOf(ctx context.Context, visitor string) ([]Project, error) {
	if visitor == "" {
		return nil, invalid("visitor id is required")
	}
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []Project{}
	for _, p := range st.Projects {
		if p.Published && indexOf(st.Favorites[p.ID], visitor) >= 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

// Tags counts tags across published projects, most used first.
func (s *Service) Tags(ctx context.Context) ([]TagCount, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range st.Projects {
		if !p.Published {
			continue
		}
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TagCount{Tag: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

// Files returns every distinct file referenced by any project, for rebuilding
// the file index at startup.
func (s *Service) Files(ctx context.Context) ([]filedex.Entry, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []filedex.Entry
	for _, p := range st.Projects {
		for _, f := range projectFiles(p) {
			if seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			out = append(out, f.Entry())
		}
	}
	return out, nil
}

// FileVisible reports whether visitors may fetch the file: it is attached to
// no project, or to at least one published project.
func (s *Service) FileVisible(ctx context.Context, fileID string) (bool, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	referenced := false
	for _, p := range st.Projects {
		if _, ok := fileByID(projectFiles(p), fileID); !ok {
			continue
		}
		if p.Published {
			return true, nil
		}
		referenced = true
	}
	return !referenced, nil
}

// Export returns the full project list.
func (s *Service) Export(ctx context.Context) ([]Project, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return st.Projects, nil
}

// Import replaces the stored projects with projects after checking that ids
// and slugs are present and unique.
func (s *Service) Import(ctx context.Context, projects []Project) error {
	ids, slugs := map[string]bool{}, map[string]bool{}
	for i, p := range projects {
		if p.ID == "" || p.Slug == "" {
			return invalid("project %d: id and slug are required", i)
		}
		if ids[p.ID] || slugs[p.Slug] {
			return fmt.Errorf("%w: duplicate id or slug in project %d", ErrConflict, i)
		}
		ids[p.ID], slugs[p.Slug] = true, true
		if _, err := validateTitle(p.Title); err != nil {
			return fmt.Errorf("project %d: %w", i, err)
		}
	}
	if projects == nil {
		projects = []Project{}
	}
	return s.repo.Replace(ctx, projects)
}

// IsNotFound returns true when the error indicates a missing project or file.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func find(projects []Project, idOrSlug string) int {
	for i, p := range projects {
		if p.ID == idOrSlug {
			return i
		}
	}
	for i, p := range projects {
		if p.Slug == idOrSlug {
			return i
		}
	}
	return -1
}

// pickSlug returns a free slug for project id. An explicitly requested slug
// must be free; a derived one gets a numeric suffix when taken.
func pickSlug(projects []Project, id, requested, title string) (string, error) {
	taken := func(slug string) bool {
		for _, p := range projects {
			if p.ID != id && p.Slug == slug {
				return true
			}
		}
		return false
	}

	if requested = strings.TrimSpace(requested); requested != "" {
		slug := filedex.SlugifyTitle(requested)
		if slug == "" {
			return "", invalid("slug must contain letters or digits")
		}
		if taken(slug) {
			return "", fmt.Errorf("%w: slug %q is already used", ErrConflict, slug)
		}
		return slug, nil
	}

	slug := filedex.SlugifyTitle(title)
	if slug == "" {
		slug = "project"
	}
	return filedex.Unique(slug, taken), nil
}

func hasTag(p Project, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func matches(p Project, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Summary), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(t, query) {
			return true
		}
	}
	return false
}

func sortProjects(ps []Project, order string) {
	switch order {
	case SortPopular:
		sort.SliceStable(ps, func(i, j int) bool {
			si := ps[i].Downloads + int64(ps[i].Favorites)
			sj := ps[j].Downloads + int64(ps[j].Favorites)
			if si != sj {
				return si > sj
			}
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		})
	case SortTitle:
		sort.SliceStable(ps, func(i, j int) bool {
			return strings.ToLower(ps[i].Title) < strings.ToLower(ps[j].Title)
		})
	default:
		// Featured projects lead the default listing.
		sort.SliceStable(ps, func(i, j int) bool {
			if ps[i].Featured != ps[j].Featured {
				return ps[i].Featured
			}
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		})
	}
}

// projectFiles returns the project's files and version files, deduplicated by id.
func projectFiles(p Project) []File {
	seen := map[string]bool{}
	var out []File
	add := func(f File) {
		if !seen[f.ID] {
			seen[f.ID] = true
			out = append(out, f)
		}
	}
	for _, f := range p.Files {
		add(f)
	}
	for _, v := range p.Versions {
		for _, f := range v.Files {
			add(f)
		}
	}
	return out
}

// unreferenced returns the files in candidates that no project in projects uses.
func unreferenced(projects []Project, candidates []File) []File {
	used := map[string]bool{}
	for _, p := range projects {
		for _, f := range projectFiles(p) {
			used[f.ID] = true
		}
	}
	var out []File
	for _, f := range candidates {
		if !used[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

func fileByID(files []File, id string) (File, bool) {
	for _, f := range files {
		if f.ID == id {
			return f, true
		}
	}
	return File{}, false
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
