package project

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/showcase/service/internal/middleware"
	"github.com/showcase/service/internal/response"
	"github.com/showcase/service/internal/telemetry"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// FileReleaser deletes the blobs of files no project uses any more.
type FileReleaser interface {
	Release(ctx context.Context, files []File) error
}

// Handler holds HTTP handlers for project endpoints.
type Handler struct {
	svc     *Service
	files   FileReleaser
	metrics *telemetry.Metrics
}

// NewHandler creates a new project Handler. files and metrics may be nil.
func NewHandler(svc *Service, files FileReleaser, metrics *telemetry.Metrics) *Handler {
	return &Handler{svc: svc, files: files, metrics: metrics}
}

// FavoriteResult is returned by the favorite endpoints.
type FavoriteResult struct {
	Favorites int  `json:"favorites"`
	Favorited bool `json:"favorited"`
}

// List godoc
//
//	@Summary		List projects
//	@Description	Returns published projects. Drafts are included for the operator.
//	@Tags			projects
//	@Produce		json
//	@Param			tag			query		string	false	"Filter by tag"
//	@Param			q			query		string	false	"Search title, summary, description and tags"
//	@Param			featured	query		bool	false	"Only featured (true) or non-featured (false) projects"
//	@Param			sort		query		string	false	"recent, popular or title"
//	@Param			limit		query		int		false	"Page size (max 100)"
//	@Param			offset		query		int		false	"Items to skip"
//	@Success		200			{object}	response.Envelope{data=[]Project,meta=response.Meta}
//	@Failure		400			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/projects [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Tag:           q.Get("tag"),
		Query:         q.Get("q"),
		Sort:          q.Get("sort"),
		IncludeDrafts: middleware.IsOperator(r.Context()),
		Limit:         defaultLimit,
	}
	switch f.Sort {
	case "", SortRecent, SortPopular, SortTitle:
	default:
		response.BadRequest(w, "sort must be one of recent, popular, title")
		return
	}
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "featured must be true or false")
			return
		}
		f.Featured = &b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.BadRequest(w, "limit must be a positive integer")
			return
		}
		f.Limit = min(n, maxLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(w, "offset must be a non-negative integer")
			return
		}
		f.Offset = n
	}

	items, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Page(w, items, response.Meta{Total: total, Limit: f.Limit, Offset: f.Offset})
}

// Get godoc
//
//	@Summary		Get a project
//	@Description	Looks a project up by id or slug.
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project id or slug"
//	@Success		200			{object}	response.Envelope{data=Project}
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/projects/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.visible(r, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, p)
}

// Versions godoc
//
//	@Summary		List project versions
//	@Description	Returns the release history, newest first.
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project id or slug"
//	@Success		200	{object}	response.Envelope{data=[]Version}
//	@Failure		404	{object}	response.Envelope
//	@Router			/projects/{id}/versions [get]
func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	p, err := h.visible(r, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, p.Versions)
}

// Create godoc
//
//	@Summary		Create a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		Input	true	"Project"
//	@Success		201		{object}	response.Envelope{data=Project}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/projects [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("project", p.ID).Str("slug", p.Slug).Msg("project created")
	response.Created(w, p)
}

// Update godoc
//
//	@Summary		Update a project
//	@Description	Applies a partial update. Omitted fields are left unchanged.
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Project id or slug"
//	@Param			body	body		Patch	true	"Fields to change"
//	@Success		200		{object}	response.Envelope{data=Project}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/projects/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete a project
//	@Description	Removes the project and the blobs of files no other project uses.
//	@Tags			projects
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Project id or slug"
//	@Success		204
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/projects/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, orphans, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.release(r, orphans)
	zerolog.Ctx(r.Context()).Info().Str("project", p.ID).Int("released", len(orphans)).Msg("project deleted")
	response.NoContent(w)
}

// AddVersion godoc
//
//	@Summary		Add a version
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Project id or slug"
//	@Param			body	body		VersionInput	true	"Version"
//	@Success		201		{object}	response.Envelope{data=Version}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/projects/{id}/versions [post]
func (h *Handler) AddVersion(w http.ResponseWriter, r *http.Request) {
	var in VersionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	v, err := h.svc.AddVersion(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, v)
}

// DetachFile godoc
//
//	@Summary		Remove a file from a project
//	@Tags			projects
//	@Security		BearerAuth
//	@Param			id		path	string	true	"Project id or slug"
//	@Param			fileID	path	string	true	"File id"
//	@Success		204
//	@Failure		404	{object}	response.Envelope
//	@Router			/projects/{id}/files/{fileID} [delete]
func (h *Handler) DetachFile(w http.ResponseWriter, r *http.Request) {
	f, orphan, err := h.svc.DetachFile(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "fileID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if orphan {
		h.release(r, []File{f})
	}
	response.NoContent(w)
}

// Favorite godoc
//
//	@Summary		Favorite a project
//	@Description	Idempotent per visitor. The visitor is identified by the X-Visitor-ID header.
//	@Tags			favorites
//	@Produce		json
//	@Param			id				path		string	true	"Project id or slug"
//	@Param			X-Visitor-ID	header		string	true	"Visitor id"
//	@Success		200				{object}	response.Envelope{data=FavoriteResult}
//	@Failure		400				{object}	response.Envelope
//	@Failure		404				{object}	response.Envelope
//	@Router			/projects/{id}/favorite [post]
func (h *Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, true)
}

// Unfavorite godoc
//
//	@Summary		Remove a favorite
//	@Tags			favorites
//	@Produce		json
//	@Param			id				path		string	true	"Project id or slug"
//	@Param			X-Visitor-ID	header		string	true	"Visitor id"
//	@Success		200				{object}	response.Envelope{data=FavoriteResult}
//	@Failure		400				{object}	response.Envelope
//	@Failure		404				{object}	response.Envelope
//	@Router			/projects/{id}/favorite [delete]
func (h *Handler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, false)
}

func (h *Handler) setFavorite(w http.ResponseWriter, r *http.Request, on bool) {
	visitor := middleware.VisitorID(r)
	if visitor == "" {
		response.BadRequest(w, "a valid "+middleware.VisitorHeader+" header is required")
		return
	}

	id := chi.URLParam(r, "id")
	var (
		count   int
		changed bool
		err     error
	)
	if on {
		count, changed, err = h.svc.Favorite(r.Context(), id, visitor)
	} else {
		count, changed, err = h.svc.Unfavorite(r.Context(), id, visitor)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if changed {
		delta := int64(1)
		if !on {
			delta = -1
		}
		h.metrics.Favorite(r.Context(), delta)
	}
	response.OK(w, FavoriteResult{Favorites: count, Favorited: on})
}

// Favorites godoc
//
//	@Summary		List a visitor's favorites
//	@Tags			favorites
//	@Produce		json
//	@Param			X-Visitor-ID	header		string	true	"Visitor id"
//	@Success		200				{object}	response.Envelope{data=[]Project}
//	@Failure		400				{object}	response.Envelope
//	@Router			/favorites [get]
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r)
	if visitor == "" {
		response.BadRequest(w, "a valid "+middleware.VisitorHeader+" header is required")
		return
	}
	items, err := h.svc.FavoritesOf(r.Context(), visitor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, items)
}

// Tags godoc
//
//	@Summary		List tags
//	@Description	Tags of published projects with usage counts, most used first.
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]TagCount}
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, tags)
}

// visible returns the project unless it is a draft and the caller is not the
// operator, in which case it reports not found.
func (h *Handler) visible(r *http.Request, idOrSlug string) (*Project, error) {
	p, err := h.svc.Get(r.Context(), idOrSlug)
	if err != nil {
		return nil, err
	}
	if !p.Published && !middleware.IsOperator(r.Context()) {
		return nil, ErrNotFound
	}
	return p, nil
}

func (h *Handler) release(r *http.Request, files []File) {
	if h.files == nil || len(files) == 0 {
		return
	}
	if err := h.files.Release(r.Context(), files); err != nil {
		// The project change is already saved; a leftover blob is only wasted space.
		zerolog.Ctx(r.Context()).Warn().Err(err).Int("files", len(files)).Msg("release file blobs")
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "project not found")
	case errors.Is(err, ErrConflict):
		response.Conflict(w, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("project request failed")
		response.InternalError(w)
	}
}
