package file

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/showcase/service/internal/middleware"
	"github.com/showcase/service/internal/response"
)

// Parts larger than this spill to temporary files while parsing.
const formMemory = 8 << 20

// Handler holds HTTP handlers for file endpoints.
type Handler struct {
	svc      *Service
	maxBytes int64
}

// NewHandler creates a new file Handler. Uploads larger than maxBytes are
// rejected.
func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores a file unless identical content is already stored, in which case the existing record is returned with duplicate=true.
//	@Tags			files
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"File to upload"
//	@Param			project	formData	string	false	"Project id or slug to attach the file to"
//	@Success		200		{object}	response.Envelope{data=Result}	"Duplicate content"
//	@Success		201		{object}	response.Envelope{data=Result}	"New content"
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/files [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "file is too large")
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file field is required")
		return
	}
	defer f.Close()

	res, err := h.svc.Upload(r.Context(), Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        f,
		Project:     r.FormValue("project"),
	})
	switch {
	case errors.Is(err, ErrEmpty):
		response.BadRequest(w, err.Error())
		return
	case err != nil && h.svc.IsNotFound(err):
		response.NotFound(w, "project not found")
		return
	case err != nil:
		log.Error().Err(err).Str("name", header.Filename).Msg("upload failed")
		response.InternalError(w)
		return
	}

	if res.Duplicate {
		response.OK(w, res)
		return
	}
	response.Created(w, res)
}

// Download godoc
//
//	@Summary		Download a file
//	@Description	Redirects to the blob URL. The identifier may be the file id, its slug or the original filename.
//	@Tags			files
//	@Param			identifier	path	string	true	"File id, slug or filename"
//	@Param			project		query	string	false	"Project to count the download for"
//	@Success		302
//	@Failure		404	{object}	response.Envelope
//	@Router			/files/{identifier} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Download(r.Context(), chi.URLParam(r, "identifier"), r.URL.Query().Get("project"), middleware.IsOperator(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, f.URL, http.StatusFound)
}

// Meta godoc
//
//	@Summary		Get file metadata
//	@Tags			files
//	@Produce		json
//	@Param			identifier	path		string	true	"File id, slug or filename"
//	@Success		200			{object}	response.Envelope{data=project.File}
//	@Failure		404			{object}	response.Envelope
//	@Router			/files/{identifier}/meta [get]
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Meta(r.Context(), chi.URLParam(r, "identifier"), middleware.IsOperator(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, f)
}

// List godoc
//
//	@Summary		List stored files
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]project.File}
//	@Failure		401	{object}	response.Envelope
//	@Router			/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.svc.List())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if h.svc.IsNotFound(err) {
		response.NotFound(w, "file not found")
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("file request failed")
	response.InternalError(w)
}
