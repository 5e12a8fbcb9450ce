package upload

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uploadhub/service/internal/middleware"
	"github.com/uploadhub/service/internal/response"
)

// maxUploadBytes caps a single upload request body.
const maxUploadBytes = 32 << 20

// Handler holds HTTP handlers for upload endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new upload Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the upload endpoints on a router that already carries the
// auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List godoc
//
//	@Summary		List uploads
//	@Description	Returns all upload records.
//	@Tags			uploads
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]Upload}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/uploads [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if middleware.UserID(r.Context()) == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	uploads, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, uploads)
}

// Get godoc
//
//	@Summary		Get one upload
//	@Description	Returns a single upload record by id.
//	@Tags			uploads
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Upload ID"
//	@Success		200	{object}	response.Envelope{data=Upload}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/uploads/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if middleware.UserID(r.Context()) == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "upload not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, u)
}

// Create godoc
//
//	@Summary		Create an upload
//	@Description	Accepts a multipart form with a "file" part, stores the bytes in the object store, and persists the resulting record.
//	@Tags			uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"File to upload"
//	@Success		201		{object}	response.Envelope{data=Upload}
//	@Failure		401		{object}	response.Envelope
//	@Failure		422		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/uploads [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principalID := middleware.UserID(r.Context())
	if principalID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		response.UnprocessableEntity(w, `multipart "file" field is required`)
		return
	}
	defer file.Close()

	created, err := h.svc.Create(r.Context(), principalID, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, created)
}

// Update godoc
//
//	@Summary		Patch an upload
//	@Description	Applies a partial update to an upload the caller owns. A client-supplied owner field is ignored.
//	@Tags			uploads
//	@Accept			json
//	@Security		BearerAuth
//	@Param			id		path	string	true	"Upload ID"
//	@Param			request	body	Patch	true	"Fields to change"
//	@Success		204
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		422	{object}	response.Envelope
//	@Router			/uploads/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principalID := middleware.UserID(r.Context())
	if principalID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	// Decoding into Patch drops any owner key the client sent: ownership is
	// never reassignable through this endpoint.
	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), principalID, patch); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// Delete godoc
//
//	@Summary		Delete an upload
//	@Description	Deletes an upload the caller owns.
//	@Tags			uploads
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Upload ID"
//	@Success		204
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/uploads/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principalID := middleware.UserID(r.Context())
	if principalID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), principalID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// writeServiceError maps service errors to HTTP status codes. Unclassified
// errors become a generic 500 with no internal detail leaked.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "upload not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "you do not own this upload")
	case errors.Is(err, ErrUploadFailed):
		response.BadGateway(w, "object store upload failed")
	case errors.As(err, &vErr):
		response.UnprocessableEntity(w, vErr.Error())
	default:
		response.InternalError(w)
	}
}
