package settings

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devfolio/service/internal/image"
	"github.com/devfolio/service/internal/response"
)

// maxPhotoBody caps the profile-photo request body: the profile-photos
// policy cap plus form framing headroom.
const maxPhotoBody = (5 << 20) + (1 << 20)

// Handler holds HTTP handlers for settings endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new settings Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List godoc
//
//	@Summary	List all site settings
//	@Tags		settings
//	@Produce	json
//	@Success	200	{object}	response.Envelope{data=[]Setting}
//	@Failure	500	{object}	response.Envelope
//	@Router		/settings [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, settings)
}

// Get godoc
//
//	@Summary	Get one setting
//	@Tags		settings
//	@Produce	json
//	@Param		key	path		string	true	"Setting key"	Enums(theme, about, contact, profile_photo)
//	@Success	200	{object}	response.Envelope{data=Setting}
//	@Failure	400	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/settings/{key} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownKey):
			response.BadRequest(w, "unknown setting key")
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "setting not set")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, s)
}

// Put godoc
//
//	@Summary		Update one setting
//	@Description	Stores the request body as the setting's JSON value. The profile_photo key is read-only here; use the photo upload endpoint.
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			key		path		string	true	"Setting key"	Enums(theme, about, contact)
//	@Param			value	body		object	true	"Setting value"
//	@Success		200		{object}	response.Envelope{data=Setting}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/settings/{key} [put]
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || !json.Valid(body) {
		response.BadRequest(w, "request body must be valid JSON")
		return
	}

	s, err := h.svc.Put(r.Context(), chi.URLParam(r, "key"), body)
	if err != nil {
		if errors.Is(err, ErrUnknownKey) {
			response.BadRequest(w, "unknown or read-only setting key")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, s)
}

// UploadProfilePhoto godoc
//
//	@Summary		Upload the profile photo
//	@Description	Uploads a new profile photo to the profile-photos bucket, updates the profile_photo setting, and removes the previous photo.
//	@Tags			settings
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Photo file"
//	@Success		200		{object}	response.Envelope{data=ProfilePhoto}
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/settings/profile-photo [post]
func (h *Handler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBody)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.ErrorCode(w, http.StatusRequestEntityTooLarge, image.CodeFileTooLarge, "request body too large")
			return
		}
		response.ErrorCode(w, http.StatusBadRequest, image.CodeNoFile, "no file provided")
		return
	}
	defer file.Close()

	photo, err := h.svc.UpdateProfilePhoto(r.Context(), image.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		if e, ok := image.AsError(err); ok {
			switch e.Code {
			case image.CodeNoFile, image.CodeInvalidFileType:
				response.ErrorCode(w, http.StatusBadRequest, e.Code, e.Message)
			case image.CodeFileTooLarge:
				response.ErrorCode(w, http.StatusRequestEntityTooLarge, e.Code, e.Message)
			default:
				response.ErrorCode(w, http.StatusBadGateway, e.Code, e.Message)
			}
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, photo)
}
