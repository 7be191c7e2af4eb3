package image

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devfolio/service/internal/response"
)

// maxUploadBody caps the multipart request body: the largest bucket policy
// plus headroom for the form framing.
const maxUploadBody = (10 << 20) + (1 << 20)

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new image Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload godoc
//
//	@Summary		Upload a project image
//	@Description	Uploads an image to object storage and links it to the project. The optional "bucket" form field defaults to portfolio-images.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			projectID	path		string	true	"Project UUID"
//	@Param			file		formData	file	true	"Image file"
//	@Param			bucket		formData	string	false	"Target bucket"
//	@Success		201			{object}	response.Envelope{data=Record}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		413			{object}	response.Envelope
//	@Failure		502			{object}	response.Envelope
//	@Router			/projects/{projectID}/images [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "projectID")

	f, bucket, ok := h.fileFromRequest(w, r)
	if !ok {
		return
	}
	defer f.Close()

	rec, err := h.svc.Upload(r.Context(), ownerID, bucket, f)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, rec)
}

// Replace godoc
//
//	@Summary		Replace a project image
//	@Description	Uploads a new image and, only on success, removes the replaced record and its object.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			projectID	path		string	true	"Project UUID"
//	@Param			imageID		path		string	true	"Image record UUID to replace"
//	@Param			file		formData	file	true	"New image file"
//	@Param			bucket		formData	string	false	"Target bucket"
//	@Success		201			{object}	response.Envelope{data=Record}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		413			{object}	response.Envelope
//	@Failure		502			{object}	response.Envelope
//	@Router			/projects/{projectID}/images/{imageID} [put]
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "projectID")
	imageID := chi.URLParam(r, "imageID")

	old, err := h.svc.records.GetByID(r.Context(), imageID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if old.OwnerID != ownerID {
		response.NotFound(w, "image does not belong to this project")
		return
	}

	f, bucket, ok := h.fileFromRequest(w, r)
	if !ok {
		return
	}
	defer f.Close()

	rec, err := h.svc.Replace(r.Context(), old, ownerID, bucket, f)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, rec)
}

// List godoc
//
//	@Summary		List project images
//	@Description	Returns the project's image records, newest first.
//	@Tags			images
//	@Produce		json
//	@Param			projectID	path		string	true	"Project UUID"
//	@Success		200			{object}	response.Envelope{data=[]Record}
//	@Failure		500			{object}	response.Envelope
//	@Router			/projects/{projectID}/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListByOwner(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, records)
}

// Delete godoc
//
//	@Summary		Delete an image
//	@Description	Removes the image record, then the stored object.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			imageID	path	string	true	"Image record UUID"
//	@Success		204
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/images/{imageID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), chi.URLParam(r, "imageID")); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// fileFromRequest extracts the multipart file and target bucket. On failure
// it writes the error response and returns ok=false.
func (h *Handler) fileFromRequest(w http.ResponseWriter, r *http.Request) (File, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.ErrorCode(w, http.StatusRequestEntityTooLarge, CodeFileTooLarge, "request body too large")
			return File{}, "", false
		}
		response.ErrorCode(w, http.StatusBadRequest, CodeNoFile, "no file provided")
		return File{}, "", false
	}

	bucket := r.FormValue("bucket")
	if bucket == "" {
		bucket = BucketPortfolio
	}

	return File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, bucket, true
}

// writeError maps pipeline errors to HTTP responses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if e, ok := AsError(err); ok {
		switch e.Code {
		case CodeNoFile, CodeInvalidFileType:
			response.ErrorCode(w, http.StatusBadRequest, e.Code, e.Message)
		case CodeFileTooLarge:
			response.ErrorCode(w, http.StatusRequestEntityTooLarge, e.Code, e.Message)
		case CodeOwnerNotFound:
			response.ErrorCode(w, http.StatusNotFound, e.Code, e.Message)
		case CodeStoreFailed, CodeRecordFailed:
			response.ErrorCode(w, http.StatusBadGateway, e.Code, e.Message)
		default:
			response.InternalError(w)
		}
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "image not found")
	case errors.Is(err, ErrUnknownBucket):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
