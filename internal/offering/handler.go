package offering

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/devfolio/service/internal/response"
)

// Handler holds HTTP handlers for offering endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a new offering Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type offeringRequest struct {
	Title        string   `json:"title"        example:"Web Development"`
	Description  string   `json:"description"  example:"Full-stack web applications"`
	Icon         string   `json:"icon"         example:"code"`
	BulletPoints []string `json:"bulletPoints" example:"APIs,Databases"`
}

// List godoc
//
//	@Summary	List services offered
//	@Tags		services
//	@Produce	json
//	@Success	200	{object}	response.Envelope{data=[]Offering}
//	@Failure	500	{object}	response.Envelope
//	@Router		/services [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offerings, err := h.repo.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, offerings)
}

// Create godoc
//
//	@Summary	Create a service card
//	@Tags		services
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		offeringRequest	true	"Service fields"
//	@Success	201		{object}	response.Envelope{data=Offering}
//	@Failure	400		{object}	response.Envelope
//	@Failure	500		{object}	response.Envelope
//	@Router		/services [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOffering(w, r)
	if !ok {
		return
	}

	o, err := h.repo.Create(r.Context(), req)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, o)
}

// Update godoc
//
//	@Summary	Update a service card
//	@Tags		services
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		serviceID	path		string			true	"Service UUID"
//	@Param		request		body		offeringRequest	true	"Service fields"
//	@Success	200			{object}	response.Envelope{data=Offering}
//	@Failure	400			{object}	response.Envelope
//	@Failure	404			{object}	response.Envelope
//	@Router		/services/{serviceID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOffering(w, r)
	if !ok {
		return
	}

	o, err := h.repo.Update(r.Context(), chi.URLParam(r, "serviceID"), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "service not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, o)
}

// Delete godoc
//
//	@Summary	Delete a service card
//	@Tags		services
//	@Security	BearerAuth
//	@Param		serviceID	path	string	true	"Service UUID"
//	@Success	204
//	@Failure	404	{object}	response.Envelope
//	@Router		/services/{serviceID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "serviceID")); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "service not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

func decodeOffering(w http.ResponseWriter, r *http.Request) (*Offering, bool) {
	var req offeringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return nil, false
	}
	if strings.TrimSpace(req.Title) == "" {
		response.BadRequest(w, "title is required")
		return nil, false
	}
	points := req.BulletPoints
	if points == nil {
		points = []string{}
	}
	return &Offering{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Icon:         req.Icon,
		BulletPoints: points,
	}, true
}
