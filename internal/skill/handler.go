package skill

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/devfolio/service/internal/response"
)

// Handler holds HTTP handlers for skill endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a new skill Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type skillRequest struct {
	Category string   `json:"category" example:"Backend"`
	Icon     string   `json:"icon"     example:"server"`
	Items    []string `json:"items"    example:"Go,PostgreSQL"`
}

// List godoc
//
//	@Summary	List skills
//	@Tags		skills
//	@Produce	json
//	@Success	200	{object}	response.Envelope{data=[]Skill}
//	@Failure	500	{object}	response.Envelope
//	@Router		/skills [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	skills, err := h.repo.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, skills)
}

// Create godoc
//
//	@Summary	Create a skill category
//	@Tags		skills
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		skillRequest	true	"Skill fields"
//	@Success	201		{object}	response.Envelope{data=Skill}
//	@Failure	400		{object}	response.Envelope
//	@Failure	500		{object}	response.Envelope
//	@Router		/skills [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSkill(w, r)
	if !ok {
		return
	}

	s, err := h.repo.Create(r.Context(), req)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, s)
}

// Update godoc
//
//	@Summary	Update a skill category
//	@Tags		skills
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		skillID	path		string			true	"Skill UUID"
//	@Param		request	body		skillRequest	true	"Skill fields"
//	@Success	200		{object}	response.Envelope{data=Skill}
//	@Failure	400		{object}	response.Envelope
//	@Failure	404		{object}	response.Envelope
//	@Router		/skills/{skillID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSkill(w, r)
	if !ok {
		return
	}

	s, err := h.repo.Update(r.Context(), chi.URLParam(r, "skillID"), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "skill not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, s)
}

// Delete godoc
//
//	@Summary	Delete a skill category
//	@Tags		skills
//	@Security	BearerAuth
//	@Param		skillID	path	string	true	"Skill UUID"
//	@Success	204
//	@Failure	404	{object}	response.Envelope
//	@Router		/skills/{skillID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "skillID")); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "skill not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

func decodeSkill(w http.ResponseWriter, r *http.Request) (*Skill, bool) {
	var req skillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return nil, false
	}
	if strings.TrimSpace(req.Category) == "" {
		response.BadRequest(w, "category is required")
		return nil, false
	}
	items := req.Items
	if items == nil {
		items = []string{}
	}
	return &Skill{Category: strings.TrimSpace(req.Category), Icon: req.Icon, Items: items}, true
}
