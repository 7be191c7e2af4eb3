package project

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/devfolio/service/internal/response"
)

// Handler holds HTTP handlers for project endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new project Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type projectRequest struct {
	Title        string   `json:"title"        example:"Portfolio Site"`
	Description  string   `json:"description"  example:"Personal portfolio built with Go"`
	Technologies []string `json:"technologies" example:"go,postgres"`
	GithubURL    string   `json:"githubUrl"    example:"https://github.com/me/portfolio"`
	LiveURL      *string  `json:"liveUrl,omitempty" example:"https://me.dev"`
}

func (req *projectRequest) toProject() *Project {
	techs := req.Technologies
	if techs == nil {
		techs = []string{}
	}
	return &Project{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Technologies: techs,
		GithubURL:    req.GithubURL,
		LiveURL:      req.LiveURL,
	}
}

// List godoc
//
//	@Summary		List projects
//	@Description	Returns all portfolio projects, newest first.
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]Project}
//	@Failure		500	{object}	response.Envelope
//	@Router			/projects [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, projects)
}

// Get godoc
//
//	@Summary		Get a project
//	@Tags			projects
//	@Produce		json
//	@Param			projectID	path		string	true	"Project UUID"
//	@Success		200			{object}	response.Envelope{data=Project}
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/projects/{projectID} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "project not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Create godoc
//
//	@Summary		Create a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		projectRequest	true	"Project fields"
//	@Success		201		{object}	response.Envelope{data=Project}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/projects [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		response.BadRequest(w, "title is required")
		return
	}

	p, err := h.svc.Create(r.Context(), req.toProject())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, p)
}

// Update godoc
//
//	@Summary		Update a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			projectID	path		string			true	"Project UUID"
//	@Param			request		body		projectRequest	true	"Project fields"
//	@Success		200			{object}	response.Envelope{data=Project}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/projects/{projectID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		response.BadRequest(w, "title is required")
		return
	}

	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "projectID"), req.toProject())
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "project not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete a project
//	@Description	Removes the project, its image records, and the stored objects.
//	@Tags			projects
//	@Produce		json
//	@Security		BearerAuth
//	@Param			projectID	path	string	true	"Project UUID"
//	@Success		204
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/projects/{projectID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "project not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}
