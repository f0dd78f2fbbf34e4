package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	"github.com/ecolearn/ecolearn-api/internal/service"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/response"
)

type courseService interface {
	Create(ctx context.Context, actor policy.Actor, req models.CreateCourseRequest) (*models.Course, error)
	List(ctx context.Context, actor policy.Actor) ([]models.Course, error)
	Get(ctx context.Context, actor policy.Actor, id string) (*models.Course, error)
	Enroll(ctx context.Context, actor policy.Actor, courseID string) error
	AddMaterial(ctx context.Context, actor policy.Actor, courseID string, req models.AddMaterialRequest, upload service.MaterialUpload) (*models.Material, error)
	ListMaterials(ctx context.Context, actor policy.Actor, courseID string) ([]models.Material, error)
	GetMaterial(ctx context.Context, id string) (*models.Material, error)
	Summaries(ctx context.Context) ([]models.CourseSummary, error)
}

type materialFileService interface {
	Store(prefix string, header *multipart.FileHeader) (string, error)
	SignedToken(prefix, fileID string) (string, time.Time, error)
}

// CourseHandler exposes course, enrollment and material endpoints.
type CourseHandler struct {
	service courseService
	files   materialFileService
	actors  actorResolver
}

// NewCourseHandler builds a new handler.
func NewCourseHandler(service courseService, files materialFileService, actors actorResolver) *CourseHandler {
	return &CourseHandler{service: service, files: files, actors: actors}
}

// Create godoc
// @Summary Create a course (starts unapproved)
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body models.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// List godoc
// @Summary List courses visible to the caller
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	courses, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get one course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	course, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Enroll godoc
// @Summary Enroll the authenticated student into a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	if err := h.service.Enroll(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddMaterial godoc
// @Summary Upload a material into a course
// @Tags Courses
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Param type formData string true "Material type (pdf, video, article, book)"
// @Param title formData string true "Material title"
// @Param description formData string false "Material description"
// @Param file formData file true "Material file"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/materials [post]
func (h *CourseHandler) AddMaterial(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	var req models.AddMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid material payload"))
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "material file is required"))
		return
	}
	fileID, err := h.files.Store("materials", header)
	if err != nil {
		response.Error(c, err)
		return
	}
	upload := service.MaterialUpload{
		FileID:      fileID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
	material, err := h.service.AddMaterial(c.Request.Context(), actor, c.Param("id"), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

// ListMaterials godoc
// @Summary List materials of a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/materials [get]
func (h *CourseHandler) ListMaterials(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	materials, err := h.service.ListMaterials(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, nil)
}

// MaterialLink godoc
// @Summary Issue a time-limited download link for a material
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Param materialId path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/materials/{materialId}/link [get]
func (h *CourseHandler) MaterialLink(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	// Reuses the listing access check so students must be enrolled.
	if _, err := h.service.ListMaterials(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	material, err := h.service.GetMaterial(c.Request.Context(), c.Param("materialId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	token, expiresAt, err := h.files.SignedToken("materials", material.FileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"url":        "/files/" + token,
		"expires_at": expiresAt,
		"filename":   material.Filename,
	}, nil)
}

// Summaries godoc
// @Summary Admin content overview per course
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/courses/summary [get]
func (h *CourseHandler) Summaries(c *gin.Context) {
	summaries, err := h.service.Summaries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}
