package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/service"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/response"
)

type userService interface {
	Me(ctx context.Context, userID string) (*service.Profile, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	SelectTeachers(ctx context.Context, studentID string, req models.SelectTeachersRequest) error
	ListTeachers(ctx context.Context, approvedOnly bool) ([]models.TeacherProfileDetail, error)
	UpdateTeacherProfile(ctx context.Context, userID string, req models.UpdateTeacherProfileRequest) (*models.TeacherProfile, error)
	AttachResume(ctx context.Context, userID, fileID string) error
}

type resumeStore interface {
	Store(prefix string, header *multipart.FileHeader) (string, error)
}

// UserHandler exposes profile and account management endpoints.
type UserHandler struct {
	service userService
	files   resumeStore
}

// NewUserHandler builds a new handler.
func NewUserHandler(service userService, files resumeStore) *UserHandler {
	return &UserHandler{service: service, files: files}
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	profile, err := h.service.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// List godoc
// @Summary List user accounts
// @Tags Users
// @Produce json
// @Param role query string false "Role filter (ADMIN, TEACHER, STUDENT)"
// @Param search query string false "Name or email search"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		Search: c.Query("search"),
	}
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("pageSize")); err == nil {
		filter.PageSize = size
	}

	users, pagination, err := h.service.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// SelectTeachers godoc
// @Summary Replace the student's selected teachers
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.SelectTeachersRequest true "Teacher ids"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /users/me/teachers [put]
func (h *UserHandler) SelectTeachers(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.SelectTeachersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher selection payload"))
		return
	}
	if err := h.service.SelectTeachers(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTeachers godoc
// @Summary List teacher profiles
// @Tags Users
// @Produce json
// @Param approved query bool false "Only approved teachers"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /teachers [get]
func (h *UserHandler) ListTeachers(c *gin.Context) {
	approvedOnly := c.Query("approved") == "true"
	// Students only ever see approved teachers.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		approvedOnly = true
	}
	teachers, err := h.service.ListTeachers(c.Request.Context(), approvedOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// UpdateTeacherProfile godoc
// @Summary Update the authenticated teacher's profile
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.UpdateTeacherProfileRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /teachers/me [put]
func (h *UserHandler) UpdateTeacherProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UpdateTeacherProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	profile, err := h.service.UpdateTeacherProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UploadResume godoc
// @Summary Upload the authenticated teacher's resume
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /teachers/me/resume [post]
func (h *UserHandler) UploadResume(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "resume file is required"))
		return
	}
	fileID, err := h.files.Store("resumes", header)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.AttachResume(c.Request.Context(), claims.UserID, fileID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"file_id": fileID}, nil)
}
