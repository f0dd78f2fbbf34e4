package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListAll(ctx context.Context) ([]models.Course, error)
	ListApprovedByTeachers(ctx context.Context, teacherIDs []string) ([]models.Course, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
	Enroll(ctx context.Context, courseID, studentID string) error
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	AddMaterial(ctx context.Context, material *models.Material) error
	ListMaterials(ctx context.Context, courseID string) ([]models.Material, error)
	FindMaterial(ctx context.Context, id string) (*models.Material, error)
	Summaries(ctx context.Context) ([]models.CourseSummary, error)
}

type courseUserRepository interface {
	SelectedTeacherIDs(ctx context.Context, studentID string) ([]string, error)
}

type courseProgressRepository interface {
	EnsureRow(ctx context.Context, studentID, courseID string) error
}

// MaterialUpload carries the stored blob reference for a new material.
type MaterialUpload struct {
	FileID      string
	Filename    string
	ContentType string
}

// CourseService manages courses, materials and enrollment.
type CourseService struct {
	courses   courseRepository
	users     courseUserRepository
	progress  courseProgressRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(courses courseRepository, users courseUserRepository, progress courseProgressRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{courses: courses, users: users, progress: progress, validator: validate, logger: logger}
}

// Create adds a new course. Only approved teachers may create; the course
// starts unapproved and invisible to students.
func (s *CourseService) Create(ctx context.Context, actor policy.Actor, req models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if !policy.Can(actor, policy.ActionCreateCourse, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only approved teachers may create courses")
	}

	course := &models.Course{
		TeacherID:   actor.ID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsApproved:  false,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// List returns the courses visible to the actor. Admins see everything,
// teachers see their own, and students see approved courses from the
// teachers they selected (an empty selection yields an empty list).
func (s *CourseService) List(ctx context.Context, actor policy.Actor) ([]models.Course, error) {
	var (
		courses []models.Course
		err     error
	)
	switch actor.Role {
	case models.RoleAdmin:
		courses, err = s.courses.ListAll(ctx)
	case models.RoleTeacher:
		courses, err = s.courses.ListByTeacher(ctx, actor.ID)
	case models.RoleStudent:
		var teacherIDs []string
		teacherIDs, err = s.users.SelectedTeacherIDs(ctx, actor.ID)
		if err == nil {
			courses, err = s.courses.ListApprovedByTeachers(ctx, teacherIDs)
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Get returns one course. Students only see approved courses.
func (s *CourseService) Get(ctx context.Context, actor policy.Actor, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if actor.Role == models.RoleStudent && !course.IsApproved {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

// Enroll adds the student to an approved course and seeds a zeroed progress
// row. Enrolling twice is a no-op.
func (s *CourseService) Enroll(ctx context.Context, actor policy.Actor, courseID string) error {
	if !policy.Can(actor, policy.ActionEnrollCourse, policy.Resource{}) {
		return appErrors.Clone(appErrors.ErrForbidden, "only students may enroll")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.IsApproved {
		return appErrors.Clone(appErrors.ErrForbidden, "course is not approved")
	}

	if err := s.courses.Enroll(ctx, courseID, actor.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
	}
	if err := s.progress.EnsureRow(ctx, actor.ID, courseID); err != nil {
		s.logger.Warn("failed to seed progress row",
			zap.String("student_id", actor.ID), zap.String("course_id", courseID), zap.Error(err))
	}
	return nil
}

// AddMaterial attaches an uploaded file as a new course material.
func (s *CourseService) AddMaterial(ctx context.Context, actor policy.Actor, courseID string, req models.AddMaterialRequest, upload MaterialUpload) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !policy.Can(actor, policy.ActionModifyCourse, policy.Resource{OwnerID: course.TeacherID}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the approved course owner may add materials")
	}

	material := &models.Material{
		CourseID:    courseID,
		Type:        models.MaterialType(req.Type),
		Title:       req.Title,
		Description: req.Description,
		FileID:      upload.FileID,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
	}
	if err := s.courses.AddMaterial(ctx, material); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store material")
	}
	return material, nil
}

// ListMaterials returns a course's materials. Students must be enrolled.
func (s *CourseService) ListMaterials(ctx context.Context, actor policy.Actor, courseID string) ([]models.Material, error) {
	if actor.Role == models.RoleStudent {
		enrolled, err := s.courses.IsEnrolled(ctx, courseID, actor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not enrolled in this course")
		}
	}
	materials, err := s.courses.ListMaterials(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	if materials == nil {
		materials = []models.Material{}
	}
	return materials, nil
}

// GetMaterial returns one material row.
func (s *CourseService) GetMaterial(ctx context.Context, id string) (*models.Material, error) {
	material, err := s.courses.FindMaterial(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	return material, nil
}

// Summaries returns the admin content overview.
func (s *CourseService) Summaries(ctx context.Context) ([]models.CourseSummary, error) {
	summaries, err := s.courses.Summaries(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course summaries")
	}
	if summaries == nil {
		summaries = []models.CourseSummary{}
	}
	return summaries, nil
}
