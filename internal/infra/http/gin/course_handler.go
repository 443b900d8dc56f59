package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"memberhub/internal/app/dto"
	contentsvc "memberhub/internal/app/services/content"
	domaincourse "memberhub/internal/domain/course"
)

type CourseHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Publish(c *gin.Context)
	Archive(c *gin.Context)
}

type CourseHandler struct {
	Service *contentsvc.Service
	Logger  *slog.Logger
}

// List shows published courses to members, everything to admins.
func (h CourseHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "courses unavailable"})
		return
	}
	courses, err := h.Service.List(c.Request.Context(), p.HasRole("admin"))
	if err != nil {
		h.respondCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourseList(courses))
}

func (h CourseHandler) Get(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "courses unavailable"})
		return
	}
	courseID := strings.TrimSpace(c.Param("id"))
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course id is required"})
		return
	}
	course, err := h.Service.Get(c.Request.Context(), domaincourse.ID(courseID), p.HasRole("admin"))
	if err != nil {
		h.respondCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourse(course))
}

type createCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
}

func (h CourseHandler) Create(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "courses unavailable"})
		return
	}
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	course, err := h.Service.Create(c.Request.Context(), contentsvc.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		h.respondCourseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCourse(course))
}

type updateCourseRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	CoverURL    *string      `json:"cover_url"`
	Lessons     []dto.Lesson `json:"lessons"`
}

func (h CourseHandler) Update(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "courses unavailable"})
		return
	}
	courseID := strings.TrimSpace(c.Param("id"))
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course id is required"})
		return
	}
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	params := domaincourse.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		CoverURL:    req.CoverURL,
	}
	if req.Lessons != nil {
		params.Lessons = make([]domaincourse.Lesson, 0, len(req.Lessons))
		for _, lesson := range req.Lessons {
			params.Lessons = append(params.Lessons, domaincourse.Lesson{
				ID:       lesson.ID,
				Title:    lesson.Title,
				Body:     lesson.Body,
				VideoURL: lesson.VideoURL,
				Position: lesson.Position,
			})
		}
	}
	course, err := h.Service.Update(c.Request.Context(), domaincourse.ID(courseID), params)
	if err != nil {
		h.respondCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourse(course))
}

func (h CourseHandler) Publish(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "courses unavailable"})
		return
	}
	courseID := strings.TrimSpace(c.Param("id"))
	course, err := h.Service.Publish(c.Request.Context(), domaincourse.ID(courseID))
	if err != nil {
		h.respondCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourse(course))
}

func (h CourseHandler) Archive(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "courses unavailable"})
		return
	}
	courseID := strings.TrimSpace(c.Param("id"))
	course, err := h.Service.Archive(c.Request.Context(), domaincourse.ID(courseID))
	if err != nil {
		h.respondCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourse(course))
}

func (h CourseHandler) respondCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaincourse.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
	case errors.Is(err, domaincourse.ErrNotDraft),
		errors.Is(err, domaincourse.ErrArchived),
		errors.Is(err, domaincourse.ErrNoLessons):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domaincourse.ErrTitleRequired),
		errors.Is(err, domaincourse.ErrLessonTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("course operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ CourseHTTP = (*CourseHandler)(nil)
