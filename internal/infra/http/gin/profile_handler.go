package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"memberhub/internal/app/dto"
	profilessvc "memberhub/internal/app/services/profiles"
	domainmember "memberhub/internal/domain/member"
)

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

type ProfileHTTP interface {
	Get(c *gin.Context)
	UpdateMe(c *gin.Context)
	UploadAvatar(c *gin.Context)
}

type ProfileHandler struct {
	Service *profilessvc.Service
	Logger  *slog.Logger
}

// Get returns another member's public profile.
func (h ProfileHandler) Get(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles unavailable"})
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member id is required"})
		return
	}
	profile, err := h.Service.Get(c.Request.Context(), domainmember.ID(id))
	if err != nil {
		h.respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfile(profile))
}

type profileUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	Username    *string `json:"username"`
	Bio         *string `json:"bio"`
}

func (h ProfileHandler) UpdateMe(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles unavailable"})
		return
	}
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	profile, err := h.Service.Update(c.Request.Context(), p.ID, domainmember.ProfileUpdate{
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Bio:         req.Bio,
	})
	if err != nil {
		h.respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfile(profile))
}

// UploadAvatar accepts the raw image in the request body, Content-Type set
// to the image type.
func (h ProfileHandler) UploadAvatar(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles unavailable"})
		return
	}
	reader := http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
	profile, err := h.Service.UploadAvatar(c.Request.Context(), p.ID, reader, c.ContentType())
	if err != nil {
		h.respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfile(profile))
}

func (h ProfileHandler) respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainmember.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
	case errors.Is(err, domainmember.ErrDisplayNameRequired),
		errors.Is(err, domainmember.ErrUsernameRequired),
		errors.Is(err, domainmember.ErrUsernameInvalid),
		errors.Is(err, domainmember.ErrBioTooLong),
		errors.Is(err, profilessvc.ErrUnsupportedAvatarType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainmember.ErrUsernameAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("profile operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ ProfileHTTP = (*ProfileHandler)(nil)
