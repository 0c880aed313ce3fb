package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rfid-attendance/internal/cloudinary"
	"rfid-attendance/internal/pkg/validation"
	"rfid-attendance/internal/roster"
)

const maxPhotoBytes = 5 << 20

// ListUsers returns the roster, narrowed by ?search= when given.
func (h *Handler) ListUsers(c *gin.Context) {
	users := h.Users.Search(c.Query("search"))
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.Users.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var in roster.Input
	if !validation.BindJSON(c, &in) {
		return
	}
	u, err := h.Users.Add(in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger(c).Info("user added", zap.String("user_id", u.ID), zap.String("rfid_tag", u.RFIDTag))
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var in roster.Input
	if !validation.BindJSON(c, &in) {
		return
	}
	u, err := h.Users.Update(c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger(c).Info("user updated", zap.String("user_id", u.ID))
	c.JSON(http.StatusOK, u)
}

// DeleteUser removes the user. Their attendance records stay in the log.
func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.Users.Delete(id); err != nil {
		h.respondError(c, err)
		return
	}
	h.logger(c).Info("user deleted", zap.String("user_id", id))
	c.Status(http.StatusNoContent)
}

// photoDataURL is the JSON form of a photo upload.
type photoDataURL struct {
	Image string `json:"image" validate:"required,startswith=data:image/,datauri"`
}

// UploadPhoto stores a photo and points the user's image at it. The photo is
// either a multipart "file" or a JSON body carrying a base64 data URL.
func (h *Handler) UploadPhoto(c *gin.Context) {
	if h.Photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}
	id := c.Param("id")
	if _, err := h.Users.Get(id); err != nil {
		h.respondError(c, err)
		return
	}

	var (
		res *cloudinary.UploadResult
		ok  bool
	)
	if c.ContentType() == gin.MIMEJSON {
		res, ok = h.uploadDataURL(c, id)
	} else {
		res, ok = h.uploadFile(c, id)
	}
	if !ok {
		return
	}
	u, err := h.Users.SetImage(id, res.SecureURL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) uploadFile(c *gin.Context, id string) (*cloudinary.UploadResult, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read file failed"})
		return nil, false
	}
	if len(data) > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo too large"})
		return nil, false
	}
	res, err := h.Photos.UploadBytes(c.Request.Context(), "user-"+id, data, header.Filename)
	return h.uploaded(c, id, res, err)
}

func (h *Handler) uploadDataURL(c *gin.Context, id string) (*cloudinary.UploadResult, bool) {
	var in photoDataURL
	if !validation.BindJSON(c, &in) {
		return nil, false
	}
	// base64 inflates by a third
	if len(in.Image) > maxPhotoBytes*4/3+len("data:image/jpeg;base64,") {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo too large"})
		return nil, false
	}
	res, err := h.Photos.UploadDataURL(c.Request.Context(), "user-"+id, in.Image)
	return h.uploaded(c, id, res, err)
}

func (h *Handler) uploaded(c *gin.Context, id string, res *cloudinary.UploadResult, err error) (*cloudinary.UploadResult, bool) {
	if err != nil {
		h.logger(c).Error("photo upload failed", zap.String("user_id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return nil, false
	}
	return res, true
}
