package handlers

import (
	"errors"
	"net/http"

	"membership_webapp/internal/http/middleware"
	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// multipart overhead allowed on top of the file itself
const formSlack = 1 << 20

func (h *Handler) UploadPhoto(c *gin.Context) {
	up, closeFn, ok := h.readUpload(c, service.MaxImageSize)
	if !ok {
		return
	}
	defer closeFn()

	url, err := h.Media.UploadPhoto(c.Request.Context(), up)
	if err != nil {
		respondServiceError(c, err, "upload failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url, "photoType": up.Slot})
}

func (h *Handler) UploadVideo(c *gin.Context) {
	up, closeFn, ok := h.readUpload(c, service.MaxVideoSize)
	if !ok {
		return
	}
	defer closeFn()

	video, err := h.Media.UploadVideo(c.Request.Context(), up)
	if err != nil {
		respondServiceError(c, err, "upload failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": video.URL, "video": video})
}

// readUpload pulls {file, username, photoType} from the multipart form.
// The form username must be the signed-in user.
func (h *Handler) readUpload(c *gin.Context, limit int64) (service.Upload, func(), bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formSlack)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(c, http.StatusBadRequest, service.ErrFileTooLarge.Error())
		} else {
			respondError(c, http.StatusBadRequest, "file is required")
		}
		return service.Upload{}, nil, false
	}

	username := c.PostForm("username")
	if session, ok := middleware.Username(c); !ok || session != username {
		respondError(c, http.StatusUnauthorized, "cannot upload for another user")
		return service.Upload{}, nil, false
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read file")
		return service.Upload{}, nil, false
	}

	return service.Upload{
		Username:    username,
		Slot:        c.PostForm("photoType"),
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, true
}
