package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/storage"
	"github.com/yeremiapane/queueease/utils"
)

// FileUploader -> storage.S3Uploader di produksi, fake di test
type FileUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type UploadController struct {
	Uploader FileUploader
	Now      func() time.Time
}

func NewUploadController(uploader FileUploader) *UploadController {
	return &UploadController{Uploader: uploader, Now: time.Now}
}

// Upload -> multipart "file" (gambar, maks 2MB) dan "name", mengembalikan URL publik
func (uc *UploadController) Upload(c *gin.Context) {
	if uc.Uploader == nil {
		utils.RespondError(c, utils.Internal(errors.New("storage is not configured")))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxUploadSize+(1<<20))
	file, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, utils.BadRequest("file is required (max 2MB)"))
		return
	}
	if file.Size > storage.MaxUploadSize {
		utils.RespondError(c, utils.BadRequest("File is too large, max 2MB"))
		return
	}
	contentType, ok := storage.ImageContentType(file.Filename)
	if !ok {
		utils.RespondError(c, utils.BadRequest("Only image files are allowed"))
		return
	}

	src, err := file.Open()
	if err != nil {
		utils.RespondError(c, utils.Internal(err))
		return
	}
	defer src.Close()

	key := storage.ObjectKey(c.PostForm("name"), file.Filename, uc.Now())
	url, err := uc.Uploader.Upload(c.Request.Context(), key, src, contentType)
	if err != nil {
		utils.RespondError(c, utils.Internal(err))
		return
	}

	utils.InfoLogger.Printf("File uploaded: %s (%d bytes)", key, file.Size)
	utils.RespondJSON(c, http.StatusCreated, "File uploaded successfully", gin.H{
		"key": key,
		"url": url,
	})
}
