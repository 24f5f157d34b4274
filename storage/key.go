package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/queueease/utils"
)

const MaxUploadSize = 2 << 20 // 2MB

var allowedImageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageContentType mengembalikan content type untuk ekstensi gambar yang diizinkan.
func ImageContentType(filename string) (string, bool) {
	ct, ok := allowedImageExt[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// ObjectKey -> "<slug nama>-<unix ms>-<uuid>.<ext>"
func ObjectKey(name, filename string, now time.Time) string {
	base := utils.Slugify(name)
	if base == "" {
		base = utils.Slugify(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	}
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s-%d-%s%s", base, now.UnixMilli(), uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
}
