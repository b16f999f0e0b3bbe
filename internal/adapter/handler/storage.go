package handler

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kgwiazdak/sprint-planning-copilot/errors"
	storageDTO "github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/dto/storage"
)

// Presigner mints presigned upload URLs for recording objects
type Presigner interface {
	PresignedPutURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// Storage handles direct-to-bucket upload requests
type Storage struct {
	presigner Presigner
	expiry    time.Duration
	logger    *zap.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(presigner Presigner, expiry time.Duration, logger *zap.Logger) *Storage {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Storage{presigner: presigner, expiry: expiry, logger: logger}
}

// CreateUploadURL handles POST /uploads/blob. The client PUTs the recording
// straight to the bucket and submits the returned object name as the
// meeting's source blob.
func (h *Storage) CreateUploadURL(c echo.Context) error {
	var req storageDTO.UploadURLRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	objectName := fmt.Sprintf("recordings/%s_%s", uuid.New(), sanitizeFileName(req.FileName))
	url, err := h.presigner.PresignedPutURL(c.Request().Context(), objectName, h.expiry)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("❌ Failed to presign upload URL",
				zap.String("object", objectName),
				zap.Error(err),
			)
		}
		return HandleError(c, errors.ErrStorageFailed("presign upload", err))
	}

	return c.JSON(http.StatusOK, storageDTO.UploadURLResponse{
		URL:        url,
		ObjectName: objectName,
		ExpiresIn:  int(h.expiry.Seconds()),
	})
}

// sanitizeFileName keeps object names flat and shell-safe
func sanitizeFileName(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
