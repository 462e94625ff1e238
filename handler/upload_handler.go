package handler

import (
	"context"
	"errors"
	"io"
	"merchant-api/common"
	"merchant-api/model"
	"merchant-api/service"
	"net/http"
)

const (
	maxUploadBytes = 5 << 20
	sniffLen       = 512
)

// FileStorage is implemented by *service.StorageService.
type FileStorage interface {
	Upload(ctx context.Context, userID int, file io.Reader, size int64, contentType string) (string, string, error)
	Delete(ctx context.Context, userID int, key string) error
}

type UploadHandler struct {
	storage FileStorage
}

func NewUploadHandler(storage FileStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// Upload godoc
// @Summary      Upload a document
// @Description  Stores a JPEG, PNG or PDF file of at most 5MB in the "file" form field.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "Document to upload"
// @Success      201  {object}  model.UploadResponse
// @Failure      400  {object}  common.AppError "Missing file"
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      413  {object}  common.AppError "File too large"
// @Failure      415  {object}  common.AppError "Unsupported file type"
// @Failure      500  {object}  common.AppError
// @Router       /api/uploads [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	if h.storage == nil {
		return common.NewAppError(http.StatusServiceUnavailable, "File storage is not configured", nil)
	}

	// Leave room for the multipart envelope.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+sniffLen*2)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.NewAppError(http.StatusRequestEntityTooLarge, service.ErrFileTooBig.Error(), nil)
		}
		return common.NewAppError(http.StatusBadRequest, "A file is required in the 'file' field", err)
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return common.NewAppError(http.StatusBadRequest, "Could not read the uploaded file", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not read the uploaded file", err)
	}
	contentType := http.DetectContentType(head[:n])

	key, url, err := h.storage.Upload(r.Context(), userID, file, header.Size, contentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooBig):
			return common.NewAppError(http.StatusRequestEntityTooLarge, err.Error(), nil)
		case errors.Is(err, service.ErrInvalidFileType):
			return common.NewAppError(http.StatusUnsupportedMediaType, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not store the file", err)
		}
	}

	writeJSON(w, http.StatusCreated, model.UploadResponse{Key: key, URL: url})
	return nil
}

// DeleteUpload godoc
// @Summary      Delete an uploaded document
// @Tags         uploads
// @Security     BearerAuth
// @Param        key path string true "Object key returned by the upload"
// @Success      204
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      403  {object}  common.AppError "The file belongs to another user"
// @Failure      500  {object}  common.AppError
// @Router       /api/uploads/{key} [delete]
func (h *UploadHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	if h.storage == nil {
		return common.NewAppError(http.StatusServiceUnavailable, "File storage is not configured", nil)
	}

	key := r.PathValue("key")
	if err := h.storage.Delete(r.Context(), userID, key); err != nil {
		if errors.Is(err, service.ErrUploadNotOwned) {
			return common.NewAppError(http.StatusForbidden, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not delete the file", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
