package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/batala/site-server-go/internal/audit"
	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/service"
)

// multipart overhead allowed on top of the file itself
const multipartSlack = 1 << 20

const multipartMemory = 8 << 20

type MediaHandler struct {
	mediaService   *service.MediaService
	protect        func(http.Handler) http.Handler
	maxUploadBytes int64
}

func NewMediaHandler(mediaService *service.MediaService, protect func(http.Handler) http.Handler, maxUploadBytes int64) *MediaHandler {
	return &MediaHandler{
		mediaService:   mediaService,
		protect:        protect,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(h.protect)
		r.Post("/", h.Upload)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// GET /api/media
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.mediaService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// POST /api/media
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadBytes+multipartSlack {
		writeError(w, apperrors.PayloadTooLarge())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartSlack)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, apperrors.PayloadTooLarge())
			return
		}
		writeError(w, apperrors.ValidationError("Invalid multipart body"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn().Err(err).Msg("failed to remove multipart temp files")
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.MissingRequired("file"))
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		writeError(w, apperrors.PayloadTooLarge())
		return
	}

	media, err := h.mediaService.Upload(r.Context(), service.UploadParams{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Body:         file,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventMediaUpload,
		AdminID: actorID(r),
		Details: map[string]interface{}{"media_id": media.ID, "filename": media.Filename, "size": header.Size},
	})
	writeJSON(w, http.StatusCreated, media)
}

// DELETE /api/media/{id}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.mediaService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventMediaDelete,
		AdminID: actorID(r),
		Details: map[string]interface{}{"media_id": id},
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
