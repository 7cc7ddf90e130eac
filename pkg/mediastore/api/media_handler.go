package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pawmarket/media-store/pkg/mediastore"
)

// MediaHandler handles media upload and management API endpoints using
// pkg/mediastore. It is the thin HTTP surface consumed by the marketplace
// application; authentication is the caller's concern.
type MediaHandler struct {
	service mediastore.Service
}

func NewMediaHandler(service mediastore.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

// Routes returns the router for media endpoints
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.UploadMedia)
	r.Get("/", h.ListByEntity)
	r.Get("/{asset_id}", h.GetAsset)
	r.Get("/{asset_id}/thumbnail", h.ThumbnailURL)
	r.Post("/{asset_id}/entity", h.AttachEntity)
	r.Delete("/{entity_type}/{unique_id}", h.DeleteMedia)
	return r
}

// AttachEntityRequest represents the request to associate an asset with its
// owning entity record
type AttachEntityRequest struct {
	EntityID int64 `json:"entity_id"`
}

// ThumbnailResponse carries a derived thumbnail URL
type ThumbnailResponse struct {
	ThumbnailURL string `json:"thumbnail_url"`
}

// DeleteResponse reports the outcome of a delete
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// UploadMedia accepts a multipart upload, spools it to a temporary file and
// stores it through the service. Responds with the canonical MediaAsset.
func (h *MediaHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Missing file in upload", "error", err)
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	entityType, err := mediastore.ParseEntityType(r.FormValue("entity_type"))
	if err != nil {
		slog.Error("Invalid entity type", "entity_type", r.FormValue("entity_type"))
		http.Error(w, "invalid entity type", http.StatusBadRequest)
		return
	}

	var entityID *int64
	if raw := r.FormValue("entity_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			slog.Error("Invalid entity id", "entity_id", raw, "error", err)
			http.Error(w, "invalid entity id", http.StatusBadRequest)
			return
		}
		entityID = &parsed
	}

	// Spool to a temporary file; the service contract takes a source path
	// and the HTTP layer owns cleanup of the temporary file.
	tmp, err := os.CreateTemp("", "media-upload-*")
	if err != nil {
		slog.Error("Failed to create temp file", "error", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		slog.Error("Failed to spool upload", "error", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}
	if err := tmp.Close(); err != nil {
		slog.Error("Failed to close temp file", "error", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	asset, err := h.service.UploadMedia(r.Context(), mediastore.UploadRequest{
		SourcePath:       tmpName,
		EntityType:       entityType,
		EntityID:         entityID,
		OriginalFilename: header.Filename,
	})
	if err != nil {
		slog.Error("Failed to upload media", "entity_type", entityType, "error", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, asset)
}

// GetAsset returns a single asset by surrogate id
func (h *MediaHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "asset_id"))
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		if errors.Is(err, mediastore.ErrAssetNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get asset", "asset_id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, asset)
}

// ListByEntity returns all assets for an entity, newest first
func (h *MediaHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	entityType, err := mediastore.ParseEntityType(r.URL.Query().Get("entity_type"))
	if err != nil {
		http.Error(w, "invalid entity type", http.StatusBadRequest)
		return
	}

	entityID, err := strconv.ParseInt(r.URL.Query().Get("entity_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	assets, err := h.service.ListByEntity(r.Context(), entityType, entityID)
	if err != nil {
		slog.Error("Failed to list assets", "entity_type", entityType, "entity_id", entityID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if assets == nil {
		assets = []*mediastore.MediaAsset{}
	}
	render.JSON(w, r, assets)
}

// ThumbnailURL derives a thumbnail URL for an asset. Derivation is purely
// textual, so this endpoint is safe to call on every render.
func (h *MediaHandler) ThumbnailURL(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "asset_id"))
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		if errors.Is(err, mediastore.ErrAssetNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get asset", "asset_id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	spec := mediastore.ThumbnailSpec{}
	if raw := r.URL.Query().Get("width"); raw != "" {
		spec.Width, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("height"); raw != "" {
		spec.Height, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		spec.OffsetSeconds, _ = strconv.Atoi(raw)
	}

	render.JSON(w, r, ThumbnailResponse{
		ThumbnailURL: h.service.ThumbnailURL(asset, spec),
	})
}

// AttachEntity associates an unassociated asset with its owning entity record
func (h *MediaHandler) AttachEntity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "asset_id"))
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	var req AttachEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.AttachEntity(r.Context(), id, req.EntityID); err != nil {
		if errors.Is(err, mediastore.ErrAssetNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to attach entity", "asset_id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteMedia removes the stored bytes and the metadata record for a public
// id. The kind query param is only a hint; the metadata record's kind wins.
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "entity_type") + "/" + chi.URLParam(r, "unique_id")

	kind := mediastore.ResourceKind(r.URL.Query().Get("kind"))
	if !kind.Valid() {
		kind = mediastore.ResourceKindImage
	}

	deleted, err := h.service.DeleteMedia(r.Context(), publicID, kind)
	if err != nil {
		if errors.Is(err, mediastore.ErrAssetNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete media", "public_id", publicID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, DeleteResponse{Deleted: deleted})
}
