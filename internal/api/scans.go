package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/export"
)

// ListScans handles GET /api/scans.
//
//	@Summary	List scans, newest first
//	@Tags		scans
//	@Produce	json
//	@Success	200	{array}	models.ScanResult
//	@Router		/scans [get]
func (h *Handler) ListScans(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scans": h.svc.ListScans(),
	})
}

// GetScan handles GET /api/scans/{id}.
func (h *Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := h.svc.GetScan(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

// ScanImage handles GET /api/scans/{id}/image.
func (h *Handler) ScanImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.svc.ScanImage(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("ETag", `"`+img.Checksum+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data) //nolint:errcheck // client went away
}

// UploadScan handles POST /api/scans. The image arrives either as a
// multipart "file" field or as JSON {"image": "<data URI or URL>"}.
//
//	@Summary	Hold an image for analysis
//	@Tags		scans
//	@Accept		multipart/form-data,json
//	@Produce	json
//	@Success	200	{object}	scanner.State
//	@Failure	400	{object}	errResponse
//	@Failure	409	{object}	errResponse
//	@Router		/scans [post]
func (h *Handler) UploadScan(w http.ResponseWriter, r *http.Request) {
	img, err := h.readImage(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.svc.StartScan(img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) (capture.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, capture.MaxImageSize+(1<<20))

	if err := r.ParseMultipartForm(capture.MaxImageSize); err == nil {
		file, _, err := r.FormFile("file")
		if err != nil {
			return capture.Image{}, fmt.Errorf("missing 'file' field in multipart form: %w", apperr.ErrInvalidInput)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return capture.Image{}, fmt.Errorf("read upload: %w", apperr.ErrInvalidInput)
		}
		return capture.FromBytes(data)
	}

	var req struct {
		Image string `json:"image"`
	}
	if err := readJSON(w, r, &req); err != nil || req.Image == "" {
		return capture.Image{}, fmt.Errorf("expected multipart 'file' or JSON 'image': %w", apperr.ErrInvalidInput)
	}
	if h.fetcher != nil {
		return h.fetcher.Load(r.Context(), req.Image)
	}
	return capture.FromDataURI(req.Image)
}

// DiscardPending handles DELETE /api/scans/pending.
func (h *Handler) DiscardPending(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.CancelScan()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// ProcessScan handles POST /api/scans/process.
//
//	@Summary	Analyze the pending image
//	@Tags		scans
//	@Produce	json
//	@Success	201	{object}	models.ScanResult
//	@Failure	400	{object}	errResponse
//	@Failure	409	{object}	errResponse
//	@Failure	502	{object}	errResponse
//	@Router		/scans/process [post]
func (h *Handler) ProcessScan(w http.ResponseWriter, r *http.Request) {
	scan, err := h.svc.ProcessScan(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, scan)
}

// ScanStatus handles GET /api/scans/status.
func (h *Handler) ScanStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ScanStatus())
}

// ViewScan handles POST /api/scans/{id}/view.
func (h *Handler) ViewScan(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.ViewScan(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// DeleteScan handles DELETE /api/scans/{id}.
func (h *Handler) DeleteScan(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.DeleteScan(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// ClearScans handles DELETE /api/scans.
func (h *Handler) ClearScans(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ClearData())
}

// Search handles GET /api/search.
//
//	@Summary	Full-text search across scans
//	@Tags		search
//	@Produce	json
//	@Param		q		query	string	true	"Search query"
//	@Param		limit	query	int		false	"Max results"
//	@Failure	400		{object}	errResponse
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(q, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Export handles GET /api/export?format=csv|json|markdown.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := export.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("format must be csv, json or markdown"))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if err := export.Write(w, format, h.svc.ListScans(), time.Now()); err != nil {
		slog.Error("export failed", slog.String("format", string(format)), slog.String("error", err.Error()))
	}
}
