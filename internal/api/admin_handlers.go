package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/pkg/httputil"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/service/popup"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/storage"
)

// listPopupsResponse is the admin listing envelope.
type listPopupsResponse struct {
	Popups []domain.Popup `json:"popups"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// HandleListPopups returns the popup catalog for the back-office, newest first.
func (h *Handlers) HandleListPopups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := popup.ListFilter{
		ActiveOnly: q.Get("active") == "true",
		Limit:      queryInt(q.Get("limit"), 50),
		Offset:     queryInt(q.Get("offset"), 0),
	}

	popups, total, err := h.popups.List(r.Context(), filter)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if popups == nil {
		popups = []domain.Popup{}
	}
	httputil.OK(w, listPopupsResponse{
		Popups: popups,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// HandleCreatePopup inserts a new popup.
func (h *Handlers) HandleCreatePopup(w http.ResponseWriter, r *http.Request) {
	var p domain.Popup
	if !httputil.Decode(w, r, &p) {
		return
	}
	if err := h.popups.Create(r.Context(), &p); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Created(w, p)
}

// HandleGetPopup returns one popup by ID.
func (h *Handlers) HandleGetPopup(w http.ResponseWriter, r *http.Request) {
	p, err := h.popups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, popup.ErrNotFound) {
			httputil.NotFound(w, "popup not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, p)
}

// HandleUpdatePopup replaces a popup. The ID in the URL wins over any ID in
// the body.
func (h *Handlers) HandleUpdatePopup(w http.ResponseWriter, r *http.Request) {
	var p domain.Popup
	if !httputil.Decode(w, r, &p) {
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := h.popups.Update(r.Context(), &p); err != nil {
		if errors.Is(err, popup.ErrNotFound) {
			httputil.NotFound(w, "popup not found")
			return
		}
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, p)
}

// HandleDeletePopup removes a popup from the catalog.
func (h *Handlers) HandleDeletePopup(w http.ResponseWriter, r *http.Request) {
	if err := h.popups.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, popup.ErrNotFound) {
			httputil.NotFound(w, "popup not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

// HandleUploadPopupImage stores a popup's image and records its URL on the
// popup's content. Body is the raw image; Content-Type selects the format.
func (h *Handlers) HandleUploadPopupImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.popups.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, popup.ErrNotFound) {
			httputil.NotFound(w, "popup not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if _, ok := storage.SupportedImageTypes[contentType]; !ok {
		httputil.BadRequest(w, "unsupported image type: "+contentType)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, storage.MaxImageSizeBytes+1))
	if err != nil {
		httputil.BadRequest(w, "failed to read image body")
		return
	}
	if int64(len(data)) > storage.MaxImageSizeBytes {
		httputil.Error(w, http.StatusRequestEntityTooLarge, "image exceeds size limit")
		return
	}

	url, err := h.assets.SaveImage(r.Context(), contentType, bytes.NewReader(data))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	p.Content.ImageURL = url
	if err := h.popups.Update(r.Context(), p); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"image_url": url})
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
