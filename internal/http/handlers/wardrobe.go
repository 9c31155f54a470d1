package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wardrobe/internal/imageref"
	"wardrobe/internal/wardrobe"
)

type itemResponse struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Category wardrobe.Category `json:"category"`
	Tags     []string          `json:"tags"`
	Ref      string            `json:"ref"`
	ImageURL string            `json:"image_url"`
}

// ListItems returns the newest wardrobe items with their image references.
func (a *App) ListItems(w http.ResponseWriter, r *http.Request) {
	if a.Wardrobe == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "wardrobe lookups are disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := a.Wardrobe.Items(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list wardrobe items")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load items")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": a.itemResponses(items)})
}

// OutfitItems returns the wardrobe items linked to an outfit.
func (a *App) OutfitItems(w http.ResponseWriter, r *http.Request) {
	if a.Wardrobe == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "wardrobe lookups are disabled")
		return
	}
	outfitID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || outfitID <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid outfit id")
		return
	}
	ids, err := a.Wardrobe.OutfitItemIDs(r.Context(), outfitID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load outfit")
		return
	}
	items, err := a.Wardrobe.ItemsByID(r.Context(), ids)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load items")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"outfit_id": outfitID, "items": a.itemResponses(items)})
}

func (a *App) itemResponses(items []wardrobe.Item) []itemResponse {
	resolver := imageref.Resolver{}
	if a.Config != nil {
		resolver.StorageBaseURL = a.Config.BackendURL
	}
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Tags:     it.Tags,
			Ref:      it.Image.String(),
			ImageURL: resolver.URL(it.Image),
		})
	}
	return out
}
