package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-sneakers-store/internal/catalog"
)

type Catalog interface {
	ListAvailable(ctx context.Context) ([]catalog.StockUnit, error)
}

type SneakersHandler struct {
	Catalog Catalog
	Log     *zap.Logger
}

type SneakerResp struct {
	ID       int64       `json:"id"`
	Brand    string      `json:"brand"`
	Model    string      `json:"model"`
	Color    string      `json:"color"`
	Size     float64     `json:"size"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	ImageURL string      `json:"image_url"`
}

func (h *SneakersHandler) Register(r chi.Router) {
	r.Get("/sneakers", h.list)
}

func (h *SneakersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	units, err := h.Catalog.ListAvailable(ctx)
	if err != nil {
		writeFault(w, h.Log, "list sneakers", err)
		return
	}
	out := make([]SneakerResp, 0, len(units))
	for _, u := range units {
		out = append(out, SneakerResp{
			ID:       u.ID,
			Brand:    u.Brand,
			Model:    u.Model,
			Color:    u.Color,
			Size:     u.Size,
			Price:    json.Number(u.Price.StringFixed(2)),
			Quantity: u.Quantity,
			ImageURL: u.ImageURL,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
