package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"comanda/internal/domain"
	"comanda/internal/dto"
)

type Lister interface {
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
	ListMenuCategories(ctx context.Context) ([]domain.MenuCategory, error)
	ListTables(ctx context.Context) ([]domain.Table, error)
}

type Controller struct {
	repo   Lister
	logger *zap.Logger
}

func NewController(repo Lister, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, logger: logger}
}

func (c *Controller) Routes(r chi.Router) {
	r.Get("/catalog/menu-items", c.listMenuItems)
	r.Get("/catalog/menu-categories", c.listMenuCategories)
	r.Get("/catalog/tables", c.listTables)
}

func (c *Controller) listMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := c.repo.ListMenuItems(r.Context())
	if err != nil {
		c.fail(w, err)
		return
	}

	out := make([]dto.MenuItemDTO, len(items))
	for i, item := range items {
		out[i] = dto.MenuItemDTO{ID: item.ID, CategoryID: item.CategoryID, Name: item.Name, Price: item.Price}
	}
	c.writeJSON(w, out)
}

func (c *Controller) listMenuCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.repo.ListMenuCategories(r.Context())
	if err != nil {
		c.fail(w, err)
		return
	}

	out := make([]dto.MenuCategoryDTO, len(categories))
	for i, cat := range categories {
		out[i] = dto.MenuCategoryDTO{ID: cat.ID, Name: cat.Name}
	}
	c.writeJSON(w, out)
}

func (c *Controller) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := c.repo.ListTables(r.Context())
	if err != nil {
		c.fail(w, err)
		return
	}

	out := make([]dto.TableDTO, len(tables))
	for i, t := range tables {
		out[i] = dto.TableDTO{ID: t.ID, Number: t.Number, Seats: t.Seats}
	}
	c.writeJSON(w, out)
}

func (c *Controller) fail(w http.ResponseWriter, err error) {
	c.logger.Error("catalog lookup failed", zap.Error(err))
	w.WriteHeader(http.StatusInternalServerError)
}

func (c *Controller) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
