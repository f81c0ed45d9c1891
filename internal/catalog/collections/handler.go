package collections

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	catalog "github.com/vinyldesk/vinyldesk/internal/catalog/shared"
	"github.com/vinyldesk/vinyldesk/internal/platform/httpx"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// Handler exposes the collection CRUD surface as JSON endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the operation surface on a subrouter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/create", h.create)
	r.Post("/addbulk", h.addBulk)
	r.Post("/list", h.list)
	r.Get("/{id}", h.get)
	r.Post("/count", h.count)
	r.Put("/update/{id}", h.update)
	r.Put("/partial-update/{id}", h.update)
	r.Put("/updatebulk", h.updateBulk)
	r.Put("/softdelete/{id}", h.softDelete)
	r.Put("/softdeletemany", h.softDeleteMany)
	r.Delete("/delete/{id}", h.delete)
	r.Post("/deletemany", h.deleteMany)
}

func actorID(r *http.Request) int64 {
	principal, _ := shared.PrincipalFromContext(r.Context())
	return principal.UserID
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("collections "+op, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	collection, err := h.service.Create(r.Context(), in, actorID(r))
	if err != nil {
		h.fail(w, "create", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, collection)
}

type bulkCreateRequest struct {
	Data []Input `json:"data"`
}

func (h *Handler) addBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkCreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	count, err := h.service.CreateBulk(r.Context(), req.Data, actorID(r))
	if err != nil {
		h.fail(w, "addbulk", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, catalog.BulkResult{Count: count})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var req catalog.ListRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	collections, paginator, err := h.service.List(r.Context(), req)
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog.ListResponse[Collection]{Data: collections, Paginator: paginator})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return
	}
	collection, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	httpx.JSON(w, http.StatusOK, collection)
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	var req catalog.CountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	total, err := h.service.Count(r.Context(), req)
	if err != nil {
		h.fail(w, "count", err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog.CountResponse{TotalRecords: total})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return
	}
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	collection, err := h.service.Update(r.Context(), id, in, actorID(r))
	if err != nil {
		h.fail(w, "update", err)
		return
	}
	httpx.JSON(w, http.StatusOK, collection)
}

type bulkUpdateRequest struct {
	IDs  []int64 `json:"ids"`
	Data Input   `json:"data"`
}

func (h *Handler) updateBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	count, err := h.service.UpdateBulk(r.Context(), req.IDs, req.Data, actorID(r))
	if err != nil {
		h.fail(w, "updatebulk", err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog.BulkResult{Count: count})
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return
	}
	if err := h.service.SoftDelete(r.Context(), id, actorID(r)); err != nil {
		h.fail(w, "softdelete", err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog.BulkResult{Count: 1})
}

type idsRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *Handler) softDeleteMany(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	count, err := h.service.SoftDeleteMany(r.Context(), req.IDs, actorID(r))
	if err != nil {
		h.fail(w, "softdeletemany", err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog.BulkResult{Count: count})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete", err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog.BulkResult{Count: 1})
}

func (h *Handler) deleteMany(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	count, err := h.service.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		h.fail(w, "deletemany", err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog.BulkResult{Count: count})
}
