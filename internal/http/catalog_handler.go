package httpapi

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
)

const maxUploadBytes = 10 << 20

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := catalog.Params{
		OrderBy:    q.Get("orderBy"),
		SearchTerm: q.Get("searchTerm"),
		Brands:     catalog.SplitList(q.Get("brands")),
		Types:      catalog.SplitList(q.Get("types")),
		PageNumber: atoiOr(firstNonEmpty(q.Get("pageNumber"), q.Get("page")), 1),
		PageSize:   atoiOr(q.Get("pageSize"), catalog.DefaultPageSize),
	}

	page, err := h.deps.Catalog.List(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if meta, err := json.Marshal(page.MetaData); err == nil {
		w.Header().Set("Pagination", string(meta))
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.deps.Catalog.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) productFilters(w http.ResponseWriter, r *http.Request) {
	f, err := h.deps.Catalog.Filters(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, upload, closeFile, ok := h.productForm(w, r)
	if !ok {
		return
	}
	defer closeFile()

	p, err := h.deps.Catalog.Create(r.Context(), in, upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/products/"+strconv.FormatInt(p.ID, 10))
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	in, upload, closeFile, ok := h.productForm(w, r)
	if !ok {
		return
	}
	defer closeFile()

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "id must be a number")
		return
	}

	p, err := h.deps.Catalog.Update(r.Context(), id, in, upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.deps.Catalog.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// productForm reads a multipart product form. The image may arrive as "file"
// or "image"; both are optional.
func (h *handler) productForm(w http.ResponseWriter, r *http.Request) (catalog.ProductInput, *catalog.Upload, func(), bool) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeProblem(w, r, http.StatusBadRequest, "Invalid form")
		return catalog.ProductInput{}, nil, noop, false
	}

	in := catalog.ProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       int64(atoiOr(r.FormValue("price"), 0)),
		Type:        r.FormValue("type"),
		Brand:       r.FormValue("brand"),
		QtyInStock:  atoiOr(r.FormValue("quantityInStock"), 0),
	}

	var (
		file multipart.File
		hdr  *multipart.FileHeader
		err  error
	)
	for _, field := range []string{"file", "image"} {
		file, hdr, err = r.FormFile(field)
		if err == nil {
			break
		}
	}
	if file == nil {
		return in, nil, noop, true
	}
	return in, &catalog.Upload{Filename: hdr.Filename, Body: file}, func() { _ = file.Close() }, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "id must be a number")
		return 0, false
	}
	return id, true
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
