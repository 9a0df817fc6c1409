package catalog

import (
	"math"
	"strings"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 36
)

const (
	OrderByName      = "name"
	OrderByPrice     = "price"
	OrderByPriceDesc = "priceDesc"
)

// maxOffset bounds the SQL OFFSET; pages beyond it are always empty.
const maxOffset = math.MaxInt32

// Params describes one catalog listing request.
type Params struct {
	OrderBy    string
	SearchTerm string
	Brands     []string
	Types      []string
	PageNumber int
	PageSize   int
}

// Normalize applies defaults and clamps. Page sizes above MaxPageSize are
// clamped, not rejected. Brand/type filters are lower-cased and never nil.
func (p Params) Normalize() Params {
	out := p
	if out.PageNumber < 1 {
		out.PageNumber = 1
	}
	switch {
	case out.PageSize < 1:
		out.PageSize = DefaultPageSize
	case out.PageSize > MaxPageSize:
		out.PageSize = MaxPageSize
	}
	if last := maxOffset/out.PageSize + 1; out.PageNumber > last {
		out.PageNumber = last
	}
	switch out.OrderBy {
	case OrderByPrice, OrderByPriceDesc:
	default:
		out.OrderBy = OrderByName
	}
	out.SearchTerm = strings.ToLower(strings.TrimSpace(out.SearchTerm))
	out.Brands = lowerAll(out.Brands)
	out.Types = lowerAll(out.Types)
	return out
}

func (p Params) offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// SplitList parses a comma separated filter value such as "angular,react".
func SplitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type MetaData struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
}

func NewMetaData(totalCount, pageNumber, pageSize int) MetaData {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return MetaData{
		CurrentPage: pageNumber,
		TotalPages:  totalPages,
		PageSize:    pageSize,
		TotalCount:  totalCount,
	}
}

type PagedList struct {
	Items    []Product `json:"items"`
	MetaData MetaData  `json:"metaData"`
}
