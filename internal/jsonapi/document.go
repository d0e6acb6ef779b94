package jsonapi

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ResourceIdentifier is a {type, id} pair.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship holds a relationship's linkage. Data is a
// ResourceIdentifier, a []ResourceIdentifier, or nil for an empty
// to-one relation; the data key is always serialized.
type Relationship struct {
	Data any `json:"data"`
}

// ResourceObject is one JSON:API resource.
type ResourceObject struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         map[string]string       `json:"links,omitempty"`
}

// Identifier returns the resource's {type, id} pair.
func (r ResourceObject) Identifier() ResourceIdentifier {
	return ResourceIdentifier{Type: r.Type, ID: r.ID}
}

// Links is a document-level links object. Prev and Next are pointers so
// collection documents can serialize them as null at the boundaries.
type Links struct {
	Self  string  `json:"self,omitempty"`
	First string  `json:"first,omitempty"`
	Last  string  `json:"last,omitempty"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// SelfLinks builds a links object holding only self.
func SelfLinks(self string) *Links {
	return &Links{Self: self}
}

// Document is a top-level JSON:API document. Data is a ResourceObject, a
// []ResourceObject, a ResourceIdentifier, a []ResourceIdentifier, or nil.
type Document struct {
	Data     any              `json:"data"`
	Included []ResourceObject `json:"included,omitempty"`
	Links    *Links           `json:"links,omitempty"`
	Meta     map[string]any   `json:"meta,omitempty"`
}

// NewResourceDocument wraps a single resource.
func NewResourceDocument(res ResourceObject) *Document {
	return &Document{Data: res}
}

// NewCollectionDocument wraps a page of resources. resources may be
// empty but data always serializes as an array.
func NewCollectionDocument(resources []ResourceObject, links *Links, meta PageMeta) *Document {
	if resources == nil {
		resources = []ResourceObject{}
	}
	return &Document{
		Data:  resources,
		Links: links,
		Meta: map[string]any{
			"total":        meta.Total,
			"per_page":     meta.PerPage,
			"current_page": meta.CurrentPage,
			"last_page":    meta.LastPage,
		},
	}
}

// NewIdentifierDocument wraps relationship linkage: a single identifier,
// a list, or nil. The data key is present whatever the value.
func NewIdentifierDocument(data any) *Document {
	if ids, ok := data.([]ResourceIdentifier); ok && ids == nil {
		data = []ResourceIdentifier{}
	}
	return &Document{Data: data}
}

// AppendIncluded adds related resources to the document's included
// array, deduplicating by {type, id} across the whole response.
func (d *Document) AppendIncluded(resources ...ResourceObject) {
	seen := make(map[ResourceIdentifier]bool, len(d.Included))
	for _, inc := range d.Included {
		seen[inc.Identifier()] = true
	}
	for _, res := range resources {
		if seen[res.Identifier()] {
			continue
		}
		seen[res.Identifier()] = true
		d.Included = append(d.Included, res)
	}
}

// NewResource builds a ResourceObject, applying the spec's sparse
// fieldset for the type if one is active. The identifier always
// survives in the id member regardless of the fieldset.
func NewResource(rt *ResourceType, id string, attrs map[string]any, spec *QuerySpec) ResourceObject {
	if spec != nil {
		if fields, ok := spec.FieldsFor(rt.Name); ok {
			attrs = sparseFilter(attrs, fields)
		}
	}
	return ResourceObject{Type: rt.Name, ID: id, Attributes: attrs}
}

// sparseFilter keeps only the requested attribute keys.
func sparseFilter(attrs map[string]any, fields []string) map[string]any {
	filtered := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := attrs[f]; ok {
			filtered[f] = v
		}
	}
	return filtered
}

// PageMeta is the pagination metadata computed by the query executor.
type PageMeta struct {
	Total       int
	PerPage     int
	CurrentPage int
	LastPage    int
}

// NewPageMeta derives page metadata from a total row count and the
// requested page.
func NewPageMeta(total int, page Page) PageMeta {
	lastPage := int(math.Ceil(float64(total) / float64(page.Size)))
	if lastPage < 1 {
		lastPage = 1
	}
	return PageMeta{
		Total:       total,
		PerPage:     page.Size,
		CurrentPage: page.Number,
		LastPage:    lastPage,
	}
}

// PaginationLinks builds collection links for the given page. Each link
// re-serializes the active sort, filter and page[size] parameters with
// only page[number] varying; prev and next are null at the boundaries.
func PaginationLinks(baseURL string, spec *QuerySpec, meta PageMeta) *Links {
	links := &Links{
		Self:  pageURL(baseURL, spec, meta.CurrentPage),
		First: pageURL(baseURL, spec, 1),
		Last:  pageURL(baseURL, spec, meta.LastPage),
	}

	if meta.CurrentPage > 1 {
		prev := pageURL(baseURL, spec, meta.CurrentPage-1)
		links.Prev = &prev
	}
	if meta.CurrentPage < meta.LastPage {
		next := pageURL(baseURL, spec, meta.CurrentPage+1)
		links.Next = &next
	}

	return links
}

// pageURL re-serializes the spec's active query parameters pointing at
// the given page number.
func pageURL(baseURL string, spec *QuerySpec, number int) string {
	values := url.Values{}

	if len(spec.Sorts) > 0 {
		parts := make([]string, len(spec.Sorts))
		for i, s := range spec.Sorts {
			if s.Desc {
				parts[i] = "-" + s.Field
			} else {
				parts[i] = s.Field
			}
		}
		values.Set("sort", strings.Join(parts, ","))
	}

	for _, key := range spec.FilterKeys() {
		values.Set("filter["+key+"]", spec.Filters[key])
	}

	values.Set("page[size]", strconv.Itoa(spec.Page.Size))
	values.Set("page[number]", strconv.Itoa(number))

	return baseURL + "?" + values.Encode()
}
