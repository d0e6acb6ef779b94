// Package jsonapi implements the JSON:API resource and query layer: the
// static resource-type registry, the query-parameter parser, the
// document builder and the error document formatter.
package jsonapi

// MediaType is the JSON:API media type, required on requests and
// responses.
const MediaType = "application/vnd.api+json"

// ResourceType is the static metadata for one resource type. Everything
// the query parser and document builder need to know about a type is
// declared here; there is no runtime introspection.
type ResourceType struct {
	// Name is the JSON:API type name, also used in URLs.
	Name string

	// IDField is the name of the identifier field, always projected by
	// the query executor even under a sparse fieldset.
	IDField string

	// Attributes is the full attribute set, used to bound sparse
	// fieldsets.
	Attributes []string

	// AllowedFilters, AllowedSorts and AllowedIncludes are the
	// allow-lists consulted by the query parser. Anything else is a
	// 400.
	AllowedFilters  []string
	AllowedSorts    []string
	AllowedIncludes []string
}

// HasFilter reports whether the field may be filtered on.
func (rt *ResourceType) HasFilter(field string) bool { return contains(rt.AllowedFilters, field) }

// HasSort reports whether the field may be sorted on.
func (rt *ResourceType) HasSort(field string) bool { return contains(rt.AllowedSorts, field) }

// HasInclude reports whether the relationship may be included.
func (rt *ResourceType) HasInclude(name string) bool { return contains(rt.AllowedIncludes, name) }

// HasAttribute reports whether the type declares the attribute.
func (rt *ResourceType) HasAttribute(name string) bool { return contains(rt.Attributes, name) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// The registry. Resource types are read-only after init.
var (
	Appointments = &ResourceType{
		Name:            "appointments",
		IDField:         "id",
		Attributes:      []string{"date", "start_time", "email"},
		AllowedFilters:  []string{"date", "year", "month", "start_time", "email", "categories", "authors"},
		AllowedSorts:    []string{"date", "start_time"},
		AllowedIncludes: []string{"category", "author", "comments"},
	}

	Categories = &ResourceType{
		Name:       "categories",
		IDField:    "id",
		Attributes: []string{"name"},
	}

	Authors = &ResourceType{
		Name:           "authors",
		IDField:        "id",
		Attributes:     []string{"name", "email"},
		AllowedFilters: []string{"name"},
		AllowedSorts:   []string{"name"},
	}

	Comments = &ResourceType{
		Name:            "comments",
		IDField:         "id",
		Attributes:      []string{"body"},
		AllowedFilters:  []string{"body", "authors", "appointments"},
		AllowedIncludes: []string{"appointment", "author"},
	}
)

var registry = map[string]*ResourceType{
	Appointments.Name: Appointments,
	Categories.Name:   Categories,
	Authors.Name:      Authors,
	Comments.Name:     Comments,
}

// TypeByName looks a resource type up by its JSON:API name.
func TypeByName(name string) (*ResourceType, bool) {
	rt, ok := registry[name]
	return rt, ok
}
