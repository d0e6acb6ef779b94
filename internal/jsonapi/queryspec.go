package jsonapi

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultPageSize is used when the client sends no page[size].
const DefaultPageSize = 15

// SortField is one key of a multi-key ordering.
type SortField struct {
	Field string
	Desc  bool
}

// Page is the requested slice of a collection.
type Page struct {
	Size   int
	Number int
}

// Offset returns the number of records preceding the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// QuerySpec is the parsed, validated form of a request's query
// parameters. Every field it references has already been checked against
// the resource type's allow-lists, so executors can trust it.
type QuerySpec struct {
	Type     *ResourceType
	Sorts    []SortField
	Filters  map[string]string
	Includes []string
	Fields   map[string][]string
	Page     Page
}

// HasInclude reports whether the relationship was requested.
func (qs *QuerySpec) HasInclude(name string) bool {
	for _, inc := range qs.Includes {
		if inc == name {
			return true
		}
	}
	return false
}

// FieldsFor returns the sparse fieldset requested for a type, or ok
// false when the type is unrestricted.
func (qs *QuerySpec) FieldsFor(typeName string) ([]string, bool) {
	fields, ok := qs.Fields[typeName]
	return fields, ok
}

// FilterKeys returns the active filter names in a stable order.
func (qs *QuerySpec) FilterKeys() []string {
	keys := make([]string, 0, len(qs.Filters))
	for k := range qs.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseQuery parses raw query parameters into a QuerySpec for the given
// resource type. It fails fast with a 400 Error naming the first
// offending field.
func ParseQuery(rt *ResourceType, values url.Values) (*QuerySpec, error) {
	spec := &QuerySpec{
		Type:    rt,
		Filters: make(map[string]string),
		Fields:  make(map[string][]string),
		Page:    Page{Size: DefaultPageSize, Number: 1},
	}

	if err := parseSort(rt, values.Get("sort"), spec); err != nil {
		return nil, err
	}

	if err := parseInclude(rt, values.Get("include"), spec); err != nil {
		return nil, err
	}

	for key, vals := range values {
		family, sub, ok := splitBracketKey(key)
		if !ok || len(vals) == 0 {
			continue
		}

		switch family {
		case "filter":
			if !rt.HasFilter(sub) {
				return nil, NewBadRequest(fmt.Sprintf(
					"The filter '%s' is not allowed in the '%s' resource.", sub, rt.Name))
			}
			spec.Filters[sub] = vals[0]
		case "fields":
			spec.Fields[sub] = splitList(vals[0])
		case "page":
			n, err := parsePositiveInt(sub, vals[0])
			if err != nil {
				return nil, err
			}
			switch sub {
			case "size":
				spec.Page.Size = n
			case "number":
				spec.Page.Number = n
			}
		}
	}

	return spec, nil
}

func parseSort(rt *ResourceType, raw string, spec *QuerySpec) error {
	if raw == "" {
		return nil
	}

	for _, field := range splitList(raw) {
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")

		if !rt.HasSort(field) {
			return NewBadRequest(fmt.Sprintf(
				"The sort field '%s' is not allowed in the '%s' resource.", field, rt.Name))
		}

		spec.Sorts = append(spec.Sorts, SortField{Field: field, Desc: desc})
	}

	return nil
}

func parseInclude(rt *ResourceType, raw string, spec *QuerySpec) error {
	if raw == "" {
		return nil
	}

	for _, name := range splitList(raw) {
		if !rt.HasInclude(name) {
			return NewBadRequest(fmt.Sprintf(
				"The include relationship '%s' is not allowed in the '%s' resource.", name, rt.Name))
		}
		spec.Includes = append(spec.Includes, name)
	}

	return nil
}

func parsePositiveInt(param, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, NewBadRequest(fmt.Sprintf(
			"The page[%s] parameter must be a positive integer.", param))
	}
	return n, nil
}

// splitBracketKey decomposes keys of the form "family[sub]".
func splitBracketKey(key string) (family, sub string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open < 1 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	sub = key[open+1 : len(key)-1]
	if sub == "" {
		return "", "", false
	}
	return key[:open], sub, true
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
