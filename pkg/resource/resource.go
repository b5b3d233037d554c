// Package resource shapes models into the maps the API returns.
//
// A Transformer picks exactly which fields leave the server:
//
//	func GenreResource(g models.Genre) resource.Map {
//	    return resource.Map{"id": g.ID, "name": g.Name}
//	}
//
//	c.Success(resource.Collection(genres, GenreResource))
//
// The same maps back the GraphQL catalog, whose default resolver reads
// fields out of them by name.
package resource

// Map is the output of a Transformer.
type Map = map[string]any

// Transformer converts one value into a Map.
type Transformer[T any] func(T) Map

// One transforms a single value.
func One[T any](v T, t Transformer[T]) Map { return t(v) }

// Collection transforms every item. An empty input yields an empty, non-nil
// slice so it encodes as [] rather than null.
func Collection[T any](items []T, t Transformer[T]) []Map {
	out := make([]Map, 0, len(items))
	for _, item := range items {
		out = append(out, t(item))
	}
	return out
}

// WithMeta wraps data with a sibling "meta" object.
func WithMeta(data any, meta Map) Map {
	return Map{"items": data, "meta": meta}
}
