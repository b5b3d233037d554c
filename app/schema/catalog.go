// Package schema defines the read-only GraphQL view of the catalog.
package schema

import (
	"errors"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/gamevault/storefront/app/catalog"
	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/app/resources"
	"github.com/gamevault/storefront/app/services"
	"github.com/gamevault/storefront/pkg/resource"
)

var genreType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Genre",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

// Prices are decimal strings so no precision is lost in transit.
var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"release_date": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"platform":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"format":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"condition":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"genres":       &graphql.Field{Type: graphql.NewList(genreType)},
		"description":  &graphql.Field{Type: graphql.String},
		"price":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"stock":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"in_stock":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"image_url":    &graphql.Field{Type: graphql.String},
	},
})

// Query builds the root query object over svc.
func Query(svc *services.CatalogService) *graphql.Object {
	product := resources.Product(svc.ImageURL)

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type:        graphql.NewList(productType),
				Description: "Catalog products matching every given filter, newest first.",
				Args: graphql.FieldConfigArgument{
					"q":         &graphql.ArgumentConfig{Type: graphql.String},
					"platform":  &graphql.ArgumentConfig{Type: graphql.String},
					"format":    &graphql.ArgumentConfig{Type: graphql.String},
					"genres":    &graphql.ArgumentConfig{Type: graphql.NewList(graphql.Int)},
					"price_min": &graphql.ArgumentConfig{Type: graphql.Int},
					"price_max": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					products, err := svc.List(p.Context, criteriaFromArgs(p.Args))
					if err != nil {
						return nil, err
					}
					return resource.Collection(products, product), nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					found, err := svc.Get(p.Context, uint(id))
					if errors.Is(err, models.ErrProductNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return product(found), nil
				},
			},
			"genres": &graphql.Field{
				Type: graphql.NewList(genreType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					genres, err := svc.Genres(p.Context)
					if err != nil {
						return nil, err
					}
					return resource.Collection(genres, resources.Genre), nil
				},
			},
		},
	})
}

func criteriaFromArgs(args map[string]any) catalog.Criteria {
	var c catalog.Criteria
	c.Text, _ = args["q"].(string)
	if s, ok := args["platform"].(string); ok {
		c.Platform = models.Platform(strings.ToUpper(s))
	}
	if s, ok := args["format"].(string); ok {
		c.Format = models.Format(strings.ToUpper(s))
	}
	if ids, ok := args["genres"].([]any); ok {
		for _, raw := range ids {
			if id, ok := raw.(int); ok && id > 0 {
				c.GenreIDs = append(c.GenreIDs, uint(id))
			}
		}
	}
	c.PriceMin = price(args["price_min"])
	c.PriceMax = price(args["price_max"])
	return c.Normalize()
}

func price(raw any) *int64 {
	n, ok := raw.(int)
	if !ok {
		return nil
	}
	v := int64(n)
	return &v
}
