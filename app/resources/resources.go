// Package resources defines the JSON shapes of storefront models, shared by
// the REST controllers and the GraphQL catalog.
package resources

import (
	"github.com/gamevault/storefront/app/cart"
	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/resource"
)

// Product renders products with image paths resolved by imageURL.
func Product(imageURL func(string) string) resource.Transformer[models.Product] {
	return func(p models.Product) resource.Map {
		var image any
		if p.Image != "" {
			image = imageURL(p.Image)
		}
		return resource.Map{
			"id":           p.ID,
			"name":         p.Name,
			"release_date": p.ReleaseDate.Format("2006-01-02"),
			"platform":     string(p.Platform),
			"format":       string(p.Format),
			"condition":    string(p.Condition),
			"genres":       resource.Collection(p.Genres, Genre),
			"description":  p.Description,
			"price":        p.Price.String(),
			"stock":        p.Stock,
			"in_stock":     p.Stock > 0,
			"image_url":    image,
			"created_at":   p.CreatedAt,
			"updated_at":   p.UpdatedAt,
		}
	}
}

func Genre(g models.Genre) resource.Map {
	return resource.Map{"id": g.ID, "name": g.Name}
}

func User(u models.User) resource.Map {
	return resource.Map{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	}
}

// Summary renders a priced cart. Missing products have a null
// product.
func Summary(imageURL func(string) string) resource.Transformer[cart.Summary] {
	products := Product(imageURL)
	line := func(l cart.Line) resource.Map {
		var product any
		if l.Product != nil {
			product = products(*l.Product)
		}
		return resource.Map{
			"product_id":  l.ProductID,
			"product":     product,
			"quantity":    l.Quantity,
			"unit_price":  l.UnitPrice.String(),
			"total_price": l.TotalPrice.String(),
			"status":      l.Status.String(),
		}
	}
	return func(s cart.Summary) resource.Map {
		return resource.Map{
			"lines":          resource.Collection(s.Lines, line),
			"total_quantity": s.TotalQuantity,
			"products_total": s.ProductsTotal.String(),
			"shipping":       s.Shipping.String(),
			"grand_total":    s.GrandTotal.String(),
			"has_issues":     s.HasIssues,
		}
	}
}
