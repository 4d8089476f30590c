// Package graph exposes a read-only GraphQL view of the catalog, so
// storefront frontends can shape their own product queries without new
// REST endpoints. All mutations stay on the REST surface.
package graph

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/kalakriti/app/services"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
)

func productType() *graphql.Object {
	discountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Discount",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"percentage": &graphql.Field{Type: graphql.Int},
			"active":     &graphql.Field{Type: graphql.Boolean},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: graphql.String},
			"price": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if v, ok := p.Source.(services.ProductView); ok {
						return int(v.Price), nil
					}
					return nil, nil
				},
			},
			"effectivePrice": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if v, ok := p.Source.(services.ProductView); ok {
						return int(v.EffectivePrice), nil
					}
					return nil, nil
				},
			},
			"previewKeys": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if v, ok := p.Source.(services.ProductView); ok {
						return []string(v.PreviewKeys), nil
					}
					return nil, nil
				},
			},
			"discount": &graphql.Field{
				Type: discountType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if v, ok := p.Source.(services.ProductView); ok && v.Discount != nil {
						return *v.Discount, nil
					}
					return nil, nil
				},
			},
		},
	})
}

// NewSchema builds the catalog query schema over the product service.
func NewSchema(products *services.ProductService) (graphql.Schema, error) {
	product := productType()

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(product),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					category, _ := p.Args["category"].(string)
					page, _ := p.Args["page"].(int)
					limit, _ := p.Args["limit"].(int)
					views, _, err := products.List(p.Context, category, page, limit)
					return views, err
				},
			},
			"product": &graphql.Field{
				Type: product,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					return products.Get(p.Context, id)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

// Handler serves POSTed GraphQL queries against the schema.
func Handler(schema graphql.Schema) http.HandlerFunc {
	type request struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var body request
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  body.Query,
			VariableValues: body.Variables,
			Context:        r.Context(),
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
