// Package trees defines the GraphQL queries for tree records.
package trees

import (
	"github.com/graphql-go/graphql"
	"github.com/grovetrack/grove-backend/database"
)

// GetQueryFields returns the tree queries to be mounted in the root schema.
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		"trees": &graphql.Field{
			Type: graphql.NewList(TreeType),
			Args: graphql.FieldConfigArgument{
				"institution": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"status":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"limit":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				institution := p.Args["institution"].(string)
				status := p.Args["status"].(string)
				limit := p.Args["limit"].(int)
				return ResolveTrees(p.Context, db, institution, status, limit)
			},
		},
		"tree": &graphql.Field{
			Type: TreeType,
			Args: graphql.FieldConfigArgument{
				"tree_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				treeID := p.Args["tree_id"].(string)
				return ResolveTree(p.Context, db, treeID)
			},
		},
		"speciesList": &graphql.Field{
			Type: graphql.NewList(SpeciesType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveSpeciesList(p.Context, db)
			},
		},
	}
}
