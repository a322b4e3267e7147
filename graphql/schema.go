// Package graphql assembles the root query schema from the module fields.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/graphql/modules/dashboard"
	"github.com/grovetrack/grove-backend/graphql/modules/trees"
)

// CreateSchema mounts every module's query fields under a single root query.
func CreateSchema(db database.DBConnection) (graphql.Schema, error) {
	fields := graphql.Fields{}
	for name, field := range dashboard.GetQueryFields(db) {
		fields[name] = field
	}
	for name, field := range trees.GetQueryFields(db) {
		fields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}
