// Package trees defines the GraphQL types for tree and species records.
package trees

import (
	"github.com/graphql-go/graphql"
)

// TreeType mirrors the JSON shape of a tree record
var TreeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Tree",
	Fields: graphql.Fields{
		"tree_id":         &graphql.Field{Type: graphql.String},
		"institution":     &graphql.Field{Type: graphql.String},
		"local_name":      &graphql.Field{Type: graphql.String},
		"scientific_name": &graphql.Field{Type: graphql.String},
		"student_name":    &graphql.Field{Type: graphql.String},
		"date_planted":    &graphql.Field{Type: graphql.String},
		"tree_stage":      &graphql.Field{Type: graphql.String},
		"rcd_cm":          &graphql.Field{Type: graphql.Float},
		"dbh_cm":          &graphql.Field{Type: graphql.Float},
		"height_m":        &graphql.Field{Type: graphql.Float},
		"latitude":        &graphql.Field{Type: graphql.Float},
		"longitude":       &graphql.Field{Type: graphql.Float},
		"co2_kg":          &graphql.Field{Type: graphql.Float},
		"status":          &graphql.Field{Type: graphql.String},
		"county":          &graphql.Field{Type: graphql.String},
		"sub_county":      &graphql.Field{Type: graphql.String},
		"ward":            &graphql.Field{Type: graphql.String},
		"adopter_name":    &graphql.Field{Type: graphql.String},
	},
})

// SpeciesType mirrors one row of the species reference table
var SpeciesType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Species",
	Fields: graphql.Fields{
		"scientific_name": &graphql.Field{Type: graphql.String},
		"local_name":      &graphql.Field{Type: graphql.String},
		"wood_density":    &graphql.Field{Type: graphql.Float},
		"benefits":        &graphql.Field{Type: graphql.String},
	},
})
