// Package dashboard defines the GraphQL types for the monitoring dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
)

// DashboardOverviewType represents the high-level metrics for the top cards
var DashboardOverviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardOverview",
	Fields: graphql.Fields{
		"institutions":  &graphql.Field{Type: graphql.Int},
		"total_trees":   &graphql.Field{Type: graphql.Int},
		"adopted_trees": &graphql.Field{Type: graphql.Int},
		"alive_trees":   &graphql.Field{Type: graphql.Int},
		"dead_trees":    &graphql.Field{Type: graphql.Int},
		"total_co2_kg":  &graphql.Field{Type: graphql.Float},
	},
})

// InstitutionCO2Type represents one row of the sequestration leaderboard
var InstitutionCO2Type = graphql.NewObject(graphql.ObjectConfig{
	Name: "InstitutionCO2",
	Fields: graphql.Fields{
		"institution": &graphql.Field{Type: graphql.String},
		"co2_kg":      &graphql.Field{Type: graphql.Float},
		"tree_count":  &graphql.Field{Type: graphql.Int},
	},
})

// StatusCountType represents the data for the status pie chart
var StatusCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StatusCount",
	Fields: graphql.Fields{
		"status": &graphql.Field{Type: graphql.String},
		"count":  &graphql.Field{Type: graphql.Int},
	},
})

// TopSpeciesType represents rows for the most-planted species table
var TopSpeciesType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TopSpecies",
	Fields: graphql.Fields{
		"scientific_name": &graphql.Field{Type: graphql.String},
		"local_name":      &graphql.Field{Type: graphql.String},
		"count":           &graphql.Field{Type: graphql.Int},
	},
})

// TimelinePointType represents one point of the cumulative planting curve
var TimelinePointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TimelinePoint",
	Fields: graphql.Fields{
		"date":             &graphql.Field{Type: graphql.String},
		"cumulative_count": &graphql.Field{Type: graphql.Int},
	},
})

// HeightBucketType represents one bar of the height histogram
var HeightBucketType = graphql.NewObject(graphql.ObjectConfig{
	Name: "HeightBucket",
	Fields: graphql.Fields{
		"lower_m": &graphql.Field{Type: graphql.Float},
		"upper_m": &graphql.Field{Type: graphql.Float},
		"count":   &graphql.Field{Type: graphql.Int},
	},
})

// InstitutionSummaryType represents the per-institution totals panel
var InstitutionSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InstitutionSummary",
	Fields: graphql.Fields{
		"institution":   &graphql.Field{Type: graphql.String},
		"total_trees":   &graphql.Field{Type: graphql.Int},
		"alive_trees":   &graphql.Field{Type: graphql.Int},
		"dead_trees":    &graphql.Field{Type: graphql.Int},
		"adopted_trees": &graphql.Field{Type: graphql.Int},
		"species_count": &graphql.Field{Type: graphql.Int},
		"total_co2_kg":  &graphql.Field{Type: graphql.Float},
		"avg_height_m":  &graphql.Field{Type: graphql.Float},
	},
})
