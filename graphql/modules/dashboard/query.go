// Package dashboard defines the GraphQL queries for the dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
	"github.com/grovetrack/grove-backend/database"
)

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		// Section 1: Top Cards (Overview)
		"dashboardOverview": &graphql.Field{
			Type: DashboardOverviewType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveOverview(p.Context, db)
			},
		},
		// Section 2: Sequestration Leaderboard
		"co2ByInstitution": &graphql.Field{
			Type: graphql.NewList(InstitutionCO2Type),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveCO2ByInstitution(p.Context, db)
			},
		},
		// Section 3: Status Pie Chart
		"statusDistribution": &graphql.Field{
			Type: graphql.NewList(StatusCountType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveStatusDistribution(p.Context, db)
			},
		},
		// Section 4: Most-Planted Species Table
		"topSpecies": &graphql.Field{
			Type: graphql.NewList(TopSpeciesType),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				limit := p.Args["limit"].(int)
				return ResolveTopSpecies(p.Context, db, limit)
			},
		},
		// Section 5: Cumulative Planting Curve (per institution)
		"plantingTimeline": &graphql.Field{
			Type: graphql.NewList(TimelinePointType),
			Args: graphql.FieldConfigArgument{
				"institution": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				institution := p.Args["institution"].(string)
				return ResolvePlantingTimeline(p.Context, db, institution)
			},
		},
		// Section 6: Height Histogram (per institution)
		"heightDistribution": &graphql.Field{
			Type: graphql.NewList(HeightBucketType),
			Args: graphql.FieldConfigArgument{
				"institution": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"buckets":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 8},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				institution := p.Args["institution"].(string)
				buckets := p.Args["buckets"].(int)
				return ResolveHeightDistribution(p.Context, db, institution, buckets)
			},
		},
		// Section 7: Single-Institution Totals Panel
		"institutionSummary": &graphql.Field{
			Type: InstitutionSummaryType,
			Args: graphql.FieldConfigArgument{
				"institution": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				institution := p.Args["institution"].(string)
				return ResolveInstitutionSummary(p.Context, db, institution)
			},
		},
	}
}
