// Package util provides utility functions for the backend.
package util

import "math"

// DefaultWoodDensity is the wood density (g/cm3) substituted when a species
// has no density on record.
const DefaultWoodDensity = 0.6

// DensityResolver looks up a species' wood density in g/cm3. The boolean
// reports whether the species exists in the reference table.
type DensityResolver func(speciesKey string) (float64, bool)

// EstimateCO2 estimates the mass of CO2 (kg) a tree has sequestered, from
// its species' wood density and a single stem measurement.
//
// Estimation method:
//   - DBH present:  AGB = 0.0509 * density * dbh^2.5
//   - RCD present:  AGB = 0.042 * rcd^2.5 (seedling curve, density plays no part)
//   - BGB = 0.2 * AGB
//   - carbon = 0.47 * (AGB + BGB)
//   - CO2 = carbon * 3.67 (molecular-weight ratio of CO2 to carbon)
//
// DBH wins when both measurements are set. With neither, the tree counts as
// unmeasured and the result is 0.0. A species missing from the reference
// table falls back to DefaultWoodDensity. EstimateCO2 never fails; the
// result is rounded to two decimals, ties to even.
func EstimateCO2(resolve DensityResolver, speciesKey string, rcdCM, dbhCM *float64) float64 {
	density := DefaultWoodDensity
	if resolve != nil {
		if d, ok := resolve(speciesKey); ok {
			density = d
		}
	}
	return CO2FromDensity(density, rcdCM, dbhCM)
}

// CO2FromDensity is EstimateCO2 with the species lookup already resolved.
func CO2FromDensity(density float64, rcdCM, dbhCM *float64) float64 {
	var agb float64
	switch {
	case dbhCM != nil:
		agb = 0.0509 * density * math.Pow(*dbhCM, 2.5)
	case rcdCM != nil:
		agb = 0.042 * math.Pow(*rcdCM, 2.5)
	default:
		return 0.0
	}

	bgb := 0.2 * agb
	carbon := 0.47 * (agb + bgb)

	return Round2(carbon * 3.67)
}
