// Package util provides utility functions for the carbon estimation and
// identifier allocation logic, and for extracting metadata from the environment.
//
//revive:disable-next-line:var-naming
package util

import (
	"math"
	"os"
	"strings"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// IsEmpty checks if a string is empty or contains only whitespace
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// IsNotEmpty checks if a string is not empty
func IsNotEmpty(s string) bool {
	return !IsEmpty(s)
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// Round2 rounds to two decimal places, ties to even.
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}
