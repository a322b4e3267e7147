// Package admin implements the REST API handlers for admin operations.
// It provides endpoints for CO2 recompute processing and status monitoring.
package admin

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// CO2Recomputer re-derives every stored CO2 estimate from the current
// species reference data.
type CO2Recomputer interface {
	RecomputeAllCO2(ctx context.Context, progress func(done, total int)) (int, error)
}

// RecomputeStatusResponse reports the state of the background job
type RecomputeStatusResponse struct {
	Running bool   `json:"running"`
	Status  string `json:"status"`
}

// Job state shared between the trigger handler, the status handler, and the
// worker goroutine.
var (
	recomputeMu       sync.Mutex
	recomputeRunning  = false
	recomputeProgress = ""
)

func setRecomputeState(running bool, progress string) {
	recomputeMu.Lock()
	recomputeRunning = running
	recomputeProgress = progress
	recomputeMu.Unlock()
}

// PostRecomputeCO2 triggers the CO2 recompute job
func PostRecomputeCO2(recomputer CO2Recomputer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recomputeMu.Lock()
		if recomputeRunning {
			progress := recomputeProgress
			recomputeMu.Unlock()
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Recompute already in progress",
				"status":  progress,
			})
		}
		recomputeRunning = true
		recomputeProgress = "Starting CO2 recompute..."
		recomputeMu.Unlock()

		go runRecompute(recomputer)

		return c.JSON(fiber.Map{
			"success": true,
			"message": "CO2 recompute started",
			"status":  "processing",
		})
	}
}

// GetRecomputeStatus returns the current status of any running recompute
func GetRecomputeStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recomputeMu.Lock()
		resp := RecomputeStatusResponse{
			Running: recomputeRunning,
			Status:  recomputeProgress,
		}
		recomputeMu.Unlock()
		return c.JSON(resp)
	}
}

func runRecompute(recomputer CO2Recomputer) {
	log.Printf("Starting CO2 recompute...")

	updated, err := recomputer.RecomputeAllCO2(context.Background(), func(done, total int) {
		setRecomputeState(true, fmt.Sprintf("Processing tree %d/%d", done, total))
	})
	if err != nil {
		setRecomputeState(false, fmt.Sprintf("Failed: %v", err))
		log.Printf("CO2 recompute failed: %v", err)
		return
	}

	setRecomputeState(false, fmt.Sprintf("Complete! %d trees updated", updated))
	log.Printf("CO2 recompute complete: %d trees updated", updated)
}
