package controllers

import (
	"log"

	"portfolio-assistant/services"
)

// Controller handles HTTP request processing for the assistant API.
type Controller struct {
	assistant      *services.Assistant
	limiter        services.RateLimiter
	discordService *services.DiscordService
}

// NewController creates a new controller instance.
func NewController(assistant *services.Assistant, limiter services.RateLimiter) *Controller {
	return &Controller{
		assistant:      assistant,
		limiter:        limiter,
		discordService: services.NewDiscordService(assistant),
	}
}

// StartServices starts all background services (Discord front-end, etc.)
func (c *Controller) StartServices(enableDiscord bool) error {
	if enableDiscord && c.discordService.IsEnabled() {
		if err := c.discordService.Start(); err != nil {
			log.Printf("Failed to start Discord service: %v", err)
			return err
		}
	} else if enableDiscord && !c.discordService.IsEnabled() {
		log.Printf("Discord service requested but not properly configured (missing DISCORD_BOT_TOKEN)")
	} else {
		log.Printf("Discord service disabled via command line flag")
	}

	return nil
}

// StopServices stops all background services
func (c *Controller) StopServices() error {
	if c.discordService != nil {
		return c.discordService.Stop()
	}
	return nil
}
