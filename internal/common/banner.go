package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the worker startup banner and logs the same
// information through the structured logger.
func PrintBanner(config *Config, logger arbor.ILogger) {
	version := GetVersion()

	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(72)

	fmt.Printf("\n")
	b.PrintTopLine()
	b.PrintCenteredText("JOBWORKER")
	b.PrintCenteredText("Job Discovery Pipeline Engine")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", version, 18)
	b.PrintKeyValue("Workers", fmt.Sprintf("%d", config.Server.WorkerCount), 18)
	b.PrintKeyValue("Storage", config.Storage.Badger.Path, 18)
	b.PrintKeyValue("Scheduler", fmt.Sprintf("enabled=%t", config.Scheduler.Enabled), 18)
	b.PrintKeyValue("Strike threshold", fmt.Sprintf("%d", config.Filter.StrikeThreshold), 18)
	b.PrintBottomLine()
	fmt.Printf("\n")

	logger.Info().
		Str("version", version).
		Int("workers", config.Server.WorkerCount).
		Str("storage_path", config.Storage.Badger.Path).
		Bool("scheduler_enabled", config.Scheduler.Enabled).
		Int("strike_threshold", config.Filter.StrikeThreshold).
		Msg("jobworker started")
}

// PrintShutdownBanner displays the shutdown banner and logs the event.
func PrintShutdownBanner(logger arbor.ILogger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(42)

	b.PrintTopLine()
	b.PrintCenteredText("SHUTTING DOWN")
	b.PrintCenteredText("JOBWORKER")
	b.PrintBottomLine()
	fmt.Println()

	logger.Info().Msg("jobworker shutting down")
}

// PrintSuccess prints a success message in green and logs it.
func PrintSuccess(message string) {
	logger := GetLogger()
	fmt.Printf("%s✓ %s%s\n", banner.ColorGreen, message, banner.ColorReset)
	logger.Info().Str("type", "success").Msg(message)
}

// PrintError prints an error message in red and logs it.
func PrintError(message string) {
	logger := GetLogger()
	fmt.Printf("%s✗ %s%s\n", banner.ColorRed, message, banner.ColorReset)
	logger.Error().Str("type", "error").Msg(message)
}
