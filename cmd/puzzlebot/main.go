package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/m3rciful/puzzlebot/bot"
	corecmd "github.com/m3rciful/puzzlebot/core/cmd"
)

func main() {
	// Missing .env is fine, environment variables may come from elsewhere.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config/config.yaml",
		LoadConfig:        bot.LoadConfigCarrier,
		Bootstrap:         bot.Bootstrap,
	})
	if err != nil {
		log.Fatalf("puzzlebot: %v", err)
	}
}
