package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort       string
	CredentialsFile  string
	AttachmentBucket string
	HubSecret        string
	HubURL           string
	DiscordPublicKey string
	DiscordAppID     string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		CredentialsFile:  getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		AttachmentBucket: getEnv("ATTACHMENT_BUCKET", "attachments"),
		HubSecret:        getEnv("HUB_SECRET", "supersecretkey"),
		HubURL:           getEnv("HUB_URL", ""),
		DiscordPublicKey: getEnv("DISCORD_PUBLIC_KEY", ""),
		DiscordAppID:     getEnv("DISCORD_APP_ID", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
