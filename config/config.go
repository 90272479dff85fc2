package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the player configuration.
// Everything has a usable default so the binary runs out of the box
// against a locally deployed catalog API.
type Config struct {
	CatalogBaseURL string // NetEase-compatible catalog API, e.g. http://localhost:3000
	CatalogCookie  string // MUSIC_U cookie for authenticated endpoints

	DataDir  string // Base directory for all persisted player data
	MusicDir string // Subdirectory for downloaded audio: DataDir/music
	LyricDir string // Subdirectory for cooked lyrics: DataDir/lyric
	CoverDir string // Subdirectory for cached covers: DataDir/cover

	OnlineBitrate   int // kbps requested when streaming
	DownloadBitrate int // kbps requested when downloading
	CoverSize       int // default cover edge length in pixels

	// StoreBackend selects where the small JSON documents live: "file" or "redis".
	// Audio/lyric/cover payloads always live on the local filesystem.
	StoreBackend string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	LogPath  string
	LogLevel string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		CatalogBaseURL: getEnv("CATALOG_BASE_URL", "http://localhost:3000"),
		CatalogCookie:  os.Getenv("CATALOG_COOKIE"),

		DataDir:  dataDir,
		MusicDir: filepath.Join(dataDir, "music"),
		LyricDir: filepath.Join(dataDir, "lyric"),
		CoverDir: filepath.Join(dataDir, "cover"),

		OnlineBitrate:   getEnvInt("ONLINE_BITRATE", 320),
		DownloadBitrate: getEnvInt("DOWNLOAD_BITRATE", 320),
		CoverSize:       getEnvInt("COVER_SIZE", 300),

		StoreBackend: getEnv("STORE_BACKEND", "file"),

		// Redis配置，使用默认值
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LogPath:  getEnv("LOG_PATH", filepath.Join(dataDir, "logs", "player.log")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}
