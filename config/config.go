package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config collects everything read from the environment at startup.
type Config struct {
	Addr      string
	UploadDir string

	// CatalogBackend picks the metadata store: "file" keeps every
	// record in one JSON document, "mongo" uses a MongoDB collection.
	CatalogBackend string
	CatalogFile    string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:            getenv("ADDR", ":8080"),
		UploadDir:       getenv("UPLOAD_DIR", "./.uploads"),
		CatalogBackend:  getenv("CATALOG_BACKEND", "file"),
		CatalogFile:     getenv("CATALOG_FILE", "./photos.json"),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getenv("MONGO_DB", "wedding_album"),
		MongoCollection: getenv("MONGO_COLLECTION", "photos"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
