package config

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	_ "modernc.org/sqlite"
)

// LoadEnv loads environment variables from a .env file. An explicit path
// wins; otherwise the usual locations are tried. Variables already set in
// the environment are left alone.
func LoadEnv(explicit string) error {
	possiblePaths := []string{
		explicit,
		".env",
		"../.env",
		os.Getenv("REDBUS_ENV"),
	}

	var loadedFile string
	for _, path := range possiblePaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			loadedFile = path
			log.Printf("Found .env file at: %s", path)
			break
		}
	}

	if loadedFile == "" {
		return fmt.Errorf("no .env file found")
	}

	file, err := os.Open(loadedFile)
	if err != nil {
		return fmt.Errorf("error opening .env file: %w", err)
	}
	defer file.Close()

	log.Printf("Loading environment variables from %s", loadedFile)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
		lower := strings.ToLower(key)
		if !strings.Contains(lower, "password") && !strings.Contains(lower, "secret") && !strings.Contains(lower, "uri") {
			log.Printf("Set environment variable: %s", key)
		}
	}
	return scanner.Err()
}

// DSN returns the data source name for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == "sqlite" {
		return c.Name
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		if strings.Contains(c.Host, "aivencloud.com") {
			sslMode = "require"
		} else {
			sslMode = "disable"
		}
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}

// InitDBWithRetry opens the listing database, retrying the connection.
func InitDBWithRetry(ctx context.Context, c DatabaseConfig) (*sql.DB, error) {
	var err error
	for i := 0; i < c.Retries; i++ {
		var db *sql.DB
		db, err = InitDB(ctx, c)
		if err == nil {
			return db, nil
		}
		log.Printf("Failed to connect to %s (attempt %d/%d): %v", c.Driver, i+1, c.Retries, err)
		if i+1 < c.Retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.RetryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", c.Driver, c.Retries, err)
}

// InitDB opens and pings the database and checks that the listing table
// exists.
func InitDB(ctx context.Context, c DatabaseConfig) (*sql.DB, error) {
	log.Printf("DB Driver: %s", c.Driver)
	if c.Driver == "postgres" && c.URL == "" {
		log.Printf("DB Host: %s", c.Host)
		log.Printf("DB Port: %s", c.Port)
		log.Printf("DB Name: %s", c.Name)
		log.Printf("DB User: %s", c.User)
	}

	db, err := sql.Open(c.Driver, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	db.SetConnMaxLifetime(c.ConnLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Table name is validated as an identifier by the config loader.
	if _, err := db.ExecContext(pingCtx, "SELECT 1 FROM "+c.Table+" WHERE 1=0"); err != nil {
		db.Close()
		return nil, fmt.Errorf("table %s is not readable: %w", c.Table, err)
	}

	log.Printf("Verified %s table exists", c.Table)
	return db, nil
}

// ConnectMongo connects to MongoDB for feedback storage.
func ConnectMongo(ctx context.Context, c MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(c.URI).
		SetMaxPoolSize(20).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}
	log.Printf("Successfully connected to MongoDB database: %s", c.Database)
	return client, nil
}

// CloseDB releases the database and MongoDB handles. Either may be nil.
func CloseDB(db *sql.DB, client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if db != nil {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}
	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Error closing MongoDB connection: %v", err)
		}
	}
}
