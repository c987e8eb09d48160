// config.go: settings struct and functions to load and save the settings.
package conf

import (
	"crypto/rand"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig contains settings for a rotated log file.
type LogConfig struct {
	Enabled bool   // true to enable file logging
	Path    string // path to log file
}

// MainSettings contains top level application settings.
type MainSettings struct {
	Name string    // name of this node, used for identification
	Log  LogConfig // main log settings
}

// WebServerSettings contains settings for the HTTP server.
type WebServerSettings struct {
	Enabled  bool   // true to enable web server
	Port     string // port for HTTP server
	PageSize int    // items per page for paginated listings
	Log      LogConfig
}

// SQLiteSettings contains settings for the SQLite database.
type SQLiteSettings struct {
	Enabled bool   // true to enable SQLite
	Path    string // path to database file
}

// MySQLSettings contains settings for the MySQL database.
type MySQLSettings struct {
	Enabled  bool   // true to enable MySQL
	Username string // username for MySQL
	Password string // password for MySQL
	Database string // database name
	Host     string // host for MySQL
	Port     string // port for MySQL
}

// DatabaseSettings contains database connection settings.
type DatabaseSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// SocialProvider contains settings for one OAuth identity provider.
type SocialProvider struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// SecuritySettings contains authentication and session settings.
type SecuritySettings struct {
	Host           string         // external hostname, used in redirect URIs
	SessionSecret  string         // secret for cookie session store
	SchedulerToken string         // shared secret accepted from the trusted scheduler
	GoogleAuth     SocialProvider // Google OAuth login
	GithubAuth     SocialProvider // GitHub OAuth login
}

// IngestSettings contains settings for the show data ingest pipeline.
type IngestSettings struct {
	SourceURL       string            // listing page to scrape
	Timeout         int               // fetch timeout in seconds
	Timezone        string            // IANA timezone of the source region
	DefaultShowHour int               // assumed local start hour when the page has no time
	VenueState      string            // state attached to every scraped venue
	VenueCities     map[string]string // known venue name to city mapping
}

// MediaSettings contains settings for stored user images.
type MediaSettings struct {
	Path string // directory for uploaded note photos and avatars
}

// Settings is the top level configuration for the application.
type Settings struct {
	Debug bool // true to enable debug mode

	Main      MainSettings
	WebServer WebServerSettings
	Database  DatabaseSettings
	Security  SecuritySettings
	Ingest    IngestSettings
	Media     MediaSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	// If the session secret is not set, generate a random one
	if viper.GetString("security.sessionsecret") == "" {
		viper.Set("security.sessionsecret", GenerateRandomSecret())
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// GenerateRandomSecret returns a URL-safe random string suitable for use
// as a session secret.
func GenerateRandomSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Printf("Error generating random secret: %v", err)
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(key)
}
