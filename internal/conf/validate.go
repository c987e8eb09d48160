package conf

import (
	"fmt"
	"time"
)

// ValidateSettings checks the loaded settings for obvious misconfiguration.
func ValidateSettings(settings *Settings) error {
	if settings.Database.SQLite.Enabled && settings.Database.MySQL.Enabled {
		return fmt.Errorf("only one database can be enabled at a time")
	}
	if !settings.Database.SQLite.Enabled && !settings.Database.MySQL.Enabled {
		return fmt.Errorf("no database enabled")
	}

	if settings.WebServer.Enabled {
		if settings.WebServer.Port == "" {
			return fmt.Errorf("webserver.port must be set when the web server is enabled")
		}
		if settings.WebServer.PageSize < 1 {
			return fmt.Errorf("webserver.pagesize must be at least 1, got %d", settings.WebServer.PageSize)
		}
	}

	if err := validateIngestSettings(&settings.Ingest); err != nil {
		return err
	}

	for name, provider := range map[string]SocialProvider{
		"googleauth": settings.Security.GoogleAuth,
		"githubauth": settings.Security.GithubAuth,
	} {
		if provider.Enabled && (provider.ClientID == "" || provider.ClientSecret == "") {
			return fmt.Errorf("security.%s requires clientid and clientsecret", name)
		}
	}

	return nil
}

func validateIngestSettings(ingest *IngestSettings) error {
	if ingest.SourceURL == "" {
		return fmt.Errorf("ingest.sourceurl must be set")
	}
	if ingest.Timeout < 1 {
		return fmt.Errorf("ingest.timeout must be at least 1 second, got %d", ingest.Timeout)
	}
	if ingest.DefaultShowHour < 0 || ingest.DefaultShowHour > 23 {
		return fmt.Errorf("ingest.defaultshowhour must be between 0 and 23, got %d", ingest.DefaultShowHour)
	}
	// Fail at startup rather than on the first pipeline run
	if _, err := time.LoadLocation(ingest.Timezone); err != nil {
		return fmt.Errorf("ingest.timezone %q is not a valid IANA timezone: %w", ingest.Timezone, err)
	}
	return nil
}
