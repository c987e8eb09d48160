// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "GigNote-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/gignote.log")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.pagesize", 10)
	viper.SetDefault("webserver.log.enabled", true)
	viper.SetDefault("webserver.log.path", "logs/web.log")

	viper.SetDefault("database.sqlite.enabled", true)
	viper.SetDefault("database.sqlite.path", "gignote.db")
	viper.SetDefault("database.mysql.enabled", false)
	viper.SetDefault("database.mysql.username", "gignote")
	viper.SetDefault("database.mysql.password", "secret")
	viper.SetDefault("database.mysql.database", "gignote")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")

	viper.SetDefault("security.host", "")
	viper.SetDefault("security.sessionsecret", "")
	viper.SetDefault("security.schedulertoken", "")
	viper.SetDefault("security.googleauth.enabled", false)
	viper.SetDefault("security.githubauth.enabled", false)

	viper.SetDefault("ingest.sourceurl", "https://first-avenue.com/shows/?orderby=past_shows")
	viper.SetDefault("ingest.timeout", 30)
	viper.SetDefault("ingest.timezone", "America/Chicago")
	viper.SetDefault("ingest.defaultshowhour", 19)
	viper.SetDefault("ingest.venuestate", "Minnesota")
	viper.SetDefault("ingest.venuecities", map[string]string{
		"Fine Line":              "Minneapolis",
		"First Avenue":           "Minneapolis",
		"Turf Club":              "St. Paul",
		"Palace Theatre":         "St. Paul",
		"The Fitzgerald Theater": "St. Paul",
		"7th St Entry":           "St. Paul",
	})

	viper.SetDefault("media.path", "media/")
}
