package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers default configuration values with Viper.
func setDefaults() {
	viper.SetDefault("main.name", "VeriTrack")
	viper.SetDefault("main.loglevel", "info")

	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.path", "veritrack.db")

	viper.SetDefault("email.provider", "log")
	viper.SetDefault("email.from", "alerts@veritrack.local")
	viper.SetDefault("email.mailgunbaseurl", "https://api.mailgun.net/v3")

	viper.SetDefault("alerting.defaultlookback", time.Hour)
	viper.SetDefault("alerting.cycletimeout", 5*time.Minute)
	viper.SetDefault("alerting.emailsperminute", 60)
	viper.SetDefault("alerting.recipientcachettl", 5*time.Minute)
	viper.SetDefault("alerting.interval", 0)

	viper.SetDefault("api.enabled", true)
	viper.SetDefault("api.listen", ":8316")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")
}
