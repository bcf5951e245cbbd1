package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Init wires viper to the process environment and to the root command's
// persistent flags. A .env file in the working directory is loaded when
// present; a missing file is not an error.
func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load()
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeySaltAPIURL, "http://host.docker.internal:8000")
	viper.SetDefault(KeySaltAPIEauth, "pam")
	viper.SetDefault(KeySaltAPITimeout, "30s")
	viper.SetDefault(KeySaltAPILoginTimeout, "10s")
	viper.SetDefault(KeySaltAPITLSSkipVerify, false)
	viper.SetDefault(KeyStartupProbe, true)
	viper.SetDefault(KeyLogLevel, "info")
}

func SaltAPIURL() string          { return viper.GetString(KeySaltAPIURL) }
func SaltAPIUsername() string     { return viper.GetString(KeySaltAPIUsername) }
func SaltAPIPassword() string     { return viper.GetString(KeySaltAPIPassword) }
func SaltAPIEauth() string        { return viper.GetString(KeySaltAPIEauth) }
func SaltAPITimeout() string      { return viper.GetString(KeySaltAPITimeout) }
func SaltAPILoginTimeout() string { return viper.GetString(KeySaltAPILoginTimeout) }
func SaltAPITLSSkipVerify() bool  { return viper.GetBool(KeySaltAPITLSSkipVerify) }
func StartupProbe() bool          { return viper.GetBool(KeyStartupProbe) }
func LogLevel() string            { return viper.GetString(KeyLogLevel) }
