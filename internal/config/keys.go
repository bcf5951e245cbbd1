package config

const (
	KeySaltAPIURL           = "salt_api_url"
	KeySaltAPIUsername      = "salt_api_username"
	KeySaltAPIPassword      = "salt_api_password"
	KeySaltAPIEauth         = "salt_api_eauth"
	KeySaltAPITimeout       = "salt_api_timeout"
	KeySaltAPILoginTimeout  = "salt_api_login_timeout"
	KeySaltAPITLSSkipVerify = "salt_api_tls_skip_verify"
	KeyStartupProbe         = "startup_probe"
	KeyLogLevel             = "log_level"
)
