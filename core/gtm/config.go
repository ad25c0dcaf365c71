package gtm

// Config holds configuration for the Tag Manager API client.
type Config struct {
	// Endpoint is the API base URL.
	Endpoint string `mapstructure:"endpoint" default:"https://tagmanager.googleapis.com/tagmanager/v2"`
	// AccessToken is the OAuth2 bearer token used for all requests.
	AccessToken string `mapstructure:"access_token" default:""`
	// AccountID is the target Tag Manager account.
	AccountID string `mapstructure:"account_id" default:""`
	// ContainerID is the target container within the account.
	ContainerID string `mapstructure:"container_id" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ReadRetries is the retry budget for list/get calls.
	ReadRetries int `mapstructure:"read_retries" default:"4"`
	// WriteRetries is the retry budget for mutating calls.
	WriteRetries int `mapstructure:"write_retries" default:"2"`
}
