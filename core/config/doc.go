// Package config provides configuration management for gtm-sync.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - GTM: Tag Manager API endpoint, credentials, and retry budgets
//   - Storage: S3/MinIO credentials and bucket settings for snapshot uploads
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.GTM.AccountID)
package config
