package bower

import "github.com/goliatone/go-bower/internal/siteconfig"

var (
	ErrContentDirRequired     = siteconfig.ErrContentDirRequired
	ErrThemeDirRequired       = siteconfig.ErrThemeDirRequired
	ErrOutputDirRequired      = siteconfig.ErrOutputDirRequired
	ErrOutputIsContentDir     = siteconfig.ErrOutputIsContentDir
	ErrWorkersInvalid         = siteconfig.ErrWorkersInvalid
	ErrRenderTimeout          = siteconfig.ErrRenderTimeout
	ErrLoggingProviderUnknown = siteconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = siteconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = siteconfig.ErrLoggingFormatInvalid
)

type (
	Config         = siteconfig.Config
	SiteConfig     = siteconfig.SiteConfig
	BuildConfig    = siteconfig.BuildConfig
	MarkdownConfig = siteconfig.MarkdownConfig
	LoggingConfig  = siteconfig.LoggingConfig
)

// DefaultConfig returns the settings used when no site file is given.
func DefaultConfig() Config {
	return siteconfig.DefaultConfig()
}

// LoadConfig reads an HCL site file. Relative directories resolve against
// the directory holding the file.
func LoadConfig(path string) (Config, error) {
	return siteconfig.Load(path)
}
