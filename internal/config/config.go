package config

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/orbistools/pkgforge/internal/project"
	"github.com/orbistools/pkgforge/internal/utils/errors"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "pkgforge"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "PKGFORGE"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Viper instance
	v *viper.Viper

	// Ensure thread safety
	initOnce sync.Once
)

// Initialize sets up the application configuration system
func Initialize(cfgFile string) error {
	var err error
	initOnce.Do(func() {
		v = viper.New()
		v.SetDefault("debug", false)
		v.SetDefault("log_format", "human")
		v.SetDefault("log_file", "")

		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
			if readErr := v.ReadInConfig(); readErr != nil {
				err = fmt.Errorf("%w: %v", errors.ErrConfigParseError, readErr)
				return
			}
		}
		v.SetEnvPrefix(EnvPrefix)
		v.AutomaticEnv()
		if unmarshalErr := v.Unmarshal(&Instance); unmarshalErr != nil {
			err = fmt.Errorf("%w: %v", errors.ErrConfigParseError, unmarshalErr)
		}
	})
	return err
}

// projectFile is the on-disk project description.
type projectFile struct {
	ContentID       string `mapstructure:"content_id"`
	Passcode        string `mapstructure:"passcode"`
	EntitlementKey  string `mapstructure:"entitlement_key"`
	VolumeType      string `mapstructure:"volume_type"`
	CreationDate    string `mapstructure:"creation_date"` // YYYY-MM-DD
	UseCreationTime bool   `mapstructure:"use_creation_time"`
	RootDir         string `mapstructure:"root_dir"`

	Pfs struct {
		Sign      *bool  `mapstructure:"sign"`
		Encrypt   *bool  `mapstructure:"encrypt"`
		NewCrypt  bool   `mapstructure:"new_crypt"`
		Seed      string `mapstructure:"seed"` // 32 hex chars
		MinBlocks int64  `mapstructure:"min_blocks"`
		FileTime  string `mapstructure:"file_time"` // RFC 3339
	} `mapstructure:"pfs"`
}

// LoadProject reads a yaml project file into a PkgProject. Validation is
// left to the core builder so the CLI reports errors from one place.
func LoadProject(path string) (*project.PkgProject, error) {
	pv := viper.New()
	pv.SetConfigFile(path)
	if err := pv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigFileNotFound, err)
	}
	var pf projectFile
	if err := pv.Unmarshal(&pf); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigParseError, err)
	}

	p := &project.PkgProject{
		ContentID:       pf.ContentID,
		Passcode:        pf.Passcode,
		EntitlementKey:  pf.EntitlementKey,
		VolumeType:      project.VolumeType(pf.VolumeType),
		UseCreationTime: pf.UseCreationTime,
		RootDir:         pf.RootDir,
		Pfs:             project.DefaultPfsOptions(),
	}
	if pf.CreationDate != "" {
		t, err := time.Parse("2006-01-02", pf.CreationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: creation_date: %v", errors.ErrConfigParseError, err)
		}
		p.CreationDate = t
	}
	if pf.Pfs.Sign != nil {
		p.Pfs.Sign = *pf.Pfs.Sign
	}
	if pf.Pfs.Encrypt != nil {
		p.Pfs.Encrypt = *pf.Pfs.Encrypt
	}
	p.Pfs.NewCrypt = pf.Pfs.NewCrypt
	p.Pfs.MinBlocks = pf.Pfs.MinBlocks
	if pf.Pfs.Seed != "" {
		seed, err := hex.DecodeString(pf.Pfs.Seed)
		if err != nil || len(seed) != 16 {
			return nil, fmt.Errorf("%w: pfs.seed must be 32 hex characters", errors.ErrConfigParseError)
		}
		copy(p.Pfs.Seed[:], seed)
	}
	if pf.Pfs.FileTime != "" {
		t, err := time.Parse(time.RFC3339, pf.Pfs.FileTime)
		if err != nil {
			return nil, fmt.Errorf("%w: pfs.file_time: %v", errors.ErrConfigParseError, err)
		}
		p.Pfs.FileTime = t
	}
	return p, nil
}
