// Package config loads sunbeam-migrate's configuration: a YAML file named
// by the SUNBEAM_MIGRATE_CONFIG environment variable, overridable by
// SUNBEAM_MIGRATE_* environment variables, decoded through viper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the typed view of the YAML document pointed to by
// SUNBEAM_MIGRATE_CONFIG, per the "Configuration options" section of the spec.
type Config struct {
	SourceCloudName      string `mapstructure:"source_cloud_name"`
	DestinationCloudName string `mapstructure:"destination_cloud_name"`
	CloudConfigFile      string `mapstructure:"cloud_config_file"`

	DatabaseFile string `mapstructure:"database_file"`

	LogLevel   string `mapstructure:"log_level"`
	LogDir     string `mapstructure:"log_dir"`
	LogConsole bool   `mapstructure:"log_console"`

	TemporaryMigrationDir string `mapstructure:"temporary_migration_dir"`

	MultitenantMode bool   `mapstructure:"multitenant_mode"`
	MemberRoleName  string `mapstructure:"member_role_name"`

	ImageTransferChunkSize int64         `mapstructure:"image_transfer_chunk_size"`
	VolumeUploadTimeout    time.Duration `mapstructure:"volume_upload_timeout"`
	ResourceCreationTimeout time.Duration `mapstructure:"resource_creation_timeout"`

	PreserveVolumeType                  bool `mapstructure:"preserve_volume_type"`
	PreserveVolumeAvailabilityZone      bool `mapstructure:"preserve_volume_availability_zone"`
	PreserveInstanceAvailabilityZone    bool `mapstructure:"preserve_instance_availability_zone"`
	PreserveLoadBalancerAvailabilityZone bool `mapstructure:"preserve_load_balancer_availability_zone"`
	PreserveShareType                   bool `mapstructure:"preserve_share_type"`
	PreserveShareAccessRules            bool `mapstructure:"preserve_share_access_rules"`
	PreserveNetworkSegmentationID       bool `mapstructure:"preserve_network_segmentation_id"`
	PreservePortMACAddress              bool `mapstructure:"preserve_port_mac_address"`
	PreservePortFloatingIP              bool `mapstructure:"preserve_port_floating_ip"`
	PreservePortFloatingIPAddress       bool `mapstructure:"preserve_port_floating_ip_address"`
	PreservePortFixedIPs                bool `mapstructure:"preserve_port_fixed_ips"`
	PreserveRouterIP                    bool `mapstructure:"preserve_router_ip"`
	PreserveRouterAvailabilityZone      bool `mapstructure:"preserve_router_availability_zone"`

	ManilaLocalAccessIP string `mapstructure:"manila_local_access_ip"`
}

// EnvVar is the single environment variable sunbeam-migrate recognizes to
// locate its configuration file.
const EnvVar = "SUNBEAM_MIGRATE_CONFIG"

var active *viper.Viper

// Load builds the viper instance, reading the file named by SUNBEAM_MIGRATE_CONFIG
// if set, applying defaults for every optional key, and allowing
// SUNBEAM_MIGRATE_-prefixed environment variables to override individual keys.
// It does not error when the env var is unset: defaults apply, and
// source/destination-cloud-name and cloud-config-file are validated lazily
// by the commands that require them at migration time.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path := os.Getenv(EnvVar); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("SUNBEAM_MIGRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("database_file", "sunbeam-migrate.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "")
	v.SetDefault("log_console", true)
	v.SetDefault("temporary_migration_dir", os.TempDir())
	v.SetDefault("multitenant_mode", false)
	v.SetDefault("member_role_name", "member")
	v.SetDefault("image_transfer_chunk_size", int64(8*1024*1024))
	v.SetDefault("volume_upload_timeout", "30m")
	v.SetDefault("resource_creation_timeout", "10m")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	active = v
	return &cfg, nil
}

// RequireMigrationFields validates the fields that are optional for
// administrative commands (list/show/delete/restore) but required before
// any command that talks to the clouds (start/start-batch/cleanup-source).
func (c *Config) RequireMigrationFields() error {
	var missing []string
	if c.SourceCloudName == "" {
		missing = append(missing, "source_cloud_name")
	}
	if c.DestinationCloudName == "" {
		missing = append(missing, "destination_cloud_name")
	}
	if c.CloudConfigFile == "" {
		missing = append(missing, "cloud_config_file")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
