package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"yangstage/internal/types"
)

type deviceOptions struct {
	Host            string
	Port            int
	Username        string
	Password        string
	KeyFile         string
	KnownHosts      string
	InsecureHostKey bool
	Timeout         time.Duration
	Dir             string
}

func addDeviceFlags(cmd *cobra.Command, opts *deviceOptions) {
	cmd.Flags().StringVar(&opts.Host, "host", "", "Device host name or address")
	cmd.Flags().IntVar(&opts.Port, "port", 830, "Device NETCONF port")
	cmd.Flags().StringVar(&opts.Username, "username", "", "Device user name")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Device password")
	cmd.Flags().StringVar(&opts.KeyFile, "key-file", "", "SSH private key file")
	cmd.Flags().StringVar(&opts.KnownHosts, "known-hosts", "", "known_hosts file (default ~/.ssh/known_hosts)")
	cmd.Flags().BoolVar(&opts.InsecureHostKey, "insecure-host-key", false, "Skip SSH host key verification")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Connection timeout")
	cmd.Flags().StringVar(&opts.Dir, "device-dir", "", "Serve schemas from a directory of .yang files instead of a device")

	_ = viper.BindPFlag("device.host", cmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("device.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("device.username", cmd.Flags().Lookup("username"))
	_ = viper.BindPFlag("device.password", cmd.Flags().Lookup("password"))
	_ = viper.BindPFlag("device.key_file", cmd.Flags().Lookup("key-file"))
	_ = viper.BindPFlag("device.known_hosts", cmd.Flags().Lookup("known-hosts"))
	_ = viper.BindPFlag("device.insecure_host_key", cmd.Flags().Lookup("insecure-host-key"))
	_ = viper.BindPFlag("device.timeout", cmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("device.dir", cmd.Flags().Lookup("device-dir"))
}

func resolveDevice(cmd *cobra.Command, opts deviceOptions) types.DeviceConfig {
	return types.DeviceConfig{
		Host:            resolveString(cmd, opts.Host, "device.host", "host"),
		Port:            resolveInt(cmd, opts.Port, "device.port", "port"),
		Username:        resolveString(cmd, opts.Username, "device.username", "username"),
		Password:        resolveString(cmd, opts.Password, "device.password", "password"),
		KeyFile:         resolveString(cmd, opts.KeyFile, "device.key_file", "key-file"),
		KnownHosts:      resolveString(cmd, opts.KnownHosts, "device.known_hosts", "known-hosts"),
		InsecureHostKey: resolveBool(cmd, opts.InsecureHostKey, "device.insecure_host_key", "insecure-host-key"),
		Timeout:         resolveDuration(cmd, opts.Timeout, "device.timeout", "timeout"),
		Dir:             resolveString(cmd, opts.Dir, "device.dir", "device-dir"),
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func resolveDuration(cmd *cobra.Command, value time.Duration, key string, flagName string) time.Duration {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetDuration(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
