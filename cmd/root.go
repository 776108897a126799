// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagStorage holds every persistent flag this command accepts: a
// single struct of mount-time settings bound once at init time.
type flagStorage struct {
	source         string
	foreground     bool
	singleThreaded bool
	fuseOptions    []string

	logFile     string
	logFormat   string
	logSeverity string

	configFile string
}

// fileConfig is the YAML shape --config-file is unmarshaled into. Its
// field names mirror the command-line flags so a config file can supply
// any subset of them; flags the user passed explicitly always win over
// the file.
type fileConfig struct {
	Source         string   `mapstructure:"source"`
	Foreground     bool     `mapstructure:"foreground"`
	SingleThreaded bool     `mapstructure:"single-threaded"`
	FuseOptions    []string `mapstructure:"options"`
	LogFile        string   `mapstructure:"log-file"`
	LogFormat      string   `mapstructure:"log-format"`
	LogSeverity    string   `mapstructure:"log-severity"`
}

var flags flagStorage

var rootCmd = &cobra.Command{
	Use:   "macfs [flags] mount_point",
	Short: "Mount a directory through the macOS-compatibility FUSE translator",
	Long: `macfs mounts a backing directory at mount_point through a FUSE request
translator that emulates the macOS Finder compatibility layer: synthetic
AppleDouble "._" sidecar files, a synthetic directory icon file, Finder
flags, and HFS-style extended attributes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flags.configFile != "" {
			if err := applyConfigFile(cmd, flags.configFile); err != nil {
				return fmt.Errorf("loading --config-file: %w", err)
			}
		}

		if flags.source == "" {
			return fmt.Errorf("--source is required")
		}

		mountPoint, err := resolveMountPoint(args[0])
		if err != nil {
			return err
		}
		return runMount(mountPoint)
	},
}

// applyConfigFile reads a YAML config file and fills in any flag that
// the user did not pass explicitly on the command line, matching the
// teacher's "flags override file" precedence.
func applyConfigFile(cmd *cobra.Command, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return err
	}

	set := cmd.Flags()
	if !set.Changed("source") && fc.Source != "" {
		flags.source = fc.Source
	}
	if !set.Changed("foreground") {
		flags.foreground = flags.foreground || fc.Foreground
	}
	if !set.Changed("single-threaded") {
		flags.singleThreaded = flags.singleThreaded || fc.SingleThreaded
	}
	if !set.Changed("option") && len(fc.FuseOptions) > 0 {
		flags.fuseOptions = fc.FuseOptions
	}
	if !set.Changed("log-file") && fc.LogFile != "" {
		flags.logFile = fc.LogFile
	}
	if !set.Changed("log-format") && fc.LogFormat != "" {
		flags.logFormat = fc.LogFormat
	}
	if !set.Changed("log-severity") && fc.LogSeverity != "" {
		flags.logSeverity = fc.LogSeverity
	}
	return nil
}

func resolveMountPoint(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("canonicalizing mount point: %w", err)
	}
	return abs, nil
}

// Execute runs the root command, exiting the process with status 1 on
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flags.source, "source", "", "backing directory to serve (required)")
	fs.BoolVarP(&flags.foreground, "foreground", "f", false, "run in the foreground")
	fs.BoolVarP(&flags.singleThreaded, "single-threaded", "s", false, "force the FUSE event loop single-threaded")
	fs.StringArrayVarP(&flags.fuseOptions, "option", "o", nil, "opaque FUSE mount option, may be repeated")

	fs.StringVar(&flags.logFile, "log-file", "", "log file path; empty means stderr")
	fs.StringVar(&flags.logFormat, "log-format", "json", `log wire format, "text" or "json"`)
	fs.StringVar(&flags.logSeverity, "log-severity", "INFO", "log severity threshold")

	fs.StringVar(&flags.configFile, "config-file", "", "optional YAML config file; explicit flags take precedence")
}

func init() {
	bindFlags(rootCmd.PersistentFlags())
}
