// SPDX-License-Identifier: Apache-2.0
//
// Copyright 2025 The frost-enrollment Authors
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

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information - set via ldflags at build time
var (
	// Version is the semantic version (from VERSION file)
	Version = "dev"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

var (
	cfgFile string
	verbose bool
)

// Global flags
var (
	codec       string
	ciphersuite string
)

// Ciphersuite constants
const (
	CiphersuiteEd25519      = "FROST-ED25519-SHA512-v1"
	CiphersuiteRistretto255 = "FROST-RISTRETTO255-SHA512-v1"
)

// CiphersuiteKeySize returns the serialized element size for a given ciphersuite
func CiphersuiteKeySize(cs string) int {
	switch cs {
	case CiphersuiteEd25519, CiphersuiteRistretto255:
		return 32
	default:
		return 32 // Default to Ed25519
	}
}

// ValidCiphersuites returns the list of supported ciphersuites
func ValidCiphersuites() []string {
	return []string{
		CiphersuiteEd25519,
		CiphersuiteRistretto255,
	}
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "frost-enrollment",
	Short: "FROST threshold share enrollment tool",
	Long: `frost-enrollment is a command-line tool for growing a FROST signing group
without redealing or reconstructing the group secret.

A threshold of existing shareholders cooperate to issue a share for a new
participant. The group public key is unchanged, so verifiers and existing
shareholders are unaffected.

Use 'frost-enrollment deal' to generate an initial set of key shares.
Use 'frost-enrollment enroll' to issue a share for a new participant.
Use 'frost-enrollment verify' to verify key share files.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME/.frost-enrollment")
			viper.AddConfigPath(".")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}

		// Read config file if it exists
		if err := viper.ReadInConfig(); err == nil && verbose {
			fmt.Printf("Using config file: %s\n", viper.ConfigFileUsed())
		}

		// Environment variables
		viper.SetEnvPrefix("FROST_ENROLLMENT")
		viper.AutomaticEnv()
	},
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version number and build information of frost-enrollment.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("frost-enrollment version %s\n", Version)
		fmt.Printf("Git commit: %s\n", GitCommit)
		fmt.Printf("Build date: %s\n", BuildTime)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.frost-enrollment/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&codec, "codec", "json", "serialization format (json, msgpack, cbor, yaml, bson, toml)")
	rootCmd.PersistentFlags().StringVar(&ciphersuite, "ciphersuite", CiphersuiteEd25519, "FROST ciphersuite (FROST-ED25519-SHA512-v1, FROST-RISTRETTO255-SHA512-v1)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	if err := viper.BindPFlag("codec", rootCmd.PersistentFlags().Lookup("codec")); err != nil {
		panic(fmt.Sprintf("failed to bind codec flag: %v", err))
	}
	if err := viper.BindPFlag("ciphersuite", rootCmd.PersistentFlags().Lookup("ciphersuite")); err != nil {
		panic(fmt.Sprintf("failed to bind ciphersuite flag: %v", err))
	}
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("failed to bind verbose flag: %v", err))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dealCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}
