// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"os"

	"github.com/cockroachdb/groupflow/pkg/cli/cliflags"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliContext holds the values of the command-line flags. The flag
// registration in this file is the only writer; initCLIDefaults resets it
// for tests that run several commands.
type cliContext struct {
	verbosity      int
	redactableLogs bool

	fixturePath string
	store       string
	storeDir    string

	parent               string
	child                string
	join                 string
	keepParent           bool
	keepChild            bool
	leftJoinShortensHKey bool
	branch               string

	format  string
	metrics bool
}

var cliCtx cliContext

const (
	storeMemory = "memory"
	storePebble = "pebble"

	formatTable = "table"
	formatTSV   = "tsv"
)

func initCLIDefaults() {
	cliCtx = cliContext{
		store:  storeMemory,
		join:   "inner",
		format: formatTable,
	}
}

// AddPersistentPreRunE adds fn as a persistent pre-run function of cmd. An
// existing pre-run function runs first.
func AddPersistentPreRunE(cmd *cobra.Command, fn func(*cobra.Command, []string) error) {
	wrapped := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if wrapped != nil {
			if err := wrapped(cmd, args); err != nil {
				return err
			}
		}
		return fn(cmd, args)
	}
}

func setFlagFromEnv(f *pflag.FlagSet, flagInfo cliflags.FlagInfo) {
	if flagInfo.EnvVar != "" {
		if value, set := os.LookupEnv(flagInfo.EnvVar); set {
			if err := f.Set(flagInfo.Name, value); err != nil {
				panic(err)
			}
		}
	}
}

// StringFlag creates a string flag and registers it with the FlagSet.
func StringFlag(f *pflag.FlagSet, valPtr *string, flagInfo cliflags.FlagInfo, defaultVal string) {
	f.StringVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, defaultVal, flagInfo.Usage())

	setFlagFromEnv(f, flagInfo)
}

// IntFlag creates an int flag and registers it with the FlagSet.
func IntFlag(f *pflag.FlagSet, valPtr *int, flagInfo cliflags.FlagInfo, defaultVal int) {
	f.IntVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, defaultVal, flagInfo.Usage())

	setFlagFromEnv(f, flagInfo)
}

// BoolFlag creates a bool flag and registers it with the FlagSet.
func BoolFlag(f *pflag.FlagSet, valPtr *bool, flagInfo cliflags.FlagInfo, defaultVal bool) {
	f.BoolVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, defaultVal, flagInfo.Usage())

	setFlagFromEnv(f, flagInfo)
}

// registerFlags registers the flags of all commands of root.
func registerFlags(root, load, flatten, explain *cobra.Command) {
	{
		pf := root.PersistentFlags()
		IntFlag(pf, &cliCtx.verbosity, cliflags.Verbosity, cliCtx.verbosity)
		BoolFlag(pf, &cliCtx.redactableLogs, cliflags.RedactableLogs, cliCtx.redactableLogs)
	}

	for _, cmd := range []*cobra.Command{load, flatten, explain} {
		f := cmd.Flags()
		StringFlag(f, &cliCtx.fixturePath, cliflags.Fixture, cliCtx.fixturePath)
	}

	for _, cmd := range []*cobra.Command{load, flatten} {
		f := cmd.Flags()
		StringFlag(f, &cliCtx.store, cliflags.Store, cliCtx.store)
		StringFlag(f, &cliCtx.storeDir, cliflags.StoreDir, cliCtx.storeDir)
	}

	for _, cmd := range []*cobra.Command{flatten, explain} {
		f := cmd.Flags()
		StringFlag(f, &cliCtx.parent, cliflags.Parent, cliCtx.parent)
		StringFlag(f, &cliCtx.child, cliflags.Child, cliCtx.child)
		StringFlag(f, &cliCtx.join, cliflags.Join, cliCtx.join)
		BoolFlag(f, &cliCtx.keepParent, cliflags.KeepParent, cliCtx.keepParent)
		BoolFlag(f, &cliCtx.keepChild, cliflags.KeepChild, cliCtx.keepChild)
		BoolFlag(f, &cliCtx.leftJoinShortensHKey, cliflags.LeftJoinShortensHKey, cliCtx.leftJoinShortensHKey)
		StringFlag(f, &cliCtx.branch, cliflags.Branch, cliCtx.branch)
	}

	{
		f := flatten.Flags()
		StringFlag(f, &cliCtx.format, cliflags.Format, cliCtx.format)
		BoolFlag(f, &cliCtx.metrics, cliflags.Metrics, cliCtx.metrics)
	}
}
