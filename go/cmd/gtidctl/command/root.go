/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package command contains the commands of gtidctl.
package command

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gtidkit/gtidkit/go/vt/cdc/offsetstore"
	"github.com/gtidkit/gtidkit/go/vt/log"
)

// ErrFalse is returned by predicate commands such as contains and equal
// when the answer is no. main turns it into exit status 1.
var ErrFalse = errors.New("false")

var (
	configFile string

	storeOptions = struct {
		Kind      string
		DSN       string
		Connector string
	}{
		Kind:      "file",
		Connector: "default",
	}

	// Root is the base command all gtidctl commands are attached to.
	Root = &cobra.Command{
		Use:   "gtidctl",
		Short: "gtidctl parses, compares and stores MySQL GTID sets.",
		Long: "`gtidctl` works on GTID sets in the canonical `source:interval[:interval...]` form " +
			"reported by `@@global.gtid_executed`.\n\n" +
			"Every flag can also be set in the file given with `--config` or through a `GTIDCTL_` " +
			"environment variable, for example `GTIDCTL_STORE_DSN`.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: preRun,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Flush()
		},
	}
)

func preRun(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd.Flags()); err != nil {
		return err
	}
	return log.Init(cmd.Flags())
}

// loadConfig fills every flag not set on the command line from the
// environment or the config file, in that order.
func loadConfig(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix("GTIDCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			err = sv.Replace(v.GetStringSlice(f.Name))
			return
		}
		err = fs.Set(f.Name, v.GetString(f.Name))
	})
	return err
}

func openStore() (offsetstore.Store, error) {
	return offsetstore.Open(storeOptions.Kind, storeOptions.DSN)
}

func init() {
	Root.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML, JSON or TOML file providing flag values.")
	Root.PersistentFlags().StringVar(&storeOptions.Kind, "store-kind", storeOptions.Kind, "Offset store implementation: one of "+strings.Join(offsetstore.Kinds(), ", ")+".")
	Root.PersistentFlags().StringVar(&storeOptions.DSN, "store-dsn", storeOptions.DSN, "Offset store location: a directory for file, a database path for bolt and sqlite.")
	Root.PersistentFlags().StringVar(&storeOptions.Connector, "connector", storeOptions.Connector, "Connector name the position is stored under.")
	log.RegisterFlags(Root.PersistentFlags())

	Root.AddCommand(Parse)
	Root.AddCommand(Intervals)
	Root.AddCommand(Union)
	Root.AddCommand(Subtract)
	Root.AddCommand(Contains)
	Root.AddCommand(Equal)
	Root.AddCommand(Decide)
	Root.AddCommand(Checkpoint)
}
