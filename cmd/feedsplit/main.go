// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/gorse-io/feedsplit/base"
	"github.com/gorse-io/feedsplit/base/log"
	"github.com/gorse-io/feedsplit/cmd/version"
	"github.com/gorse-io/feedsplit/config"
	"github.com/gorse-io/feedsplit/persist"
	"github.com/gorse-io/feedsplit/pipeline"
	"github.com/gorse-io/feedsplit/storage/blob"
	"github.com/gorse-io/feedsplit/storage/source"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "feedsplit",
	Short: "Split implicit feedback into train, validation and test sets.",
	Run: func(cmd *cobra.Command, args []string) {
		// Show version
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}

		conf := setup(cmd)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		manifest, err := run(ctx, conf)
		if err != nil {
			stop()
			log.Logger().Fatal("failed to preprocess feedback", zap.Error(err))
		}
		if err = printSummary(os.Stdout, manifest); err != nil {
			log.Logger().Error("failed to print summary", zap.Error(err))
		}
	},
}

var summaryCommand = &cobra.Command{
	Use:   "summary",
	Short: "Print the summary of the last complete run in the output directory.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := setup(cmd)
		if err := showSummary(os.Stdout, conf); err != nil {
			log.Logger().Fatal("failed to read summary", zap.Error(err))
		}
	},
}

// setup configures the logger and loads the configuration.
func setup(cmd *cobra.Command) *config.Config {
	flags := cmd.Flags()
	debug, _ := flags.GetBool("debug")
	if err := log.SetLogger(flags, debug); err != nil {
		log.Logger().Fatal("failed to setup logger", zap.Error(err))
	}
	configPath, _ := flags.GetString("config")
	log.Logger().Info("load config", zap.String("config", configPath))
	conf, err := config.LoadConfig(configPath, flags)
	if err != nil {
		log.Logger().Fatal("failed to load config", zap.Error(err))
	}
	return conf
}

func run(ctx context.Context, conf *config.Config) (*persist.Manifest, error) {
	// load feedback
	log.Logger().Info("open feedback source", zap.String("path", log.RedactDBURL(conf.Source.Path)))
	src, err := source.Open(ctx, conf.Source)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Logger().Error("failed to close feedback source", zap.Error(err))
		}
	}()
	table, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}

	// filter, split and remap
	result, err := pipeline.Run(ctx, conf.Dataset, table, base.SeedSource(conf.Dataset.Seed))
	if err != nil {
		return nil, errors.Trace(err)
	}

	// save artifacts
	store, err := blob.Open(conf)
	if err != nil {
		return nil, errors.Trace(err)
	}
	manifest, err := persist.NewWriter(store, conf.Output.Format, version.Version).Write(ctx, conf.Dataset, result)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("save preprocessed feedback",
		zap.String("type", conf.Output.Type),
		zap.String("dir", conf.Output.Dir),
		zap.Duration("elapsed", result.Summary.Elapsed))
	return manifest, nil
}

func showSummary(w io.Writer, conf *config.Config) error {
	store, err := blob.Open(conf)
	if err != nil {
		return errors.Trace(err)
	}
	manifest, err := persist.ReadManifest(store)
	if err != nil {
		return errors.Trace(err)
	}
	return printSummary(w, manifest)
}

func printSummary(w io.Writer, manifest *persist.Manifest) error {
	table := tablewriter.NewWriter(w)
	table.Header("artifact", "rows")
	for _, name := range []string{
		persist.TrainTable,
		persist.ValidationInputTable,
		persist.ValidationHeldoutTable,
		persist.TestInputTable,
		persist.TestHeldoutTable,
		persist.InferenceTable,
	} {
		name += "." + manifest.Format
		if rows, ok := manifest.Rows[name]; ok {
			if err := table.Append([]string{name, strconv.Itoa(rows)}); err != nil {
				return errors.Trace(err)
			}
		}
	}
	for _, row := range [][]string{
		{"users", strconv.Itoa(manifest.NumUsers)},
		{"items", strconv.Itoa(manifest.NumItems)},
		{"train users", strconv.Itoa(manifest.TrainUsers)},
		{"validation users", strconv.Itoa(manifest.ValidationUsers)},
		{"test users", strconv.Itoa(manifest.TestUsers)},
	} {
		if err := table.Append(row); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func init() {
	rootCommand.AddCommand(summaryCommand)
	log.AddFlags(rootCommand.PersistentFlags())
	config.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().BoolP("version", "v", false, "feedsplit version")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
