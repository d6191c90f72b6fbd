// Copyright 2020 gorse Project Authors
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

package config

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/feedsplit/base"
	"github.com/gorse-io/feedsplit/dataset"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BlobPOSIX = "posix"
	BlobS3    = "s3"
	BlobGCS   = "gcs"
	BlobAzure = "azure"

	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Config is the configuration for feedsplit.
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	Source  SourceConfig  `mapstructure:"source"`
	Output  OutputConfig  `mapstructure:"output"`
	Blob    BlobConfig    `mapstructure:"blob"`
}

// DatasetConfig controls filtering and splitting.
type DatasetConfig struct {
	MinUserCount int     `mapstructure:"min_user_count" validate:"gte=0"`
	MinItemCount int     `mapstructure:"min_item_count" validate:"gte=0"`
	HeldoutUsers int     `mapstructure:"heldout_users" validate:"gte=0"`
	TestProp     float64 `mapstructure:"test_prop" validate:"gte=0,lt=1"`
	Seed         int64   `mapstructure:"seed"`
	WithTest     bool    `mapstructure:"with_test"`
}

// SourceConfig locates the raw feedback. Path is either a data store URL
// (sqlite://, mysql://, postgres://, mongodb://) or a delimited text file.
type SourceConfig struct {
	Path          string   `mapstructure:"path" validate:"required"`
	Separator     string   `mapstructure:"separator" validate:"required"`
	Header        bool     `mapstructure:"header"`
	UserColumn    string   `mapstructure:"user_column" validate:"required"`
	ItemColumn    string   `mapstructure:"item_column" validate:"required"`
	TablePrefix   string   `mapstructure:"table_prefix"`
	FeedbackTypes []string `mapstructure:"feedback_types"`
	Progress      bool     `mapstructure:"progress"`
}

// OutputConfig tells where artifacts are written. Dir is a local directory for
// posix and an object prefix for object stores.
type OutputConfig struct {
	Type   string `mapstructure:"type" validate:"oneof=posix s3 gcs azure"`
	Dir    string `mapstructure:"dir" validate:"required"`
	Format string `mapstructure:"format" validate:"oneof=csv json"`
}

type BlobConfig struct {
	S3    S3Config        `mapstructure:"s3"`
	GCS   GCSConfig       `mapstructure:"gcs"`
	Azure AzureBlobConfig `mapstructure:"azure"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type GCSConfig struct {
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type AzureBlobConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	Endpoint         string `mapstructure:"endpoint"`
	Container        string `mapstructure:"container"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			MinUserCount: 5,
			MinItemCount: 0,
			TestProp:     0.2,
			Seed:         42,
			WithTest:     true,
		},
		Source: SourceConfig{
			Separator:  ",",
			Header:     true,
			UserColumn: "user_id",
			ItemColumn: "item_id",
		},
		Output: OutputConfig{
			Type:   BlobPOSIX,
			Format: FormatCSV,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [dataset]
	v.SetDefault("dataset.min_user_count", defaultConfig.Dataset.MinUserCount)
	v.SetDefault("dataset.min_item_count", defaultConfig.Dataset.MinItemCount)
	v.SetDefault("dataset.test_prop", defaultConfig.Dataset.TestProp)
	v.SetDefault("dataset.seed", defaultConfig.Dataset.Seed)
	v.SetDefault("dataset.with_test", defaultConfig.Dataset.WithTest)
	// [source]
	v.SetDefault("source.separator", defaultConfig.Source.Separator)
	v.SetDefault("source.header", defaultConfig.Source.Header)
	v.SetDefault("source.user_column", defaultConfig.Source.UserColumn)
	v.SetDefault("source.item_column", defaultConfig.Source.ItemColumn)
	// [output]
	v.SetDefault("output.type", defaultConfig.Output.Type)
	v.SetDefault("output.format", defaultConfig.Output.Format)
}

type configBinding struct {
	key string
	env string
}

func bindEnv(v *viper.Viper) error {
	bindings := []configBinding{
		{"dataset.heldout_users", "FEEDSPLIT_HELDOUT_USERS"},
		{"dataset.seed", "FEEDSPLIT_SEED"},
		{"source.path", "FEEDSPLIT_SOURCE_PATH"},
		{"output.type", "FEEDSPLIT_OUTPUT_TYPE"},
		{"output.dir", "FEEDSPLIT_OUTPUT_DIR"},
		{"blob.s3.endpoint", "S3_ENDPOINT"},
		{"blob.s3.access_key_id", "S3_ACCESS_KEY_ID"},
		{"blob.s3.secret_access_key", "S3_SECRET_ACCESS_KEY"},
		{"blob.gcs.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS"},
		{"blob.azure.connection_string", "AZURE_STORAGE_CONNECTION_STRING"},
	}
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

type flagBinding struct {
	key  string
	flag string
}

// AddFlags registers command line overrides of configuration keys.
func AddFlags(flagSet *pflag.FlagSet) {
	flagSet.Int("min-user-count", 5, "minimum number of feedback per user")
	flagSet.Int("min-item-count", 0, "minimum number of feedback per item (0 disables the filter)")
	flagSet.Int("heldout-users", 0, "number of users in each of the validation and test cohorts")
	flagSet.Float64("test-prop", 0.2, "proportion of feedback held out for validation and test users")
	flagSet.Int64("seed", 42, "random seed")
	flagSet.String("source", "", "path of the feedback file or URL of the data store")
	flagSet.String("output-dir", "", "output directory")
}

func bindFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	bindings := []flagBinding{
		{"dataset.min_user_count", "min-user-count"},
		{"dataset.min_item_count", "min-item-count"},
		{"dataset.heldout_users", "heldout-users"},
		{"dataset.test_prop", "test-prop"},
		{"dataset.seed", "seed"},
		{"source.path", "source"},
		{"output.dir", "output-dir"},
	}
	for _, binding := range bindings {
		flag := flagSet.Lookup(binding.flag)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(binding.key, flag); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a TOML file. Environment variables and
// changed flags override values in the file. An empty path loads defaults only.
func LoadConfig(path string, flagSet *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefault(v)
	if err := bindEnv(v); err != nil {
		return nil, errors.Trace(err)
	}
	if flagSet != nil {
		if err := bindFlags(v, flagSet); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if !v.IsSet("dataset.heldout_users") {
		return nil, dataset.ConfigurationErrorf("heldout_users", "is required")
	}
	var conf Config
	if err := v.Unmarshal(&conf, func(c *mapstructure.DecoderConfig) {
		c.ErrorUnused = true
	}); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

func (config *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
	})
	if err := validate.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldError := validationErrors[0]
			return dataset.ConfigurationErrorf(strings.TrimPrefix(fieldError.Namespace(), "Config."),
				"failed on `%s` with value %v", fieldError.Tag(), fieldError.Value())
		}
		return errors.Trace(err)
	}
	if err := base.ValidateSeparator(config.Source.Separator); err != nil {
		return dataset.ConfigurationErrorf("source.separator", "%v", err)
	}
	switch config.Output.Type {
	case BlobS3:
		if config.Blob.S3.Bucket == "" {
			return dataset.ConfigurationErrorf("blob.s3.bucket", "is required for s3 output")
		}
	case BlobGCS:
		if config.Blob.GCS.Bucket == "" {
			return dataset.ConfigurationErrorf("blob.gcs.bucket", "is required for gcs output")
		}
	case BlobAzure:
		if config.Blob.Azure.Container == "" {
			return dataset.ConfigurationErrorf("blob.azure.container", "is required for azure output")
		}
	}
	return nil
}
