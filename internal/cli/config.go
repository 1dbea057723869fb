package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PADDOCK"

// initConfig reads the config file and PADDOCK_* environment variables.
// A missing default config file is not an error; a missing explicit one is.
func initConfig(v *viper.Viper, cfgFile string, stderr io.Writer) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".paddock")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

// bindFlags applies config file and environment values to every flag the
// user did not set on the command line.
func bindFlags(cmd *cobra.Command, v *viper.Viper, stderr io.Writer) {
	apply := func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --log-format to PADDOCK_LOG_FORMAT
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(stderr, "Could not bind env var %s: %v\n", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(stderr, "Could not set flag value for %s: %v\n", f.Name, err)
			}
		}
	}
	cmd.Flags().VisitAll(apply)
}
