package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	logwriter "github.com/sirupsen/logrus/hooks/writer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/pkg/cmd/adm"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/pkg/cmd/report"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/pkg/version"
)

const (
	envPrefix       = "MDTR"
	configName      = "config"
	configDirName   = "markdown-test-report"
	defaultLogLevel = "warn"
)

var (
	configFile string
	configErr  error
)

// rootCmd represents the base command, creating the report when called
// without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := report.NewCmdReport()
	cmd.Version = fmt.Sprintf("%s+%s", version.Version.Version, version.Version.Commit)
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		return setupLogging(cmd)
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file. Default: "+filepath.Join(xdg.ConfigHome, configDirName, configName+".yaml"))
	cmd.PersistentFlags().String("log-level", defaultLogLevel, "logging level")
	cmd.PersistentFlags().CountP("verbose", "v", "Be more verbose. May be repeated multiple times")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Be quiet, only log errors")
	cmd.PersistentFlags().String("log-file", "", "Also write logs to this file")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	for _, flag := range []string{"log-level", "log-file"} {
		if err := viper.BindPFlag(flag, cmd.PersistentFlags().Lookup(flag)); err != nil {
			log.Warnf("Unable to bind flag %s", flag)
		}
	}

	// Link in child commands
	cmd.AddCommand(version.NewCmdVersion())
	cmd.AddCommand(adm.NewCmdAdm())
	return cmd
}

// resolveLogLevel combines the log level name with the verbosity flags.
// Verbosity only raises the level; quiet keeps errors only.
func resolveLogLevel(name string, verbose int, quiet bool) (log.Level, error) {
	if quiet {
		return log.ErrorLevel, nil
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return level, err
	}
	var fromVerbose log.Level
	switch {
	case verbose <= 0:
		return level, nil
	case verbose == 1:
		fromVerbose = log.InfoLevel
	case verbose == 2:
		fromVerbose = log.DebugLevel
	default:
		fromVerbose = log.TraceLevel
	}
	if fromVerbose > level {
		return fromVerbose, nil
	}
	return level, nil
}

// setupLogging configures the global logger. Standard output may carry the
// report, so logs go to stderr.
func setupLogging(cmd *cobra.Command) error {
	verbose, _ := cmd.Flags().GetCount("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	level, err := resolveLogLevel(viper.GetString("log-level"), verbose, quiet)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(cmd.ErrOrStderr())

	logFile := viper.GetString("log-file")
	if logFile == "" {
		return nil
	}
	fdLog, err := os.OpenFile(logFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		log.Errorf("error opening file %s: %v", logFile, err)
		return nil
	}
	log.AddHook(&logwriter.Hook{
		Writer:    fdLog,
		LogLevels: log.AllLevels,
	})
	return nil
}

// loadConfig layers environment variables and the optional config file on v.
func loadConfig(v *viper.Viper, file string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, configDirName))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrapf(err, "unable to read config %s", file)
	}
	return nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configErr = loadConfig(viper.GetViper(), configFile)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}
