package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/batala/site-server-go/internal/client"
)

var (
	cfgFile        string
	envKeyReplacer = strings.NewReplacer("-", "_")
)

// Execute builds the command tree and runs it.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "siteadmin",
		Short:         "Manage the batala site from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.siteadmin.yaml)")
	cmd.PersistentFlags().String("server", "http://localhost:5000", "site server base URL")
	cmd.PersistentFlags().String("session-file", defaultSessionFile(), "where the login session is kept")
	viper.BindPFlag("server", cmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("session-file", cmd.PersistentFlags().Lookup("session-file"))

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newAdminsCmd())
	cmd.AddCommand(newPasswordCmd())
	cmd.AddCommand(newSiteCmd())
	cmd.AddCommand(newMediaCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".siteadmin")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("SITEADMIN")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	viper.ReadInConfig() // optional
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".siteadmin-session.json"
	}
	return filepath.Join(home, ".siteadmin", "session.json")
}

func sessionStore() *client.FileStore {
	return client.NewFileStore(viper.GetString("session-file"))
}

func newAgent() *client.Agent {
	store := sessionStore()
	return client.New(viper.GetString("server"), store, client.WithOnExpired(func() {
		color.Yellow("Session expired. Run `siteadmin login` again.\n")
	}))
}
