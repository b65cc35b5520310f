package pgpkeeper

import (
	"github.com/freetocompute/pgpkeeper/cmd/pgpkeeper/contacts"
	"github.com/freetocompute/pgpkeeper/cmd/pgpkeeper/keys"
	"github.com/freetocompute/pgpkeeper/config/configkey"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	Root.AddCommand(keys.Keys)
	Root.AddCommand(contacts.Contacts)
	Root.AddCommand(encrypt)
	Root.AddCommand(decrypt)
	Root.AddCommand(settingsCmd)
	Root.AddCommand(serve)
}

var Root = &cobra.Command{
	Use:   "pgpkeeper",
	Short: "Local PGP key manager and message tool",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		levelConfig := viper.GetString(configkey.LogLevel)
		level, err := logrus.ParseLevel(levelConfig)
		if err != nil {
			logrus.Error(err)
		} else {
			logrus.SetLevel(level)
		}
	},
}
