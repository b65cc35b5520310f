package pgpkeeper

import (
	"github.com/freetocompute/pgpkeeper/cmd/pgpkeeper/utils"
	"github.com/freetocompute/pgpkeeper/pkg/relay"
	"github.com/spf13/cobra"
)

var serve = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP encrypt/decrypt relay",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		server := relay.NewServer(m)
		server.Run()
		return nil
	},
}
