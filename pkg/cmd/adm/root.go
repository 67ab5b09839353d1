package adm

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewCmdAdm() *cobra.Command {
	admCmd := &cobra.Command{
		Use:   "adm",
		Short: "Administrative commands.",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				if err := cmd.Help(); err != nil {
					log.Errorf("error loading help(): %v", err)
				}
			}
		},
	}
	admCmd.AddCommand(newParseEventsCmd())
	admCmd.AddCommand(newParseJUnitCmd())
	return admCmd
}
