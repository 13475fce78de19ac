package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"splitsui/web"
)

func serverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `This command starts the web server for the application.`,
		Run: func(cmd *cobra.Command, args []string) {
			isDev := cmd.Flags().Lookup("dev").Value.String() == "true"
			memLedger := cmd.Flags().Lookup("mem").Value.String() == "true"
			withDB := cmd.Flags().Lookup("db").Value.String() == "true"
			mode := cmd.Flags().Lookup("notify").Value.String()

			svc, cleanup, err := buildServices(serviceOptions{
				dev:        isDev,
				memLedger:  memLedger,
				notifyMode: notifyMode(mode),
				withDB:     withDB,
			})
			if err != nil {
				log.Fatalf("Failed to build services: %v", err)
			}
			defer cleanup()

			if err := web.Serve(svc); err != nil {
				log.Fatalf("Server stopped: %v", err)
			}
		},
	}

	cmd.Flags().Bool("dev", true, "Run in development mode")
	cmd.Flags().Bool("mem", false, "Use an in-memory ledger instead of the RPC node")
	cmd.Flags().Bool("db", false, "Archive reconciliation passes and history to Postgres")
	cmd.Flags().String("notify", "go_chan", "Message queue mode (go_chan, rabbitmq, gcp_pub_sub)")

	return cmd
}
