package main

import (
	"os"
	"os/signal"

	"github.com/calvinmclean/armbase/console"

	"github.com/spf13/cobra"
)

func newConsoleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Send stdin to the board and print its output",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			c, err := console.Open(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			return c.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newPortsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List USB serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := console.GetSerialPorts()
			if err != nil {
				return err
			}
			for _, p := range ports {
				cmd.Println(p)
			}
			return nil
		},
	}
}
