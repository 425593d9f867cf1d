package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cayerbe/gns-core/gnslog"
	"github.com/cayerbe/gns-core/identity"
	"github.com/cayerbe/gns-core/relay"
)

var (
	dialURL     string
	dialSeedHex string
	dialDevice  string
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay session operations",
}

var relayDialCmd = &cobra.Command{
	Use:   "dial",
	Short: "Connect to a relay and print inbound frames until interrupted",
	RunE:  runRelayDial,
}

func init() {
	rootCmd.AddCommand(relayCmd)
	relayCmd.AddCommand(relayDialCmd)

	relayDialCmd.Flags().StringVar(&dialURL, "url", "", "relay ws:// or wss:// URL (required)")
	relayDialCmd.Flags().StringVar(&dialSeedHex, "seed", "", "identity seed whose public key identifies the connection (required)")
	relayDialCmd.Flags().StringVar(&dialDevice, "device", string(relay.DeviceDesktop), "device kind (desktop, mobile)")
	for _, name := range []string{"url", "seed"} {
		relayDialCmd.MarkFlagRequired(name)
	}
}

func runRelayDial(cmd *cobra.Command, args []string) error {
	id, err := identity.FromHex(dialSeedHex)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	defer id.Close()

	log := gnslog.NewDefaultLogger()
	session := relay.New(dialURL, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Connect(ctx, id.PublicHex(), relay.Device(dialDevice)); err != nil {
		return fmt.Errorf("connect to relay: %w", err)
	}
	defer session.Close()

	fmt.Fprintf(os.Stderr, "connected as %s, waiting for frames (ctrl-c to exit)\n", id.PublicHex())

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-session.Inbound():
			if !ok {
				return nil
			}
			if err := printJSON(frame); err != nil {
				return fmt.Errorf("print frame: %w", err)
			}
		}
	}
}
