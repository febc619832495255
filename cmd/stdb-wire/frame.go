package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clockworklabs/spacetimedb-go/pkg/protocol"
	"github.com/clockworklabs/spacetimedb-go/pkg/wire"
)

func frameCmd() *cobra.Command {
	var (
		client bool
		bare   bool
	)

	cmd := &cobra.Command{
		Use:   "frame [hex]",
		Short: "Decode a protocol frame",
		Long: `Decode a wire frame and print the message as protocol JSON.

Server frames carry a leading compression tag byte; pass --bare for a
message body with no framing, and --client to decode the client-to-server
message set instead of the server-to-client one.

Examples:
  stdb-wire frame '00 13 00000000 ...'
  stdb-wire frame --client --bare '13 06000000 ...'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hexInput(args)
			if err != nil {
				return err
			}

			body := data
			if !bare {
				scheme := wire.Compression(data[0])
				body, err = wire.DecodeFrame(data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "compression: %s (%d -> %d bytes)\n",
					scheme, len(data)-1, len(body))
			}

			var out []byte
			if client {
				msg, err := protocol.DecodeClientMessage(body)
				if err != nil {
					return err
				}
				out, err = protocol.MarshalClientMessageJSON(msg)
				if err != nil {
					return err
				}
			} else {
				msg, err := protocol.DecodeServerMessage(body)
				if err != nil {
					return err
				}
				out, err = protocol.MarshalServerMessageJSON(msg)
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&client, "client", false, "Decode a client-to-server message")
	cmd.Flags().BoolVar(&bare, "bare", false, "Input has no compression tag byte")

	return cmd
}
