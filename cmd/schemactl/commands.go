package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/reflect/protodesc"

	"github.com/Aleph-Alpha/schemacache/v1/client"
	"github.com/Aleph-Alpha/schemacache/v1/decoder"
)

func withClient(opts *options, run func(cmd *cobra.Command, c client.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, log, err := opts.newClient()
		if err != nil {
			return err
		}
		defer func() {
			_ = c.Close()
			_ = log.Zap.Sync()
		}()
		return run(cmd, c, args)
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every schema name, including aliases",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, c client.Client, _ []string) error {
			all, err := c.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range slices.Sorted(maps.Keys(all)) {
				fmt.Fprintln(opts.out, name)
			}
			return nil
		}),
	}
}

func newTypesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Print the proto type name to lookup key mapping",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, c client.Client, _ []string) error {
			names, err := c.GetTypeNameToPackageNameMap(cmd.Context())
			if err != nil {
				return err
			}
			for _, typeName := range slices.Sorted(maps.Keys(names)) {
				fmt.Fprintf(opts.out, "%s\t%s\n", typeName, names[typeName])
			}
			return nil
		}),
	}
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Print the descriptor of a schema as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(opts, func(cmd *cobra.Command, c client.Client, args []string) error {
			md, found, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return &decoder.NotFoundError{Name: args[0]}
			}
			out, err := protojson.MarshalOptions{Multiline: true}.Marshal(protodesc.ToDescriptorProto(md))
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.out, string(out))
			return nil
		}),
	}
}

func newDecodeCmd(opts *options) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "decode NAME [FILE]",
		Short: "Decode a binary payload (FILE or stdin) and print it as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withClient(opts, func(cmd *cobra.Command, c client.Client, args []string) error {
			payload, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}

			d := decoder.New(c)
			decode := d.Decode
			if refresh {
				decode = d.DecodeWithRefresh
			}
			msg, err := decode(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}

			out, err := protojson.MarshalOptions{Multiline: true}.Marshal(msg)
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.out, string(out))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refresh schemas once if the payload has unknown fields")
	return cmd
}

func newEncodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encode NAME [FILE]",
		Short: "Encode a JSON message (FILE or stdin) to binary on stdout",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withClient(opts, func(cmd *cobra.Command, c client.Client, args []string) error {
			js, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}
			data, err := decoder.New(c).EncodeWithRefresh(cmd.Context(), args[0], js)
			if err != nil {
				return err
			}
			_, err = opts.out.Write(data)
			return err
		}),
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
