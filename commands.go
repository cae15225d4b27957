package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/CrowderSoup/zenboard/board"
	"github.com/CrowderSoup/zenboard/services"
)

func showCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the board as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, store, closeFn, err := openStore(cmd, load)
			if err != nil {
				return err
			}
			defer closeFn()

			return writeYAML(cmd.OutOrStdout(), store.Views())
		},
	}
}

func dispatchCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <action-json>",
		Short: "Apply one action and print the board",
		Example: `  zenboard dispatch '{"type":"addList","init":{"title":"Todo"}}'
  zenboard dispatch '{"type":"moveCard","id":"...","opts":{"parent":"...","append":true}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, store, closeFn, err := openStore(cmd, load)
			if err != nil {
				return err
			}
			defer closeFn()

			views, err := services.NewDispatcher(store, nil).Apply([]byte(args[0]))
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), views)
		},
	}
}

func exportCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the stored board as JSON to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, store, closeFn, err := openStore(cmd, load)
			if err != nil {
				return err
			}
			defer closeFn()

			raw, ok, err := st.Raw(string(board.StateKey))
			if err != nil {
				return fmt.Errorf("failed to read board: %w", err)
			}
			if !ok {
				out, err := sonic.ConfigStd.Marshal(store.State())
				if err != nil {
					return err
				}
				raw = string(out)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), raw)
			return err
		},
	}
}

func importCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored board with an exported one (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var state board.State
			if err := sonic.ConfigStd.Unmarshal(data, &state); err != nil {
				return fmt.Errorf("failed to decode %s: %w", args[0], err)
			}

			_, _, store, closeFn, err := openStore(cmd, load)
			if err != nil {
				return err
			}
			defer closeFn()

			views, err := store.Replace(state)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d lists and %d cards\n", len(views.Lists), len(views.Cards))
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
