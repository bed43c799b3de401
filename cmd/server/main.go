package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cartwise",
		Short:         "Conversational shopping assistant backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./config.yaml, ./config/config.yaml, /etc/cartwise/config.yaml)")

	root.AddCommand(newServeCommand(), newSeedCommand(), newTranscribeCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Embed the catalog into the retrieval index if it is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd)
		},
	}
}

func newTranscribeCommand() *cobra.Command {
	var raw bool
	var sampleRate int

	cmd := &cobra.Command{
		Use:   "transcribe FILE",
		Short: "Transcribe an audio file with the configured speech server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, args[0], raw, sampleRate)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "treat FILE as headerless little-endian 16-bit mono PCM")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 16000, "sample rate of raw PCM input")
	return cmd
}
