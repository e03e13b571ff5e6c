package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/receipt"
	"github.com/spf13/cobra"
)

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file|->",
		Short: "Print the content hash and decoded size of a base64 receipt image",
		Long: `Reads a base64 encoded receipt image, optionally with a data URL prefix,
and prints the hash used for exact duplicate detection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			image := strings.TrimSpace(string(raw))
			if image == "" {
				return fmt.Errorf("no image data in %s", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hash: %s\n", receipt.Hash(image))
			fmt.Fprintf(out, "bytes: %d\n", receipt.ByteSize(image))
			return nil
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
