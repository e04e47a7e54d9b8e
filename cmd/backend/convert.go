package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"ppt-upload/internal/pptx"
)

func convertCmd() *cobra.Command {
	var (
		output       string
		maxTags      int
		includeNotes bool
		tableFormat  string
	)

	def := pptx.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "convert <deck.pptx>",
		Short: "Convert a .pptx deck to a Markdown .txt file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := pptx.ParseTableFormat(tableFormat)
			if err != nil {
				return err
			}
			if maxTags < 0 {
				return errors.New("--max-tags must not be negative")
			}

			src := args[0]
			if _, err := os.Stat(src); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("file not found: %s", src)
				}
				return err
			}

			dst := output
			if dst == "" {
				dst = pptx.OutputPath(src)
			}

			opts := pptx.Options{MaxTags: maxTags, IncludeNotes: includeNotes, TableFormat: format}
			if err := pptx.ConvertFile(src, dst, opts); err != nil {
				return fmt.Errorf("convert failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", dst)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output .txt path (default: input path with .txt extension)")
	cmd.Flags().IntVar(&maxTags, "max-tags", def.MaxTags, "maximum number of keyword tags")
	cmd.Flags().BoolVar(&includeNotes, "include-notes", false, "include speaker notes")
	cmd.Flags().StringVar(&tableFormat, "table-format", string(def.TableFormat), "table output: list or table")

	return cmd
}
