package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hollis-dev/lensctl/internal/splice"
)

// NewAnnotateCommand splices an annotation onto one line of a file
// without disturbing surrounding text or line terminators.
func NewAnnotateCommand() *cobra.Command {
	var (
		line  int
		text  string
		write bool
	)
	cmd := &cobra.Command{
		Use:   "annotate <file>",
		Short: "Splice an annotation into one line of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			input := string(data)
			if _, ok := splice.SplitNth(input, line); !ok {
				return fmt.Errorf("%s has no line %d", path, line)
			}
			result := splice.TransformNth(input, line, func(content string) string {
				return content + "  // lens: " + text
			})

			if !write {
				fmt.Fprint(cmd.OutOrStdout(), result)
				return nil
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if err := os.WriteFile(path, []byte(result), info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&line, "line", 0, "0-indexed line to annotate")
	cmd.Flags().StringVar(&text, "text", "", "annotation text")
	cmd.Flags().BoolVar(&write, "write", false, "rewrite the file in place instead of printing")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
