package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mineraly/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	var flags sourceFlags
	var opts tui.Options

	cmd := &cobra.Command{
		Use:   "browse <file|url>",
		Short: "Browse an export in the terminal",
		Long: `Browse an export in the terminal.

Keys: / search, r and R cycle the region, 1-9 and 0 or s followed by a
letter sort, p toggles the photo column, ctrl+r reloads, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := flags.open(args[0])
			if err != nil {
				return err
			}
			opts.Timeout = flags.timeout
			return tui.Run(cmd.Context(), src, opts)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&opts.Title, "title", "", "window title (default: the file name)")
	cmd.Flags().StringVar(&opts.PhotosDir, "photos-dir", "", "directory of the photos")
	cmd.Flags().StringVar(&opts.PhotoExt, "photo-ext", ".jpg", "photo file extension")
	return cmd
}
