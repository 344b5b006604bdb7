package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/db"
	"github.com/javiermolinar/calgrid/internal/source"
)

func (a *App) importCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import items into the local store",
		Long: `Import items from a JSON, YAML or iCalendar file into the SQLite store.

Items with an identifier replace the stored item with the same identifier.
Items whose start or end cannot be read are reported and skipped.

Example:
  calgrid import ~/calendars/work.ics
  calgrid import items.json --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("item file does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking item file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("item file path is a directory: %s", sourcePath)
			}

			opts, err := a.config.LayoutOptions()
			if err != nil {
				return err
			}

			items, err := source.LoadFile(sourcePath)
			if err != nil {
				return err
			}

			if err := ensureDir(a.config.Storage.DBPath); err != nil {
				return err
			}
			store, err := db.New(a.config.Storage.DBPath, opts.Location)
			if err != nil {
				return fmt.Errorf("opening item store: %w", err)
			}
			defer func() { _ = store.Close() }()

			ctx := context.Background()
			if replace {
				if err := store.Clear(ctx); err != nil {
					return err
				}
			}

			res, err := store.ImportItems(ctx, items, opts.Fields, opts.IDField)
			if err != nil {
				return err
			}

			for _, r := range res.Rejected {
				a.log.LogError(fmt.Sprintf("importing item %d", r.Index), r.Err)
				fmt.Fprintf(out, "%s item %d %s: %v\n", formatWarning("skipped"), r.Index, r.ID, r.Err)
			}
			fmt.Fprintf(out, "Imported %s items from %s\n", formatStats(fmt.Sprint(res.Imported)), sourcePath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Remove stored items before importing")
	return cmd
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}
