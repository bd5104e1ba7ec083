package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spboyer/simarchive/internal/archive"
	"github.com/spboyer/simarchive/internal/history"
	"github.com/spboyer/simarchive/internal/projectconfig"
	"github.com/spboyer/simarchive/internal/remote"
)

// newUploader is replaced in tests.
var newUploader = func(containerURL, prefix string) (remote.Uploader, error) {
	return remote.NewBlobUploader(containerURL, remote.Options{Prefix: prefix})
}

func newBundleCommand() *cobra.Command {
	var output string
	var buildRoot string
	var list bool
	var upload bool

	cmd := &cobra.Command{
		Use:   "bundle <build-id>",
		Short: "Pack a build's simulations archive into a .tar.zst file",
		Long: `Pack a build's simulations archive into a zstd-compressed tar file.

--list prints the entries of an existing bundle instead of writing one.
--upload pushes the bundle to the blob container configured in
remote.container_url, under remote.prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buildID := args[0]
			if err := history.ValidateBuildID(buildID); err != nil {
				return err
			}
			if list && upload {
				return fmt.Errorf("--list and --upload cannot be combined")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if output == "" {
				output = archive.BundleName(buildID)
			}
			out := cmd.OutOrStdout()

			if list {
				names, err := listBundle(output)
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(out, n)
				}
				return nil
			}

			if buildRoot == "" {
				buildRoot = cfg.BuildRoot(buildID)
			}
			if err := writeBundleFile(cmd.Context(), output, buildRoot); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %s\n", output)

			if !upload {
				return nil
			}
			if cfg.Remote.ContainerURL == "" {
				return fmt.Errorf("--upload requires remote.container_url in %s", projectconfig.FileName)
			}
			u, err := newUploader(cfg.Remote.ContainerURL, cfg.Remote.Prefix)
			if err != nil {
				return err
			}
			f, err := os.Open(output)
			if err != nil {
				return err
			}
			defer f.Close() //nolint:errcheck

			location, err := u.Upload(cmd.Context(), filepath.Base(output), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Uploaded %s\n", location)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Bundle file (default: <build-id>.tar.zst)")
	cmd.Flags().StringVar(&buildRoot, "build-root", "", "Build storage directory (default: <paths.builds>/<build-id>)")
	cmd.Flags().BoolVar(&list, "list", false, "List the entries of an existing bundle")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the bundle to the configured blob container")

	return cmd
}

// writeBundleFile writes the bundle next to its final path and renames it
// into place, so a failed run never leaves a truncated bundle behind.
func writeBundleFile(ctx context.Context, path, buildRoot string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := archive.WriteBundle(ctx, tmp, buildRoot); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func listBundle(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return archive.BundleEntries(f)
}
