package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// BundleExt is the file extension of archive bundles.
const BundleExt = ".tar.zst"

// BundleName returns the default bundle file name for a build.
func BundleName(buildID string) string {
	return buildID + BundleExt
}

// WriteBundle streams the simulations archive of buildRoot to w as a
// zstd-compressed tar. Entry names start with "simulations/".
func WriteBundle(ctx context.Context, w io.Writer, buildRoot string) error {
	root := filepath.Join(buildRoot, SimulationsDir)
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("reading simulations archive: %w", err)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	tw := tar.NewWriter(enc)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return addToTar(tw, buildRoot, path, d)
	})
	if walkErr != nil {
		tw.Close()  //nolint:errcheck
		enc.Close() //nolint:errcheck
		return fmt.Errorf("writing bundle: %w", walkErr)
	}

	if err := tw.Close(); err != nil {
		enc.Close() //nolint:errcheck
		return fmt.Errorf("finishing tar stream: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing zstd stream: %w", err)
	}
	return nil
}

func addToTar(tw *tar.Writer, base, path string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(base, path)
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	_, err = io.Copy(tw, f)
	return err
}

// BundleEntries lists the entry names of a bundle written by WriteBundle.
func BundleEntries(r io.Reader) ([]string, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	var names []string
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading bundle: %w", err)
		}
		names = append(names, hdr.Name)
	}
}
