package artifacts

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// WriteBundle streams a tar.zst archive of every regular file under dir to
// w. Entry names are slash-separated paths relative to dir.
func WriteBundle(dir string, w io.Writer) error {
	if dir == "" {
		return errors.New("bundle directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat bundle dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("bundle path %q is not a directory", dir)
	}

	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	defer encoder.Close()

	tw := tar.NewWriter(encoder)
	defer tw.Close()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}

		header := &tar.Header{
			Name:     filepath.ToSlash(rel),
			Mode:     int64(fi.Mode().Perm()),
			Size:     fi.Size(),
			ModTime:  fi.ModTime(),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("write tar header for %s: %w", rel, err)
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", rel, err)
		}
		defer file.Close()

		if _, err := io.Copy(tw, file); err != nil {
			return fmt.Errorf("copy %s into bundle: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar writer: %w", err)
	}
	return encoder.Close()
}
