package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdftoolbox/pdftoolbox/internal/archive"
	"github.com/pdftoolbox/pdftoolbox/internal/config"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
	"github.com/pdftoolbox/pdftoolbox/internal/security"
	"github.com/pdftoolbox/pdftoolbox/internal/upload"
	"github.com/pdftoolbox/pdftoolbox/internal/version"
	"github.com/spf13/cobra"
)

type options struct {
	output  string
	verbose bool
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "doctool",
		Short:         "Convert, compress, split, merge and reorder PDFs and images",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if opts.verbose {
				logging.Configure("debug")
			} else {
				logging.Configure(cfg.LogLevel)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "output file (defaults to the name the HTTP service would use)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newConvertImageCmd(opts),
		newCompressPDFCmd(opts),
		newToImagesCmd(opts),
		newSplitCmd(opts),
		newMergeCmd(opts),
		newToTextCmd(opts),
		newCompressImageCmd(opts),
		newRearrangeCmd(opts),
	)
	return root
}

func securePath(p string) (*security.SecurePath, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("invalid path %s: %w", p, err)
	}
	return security.NewSecurePathFromExisting(abs)
}

// readInputs loads each path and checks it against kind the same way the
// HTTP service checks uploads.
func readInputs(opts *options, kind upload.Kind, paths []string) ([]upload.File, error) {
	files := make([]upload.File, 0, len(paths))
	for _, p := range paths {
		if !upload.AllowedFile(p, opts.cfg.AllowedExtensions) {
			return nil, fmt.Errorf("%s: extension not allowed (want one of %s)", p, strings.Join(opts.cfg.AllowedExtensions, ", "))
		}
		sp, err := securePath(p)
		if err != nil {
			return nil, fmt.Errorf("invalid input path: %w", err)
		}
		f, err := security.SafeOpen(sp)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", p, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		detected := upload.Sniff(data)
		if !upload.Matches(detected, kind) {
			return nil, &upload.ContentMismatchError{Filename: p, Detected: detected, Want: kind}
		}
		files = append(files, upload.File{Name: filepath.Base(p), DetectedType: detected, Data: data})
	}
	return files, nil
}

func contents(files []upload.File) [][]byte {
	out := make([][]byte, len(files))
	for i, f := range files {
		out[i] = f.Data
	}
	return out
}

func writeOutput(cmd *cobra.Command, opts *options, fallback string, data []byte) error {
	name := opts.output
	if name == "" {
		name = fallback
	}
	sp, err := securePath(name)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	f, err := security.SafeCreate(sp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Output saved to: %s\n", sp)
	return nil
}

func writeZip(cmd *cobra.Command, opts *options, fallback string, files []archive.File) error {
	data, err := archive.Zip(files)
	if err != nil {
		return err
	}
	return writeOutput(cmd, opts, fallback, data)
}
