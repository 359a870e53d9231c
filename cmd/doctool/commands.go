package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdftoolbox/pdftoolbox/internal/archive"
	"github.com/pdftoolbox/pdftoolbox/internal/compressor"
	"github.com/pdftoolbox/pdftoolbox/internal/converter"
	"github.com/pdftoolbox/pdftoolbox/internal/pdfprocessor"
	"github.com/pdftoolbox/pdftoolbox/internal/security"
	"github.com/pdftoolbox/pdftoolbox/internal/upload"
	"github.com/spf13/cobra"
)

func newConvertImageCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "convert-image <image>...",
		Short: "Combine images into one PDF, a page per image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(opts, upload.KindImage, args)
			if err != nil {
				return err
			}
			pdf, err := converter.ImagesToPDF(contents(files))
			if err != nil {
				return err
			}
			return writeOutput(cmd, opts, "converted.pdf", pdf)
		},
	}
}

func newCompressPDFCmd(opts *options) *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "compress-pdf <pdf>",
		Short: "Rewrite a PDF with compression level 0-9",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(opts, upload.KindPDF, args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("level") {
				level = opts.cfg.DefaultCompressionLevel
			}
			out, err := compressor.CompressPDF(files[0].Data, level)
			if err != nil {
				return err
			}
			return writeOutput(cmd, opts, "compressed.pdf", out)
		},
	}
	cmd.Flags().IntVarP(&level, "level", "l", 5, "compression level, clamped to 0-9")
	return cmd
}

func newToImagesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "to-images <pdf>",
		Short: "Render every page to PNG and zip them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(opts, upload.KindPDF, args)
			if err != nil {
				return err
			}
			pages, err := converter.PDFToImages(files[0].Data, opts.cfg.RenderDPI)
			if err != nil {
				return err
			}
			members := make([]archive.File, len(pages))
			for i, p := range pages {
				members[i] = archive.File{Name: converter.PageImageName(i), Data: p}
			}
			return writeZip(cmd, opts, "pages_images.zip", members)
		},
	}
}

func newSplitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "split <pdf>",
		Short: "Split a PDF into single-page PDFs, zipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(opts, upload.KindPDF, args)
			if err != nil {
				return err
			}
			pages, err := pdfprocessor.Split(files[0].Data)
			if err != nil {
				return err
			}
			members := make([]archive.File, len(pages))
			for i, p := range pages {
				members[i] = archive.File{Name: pdfprocessor.SplitPageName(i + 1), Data: p}
			}
			return writeZip(cmd, opts, "split_pages.zip", members)
		},
	}
}

func newMergeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <pdf>...",
		Short: "Concatenate PDFs in argument order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(opts, upload.KindPDF, args)
			if err != nil {
				return err
			}
			merged, err := pdfprocessor.Merge(contents(files))
			if err != nil {
				return err
			}
			return writeOutput(cmd, opts, "merged.pdf", merged)
		},
	}
}

func newToTextCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "to-text <pdf>",
		Short: "Extract text page by page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(opts, upload.KindPDF, args)
			if err != nil {
				return err
			}
			text, err := converter.PDFToText(files[0].Data)
			if err != nil {
				return err
			}
			name := security.SanitizeFilename(files[0].Name)
			return writeOutput(cmd, opts, strings.TrimSuffix(name, filepath.Ext(name))+".txt", []byte(text))
		},
	}
}

func newCompressImageCmd(opts *options) *cobra.Command {
	var quality int
	cmd := &cobra.Command{
		Use:   "compress-image <image>...",
		Short: "Re-encode PNG and JPEG images and zip them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("quality") {
				quality = opts.cfg.ImageQuality
			}
			if quality < compressor.MinQuality || quality > compressor.MaxQuality {
				return fmt.Errorf("quality must be between %d and %d", compressor.MinQuality, compressor.MaxQuality)
			}
			files, err := readInputs(opts, upload.KindImage, args)
			if err != nil {
				return err
			}
			members := make([]archive.File, len(files))
			for i, f := range files {
				data, _, err := compressor.CompressImage(f.Data, quality)
				if err != nil {
					return fmt.Errorf("%s: %w", f.Name, err)
				}
				members[i] = archive.File{Name: "compressed_" + security.SanitizeFilename(f.Name), Data: data}
			}
			return writeZip(cmd, opts, "compressed_images.zip", members)
		},
	}
	cmd.Flags().IntVarP(&quality, "quality", "q", 85, "JPEG quality, 1-100")
	return cmd
}

func newRearrangeCmd(opts *options) *cobra.Command {
	var order string
	cmd := &cobra.Command{
		Use:   "rearrange <pdf>",
		Short: "Reorder pages; reverses them unless --order is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(opts, upload.KindPDF, args)
			if err != nil {
				return err
			}
			var out []byte
			if strings.TrimSpace(order) == "" {
				out, err = pdfprocessor.Reverse(files[0].Data)
			} else {
				pages, perr := pdfprocessor.ParseOrder(order)
				if perr != nil {
					return perr
				}
				out, err = pdfprocessor.Rearrange(files[0].Data, pages)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, opts, "rearranged.pdf", out)
		},
	}
	cmd.Flags().StringVar(&order, "order", "", "comma-separated zero-based page indices, e.g. 2,0,1")
	return cmd
}
