package upscalectl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"upscaled/internal/client"
)

// Action hooks; tests swap these out.
var (
	fnUpscale = runUpscale
	fnStatus  = runStatus
	fnModels  = runModels
	fnHealth  = runHealth
)

func runUpscale(cfg *Config, input, model, output string) error {
	ctx, cancel := cfg.context()
	defer cancel()
	img, err := client.New(cfg.Server).Upscale(ctx, input, model)
	if err != nil {
		return err
	}
	defer img.Body.Close()

	if output == "" {
		output = img.Filename
		if output == "" {
			output = "upscaled-" + filepath.Base(input) + ".png"
		}
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, img.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(output)
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cfg.Out, "wrote %s (%d bytes)\n", output, n)
	return nil
}

func runStatus(cfg *Config) error {
	ctx, cancel := cfg.context()
	defer cancel()
	st, err := client.New(cfg.Server).Status(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cfg.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func runModels(cfg *Config) error {
	ctx, cancel := cfg.context()
	defer cancel()
	models, err := client.New(cfg.Server).Models(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cfg.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCALE\tDEFAULT")
	for _, m := range models {
		def := ""
		if m.Default {
			def = "*"
		}
		scale := "-"
		if m.Scale > 0 {
			scale = fmt.Sprintf("x%d", m.Scale)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, scale, def)
	}
	return tw.Flush()
}

func runHealth(cfg *Config) error {
	ctx, cancel := cfg.context()
	defer cancel()
	if err := client.New(cfg.Server).Health(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cfg.Out, "ready")
	return nil
}
