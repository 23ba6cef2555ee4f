package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/suykerbuyk/proofline/internal/render"
	"github.com/suykerbuyk/proofline/internal/report"
)

// emitReport writes rep as json or md, to stdout when out is empty.
func emitReport(stdout io.Writer, rep *report.Report, out, format string) error {
	switch format {
	case "", "json":
		if out == "" {
			return report.Encode(stdout, rep)
		}
		if err := report.WriteFile(out, rep); err != nil {
			return err
		}
	case "md":
		doc := render.Markdown(rep)
		if out == "" {
			_, err := io.WriteString(stdout, doc)
			return err
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	default:
		return fmt.Errorf("unknown format %q (want json or md)", format)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	return nil
}
