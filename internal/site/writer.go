package site

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pagepress/internal/logfields"
	"git.home.luguber.info/inful/pagepress/internal/page"
)

// Writer persists a Site into an output directory.
type Writer struct {
	outputDir string
	clean     bool
	stageDir  string
}

// NewWriter creates a writer for the given output directory. When clean is
// false, files already present in the output survive the build unless a new
// file shadows them.
func NewWriter(outputDir string, clean bool) *Writer {
	return &Writer{outputDir: outputDir, clean: clean}
}

// Write stages the whole site and promotes it atomically. It returns the
// number of pages written (regular plus excluded).
func (w *Writer) Write(ctx context.Context, s Site) (int, error) {
	if err := w.beginStaging(); err != nil {
		return 0, fmt.Errorf("begin staging: %w", err)
	}

	written, err := w.writeAll(ctx, s)
	if err != nil {
		w.abortStaging()
		return 0, err
	}

	if err := w.finalizeStaging(); err != nil {
		w.abortStaging()
		return 0, err
	}
	return written, nil
}

func (w *Writer) writeAll(ctx context.Context, s Site) (int, error) {
	written := 0
	for i := range s.Pages {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := w.writePage(&s.Pages[i]); err != nil {
			return written, err
		}
		written++
	}
	for i := range s.Excluded {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := w.writeExcludedPage(&s.Excluded[i]); err != nil {
			return written, err
		}
		written++
	}
	if err := w.writeJSON(filepath.Join(w.stageDir, "search.json"), s.Search); err != nil {
		return written, fmt.Errorf("write search index: %w", err)
	}
	if err := w.writeJSON(filepath.Join(w.stageDir, "site.json"), s.Meta); err != nil {
		return written, fmt.Errorf("write site metadata: %w", err)
	}
	return written, nil
}

func (w *Writer) writePage(p *page.Context) error {
	dir := filepath.Join(w.stageDir, "pages", p.Identity)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create page dir %s: %w", p.Identity, err)
	}

	html, err := renderPageHTML(p)
	if err != nil {
		return fmt.Errorf("render page shell %s: %w", p.Identity, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), html, 0o600); err != nil {
		return fmt.Errorf("write page %s: %w", p.Identity, err)
	}
	if err := w.writeJSON(filepath.Join(dir, "context.json"), p); err != nil {
		return fmt.Errorf("write page context %s: %w", p.Identity, err)
	}
	return nil
}

func (w *Writer) writeExcludedPage(p *page.ExcludedContext) error {
	dir := filepath.Join(w.stageDir, "pages", p.Identity)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create page dir %s: %w", p.Identity, err)
	}

	html, err := renderExcludedHTML(p)
	if err != nil {
		return fmt.Errorf("render excluded shell %s: %w", p.Identity, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), html, 0o600); err != nil {
		return fmt.Errorf("write excluded page %s: %w", p.Identity, err)
	}
	if err := w.writeJSON(filepath.Join(dir, "context.json"), p); err != nil {
		return fmt.Errorf("write excluded context %s: %w", p.Identity, err)
	}
	return nil
}

func (w *Writer) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// beginStaging creates the sibling staging directory <output>_stage. Any
// stale staging tree from a crashed run is discarded first.
func (w *Writer) beginStaging() error {
	stage := w.outputDir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return err
	}
	if err := os.MkdirAll(stage, 0o750); err != nil {
		return err
	}
	w.stageDir = stage

	if !w.clean {
		if _, err := os.Stat(w.outputDir); err == nil {
			if err := copyTree(w.outputDir, stage); err != nil {
				return fmt.Errorf("carry over existing output: %w", err)
			}
		}
	}
	slog.Debug("Initialized staging directory", slog.String("staging", stage), slog.String("final", w.outputDir))
	return nil
}

// finalizeStaging promotes the staging directory to the final output
// location: the existing output moves aside to <output>.prev, staging is
// renamed into place, and the backup is removed best-effort.
func (w *Writer) finalizeStaging() error {
	if w.stageDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}

	prev := w.outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove stale backup: %w", err)
	}
	if _, err := os.Stat(w.outputDir); err == nil {
		if err := os.Rename(w.outputDir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}
	if err := os.Rename(w.stageDir, w.outputDir); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	w.stageDir = ""

	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous output backup", logfields.Path(prev), logfields.Error(err))
	}
	slog.Info("Promoted staging directory", logfields.Path(w.outputDir))
	return nil
}

// abortStaging removes the staging directory after a failed write so no
// orphaned temp trees accumulate next to the output.
func (w *Writer) abortStaging() {
	if w.stageDir == "" {
		return
	}
	dir := w.stageDir
	w.stageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", slog.String("staging", dir), logfields.Error(err))
	}
}

// OutputValid reports whether dir looks like a complete previous build
// output. Used to gate the early-skip path: an unchanged build key only
// skips work when the output it refers to is still present.
func OutputValid(dir string) bool {
	for _, name := range []string{"site.json", "search.json"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
