package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pagepress/internal/config"
	"git.home.luguber.info/inful/pagepress/internal/document"
	"git.home.luguber.info/inful/pagepress/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepress/internal/frontmatter"
	"git.home.luguber.info/inful/pagepress/internal/source"
)

// CheckCmd implements the 'check' command: parse and validate every source
// document, report all violations, write nothing.
type CheckCmd struct{}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	files, err := source.NewDiscovery(contentDir(cfg)).Discover()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "content discovery failed").Build()
	}
	if len(files) == 0 {
		fmt.Println("no content found")
		return nil
	}

	failed := 0
	for i := range files {
		if problems := checkFile(&files[i]); len(problems) > 0 {
			failed++
			fmt.Printf("%s:\n", files[i].RelativePath)
			for _, p := range problems {
				fmt.Printf("  %v\n", p)
			}
		}
	}

	if failed > 0 {
		return errors.NewError(errors.CategorySchema,
			fmt.Sprintf("%d of %d documents failed validation", failed, len(files))).Build()
	}
	fmt.Printf("%d documents checked, all valid\n", len(files))
	return nil
}

// checkFile returns one entry per violation, empty for a valid document.
func checkFile(file *source.File) []error {
	if err := file.LoadContent(); err != nil {
		return []error{err}
	}
	fields, _, _, err := frontmatter.Parse(file.Content)
	if err != nil {
		return []error{err}
	}
	if _, err := document.FromFields(fields, document.DeriveSlug(file.Name)); err != nil {
		return flatten(err)
	}
	return nil
}

// flatten expands a joined validation error into its individual violations.
func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// contentDir resolves where source documents live: the git cache for
// git-backed content, the configured directory otherwise. Check never
// fetches; it validates what is on disk.
func contentDir(cfg *config.Config) string {
	if cfg.Content.Git != nil {
		return cfg.Content.CacheDir
	}
	return cfg.Content.Dir
}
