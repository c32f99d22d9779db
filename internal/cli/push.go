package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/sift/pkg/definition"
)

// RunPush compiles definition files and saves them into the configured
// store, named after the files. Nothing is saved if any file fails to
// compile.
func RunPush(ctx context.Context, s *Session, paths []string, out io.Writer) error {
	store := s.Validator.Store()
	if store == nil {
		return fmt.Errorf("push needs a store (--redis or --sqlite)")
	}

	type pending struct {
		name string
		def  *definition.Definition
	}
	defs := make([]pending, 0, len(paths))
	for _, path := range paths {
		def, err := definition.LoadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := s.Validator.Catalog().RegisterDefinition(name, def); err != nil {
			return err
		}
		defs = append(defs, pending{name, def})
	}

	for _, p := range defs {
		if err := store.Save(ctx, p.name, p.def); err != nil {
			return fmt.Errorf("failed to save %s: %w", p.name, err)
		}
		fp, err := definition.Fingerprint(p.def)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", p.name, fp[:12])
	}
	return nil
}
