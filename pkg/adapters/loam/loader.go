package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/loam"
)

// Loader adapts a Loam repository to the ports.ViewLoader interface.
type Loader struct {
	Repo       *loam.TypedRepository[ViewMetadata]
	components dsl.ComponentResolver
}

// Option configures a Loader.
type Option func(*Loader)

// WithComponents resolves the component nodes of view documents.
func WithComponents(r dsl.ComponentResolver) Option {
	return func(l *Loader) {
		l.components = r
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ViewMetadata], opts ...Option) *Loader {
	l := &Loader{Repo: repo}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a read-only Loam repository at dir and wraps it.
// Strict mode keeps numbers as json.Number across JSON and YAML documents.
func Open(dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ViewMetadata](repo), opts...), nil
}

// Load resolves a view document into an element tree, inlining the views it includes.
func (l *Loader) Load(ctx context.Context, id string) (domain.Element, error) {
	root, err := l.node(ctx, id)
	if err != nil {
		return domain.Element{}, err
	}

	conv := dsl.NewConverter(
		dsl.WithComponents(l.components),
		dsl.WithViews(func(ref string) (*dsl.Node, error) {
			return l.node(ctx, ref)
		}),
	)
	el, err := conv.Convert(root)
	if err != nil {
		return domain.Element{}, fmt.Errorf("view %s: %w", id, err)
	}
	return el, nil
}

// node fetches a document and turns it into a tree node.
func (l *Loader) node(ctx context.Context, id string) (*dsl.Node, error) {
	// Loam resolves "home" to home.md / home.yaml on its own.
	doc, err := l.Repo.Get(ctx, trimExtension(id))
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	meta := doc.Data
	if meta.Root != nil {
		return dsl.Decode(meta.Root)
	}
	return article(meta, doc.Content), nil
}

// article renders a body-only document: an optional title heading followed
// by one paragraph per blank-line separated block.
func article(meta ViewMetadata, body string) *dsl.Node {
	n := dsl.Tag("article")
	if meta.Class != "" {
		n.Prop("class", meta.Class)
	}
	if meta.Title != "" {
		n.With(dsl.Tag("h1").With(dsl.Text(meta.Title)))
	}
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		n.With(dsl.Tag("p").With(dsl.Text(block)))
	}
	return n
}

// List lists all views in the repository.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
