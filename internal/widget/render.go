package widget

import "github.com/starford/dynwidget/internal/models"

// Fallback texts.
const (
	NoActiveText  = "No file is currently active"
	OtherText     = "Other"
	CreatedTitle  = "Created"
	ModifiedTitle = "Modified"
)

// Options configures rendering.
type Options struct {
	Buckets         []string
	NoteExtension   string
	Pane            models.Pane
	DecorateBullets bool
}

// Renderer turns a classification and the document set into a display tree.
type Renderer struct {
	opts Options
}

// NewRenderer returns a Renderer for opts.
func NewRenderer(opts Options) *Renderer {
	if opts.NoteExtension == "" {
		opts.NoteExtension = "md"
	}
	if opts.Pane == "" {
		opts.Pane = models.PaneTab
	}
	return &Renderer{opts: opts}
}

// Options returns the renderer configuration.
func (r *Renderer) Options() Options { return r.opts }

// Render builds the full tree for the active document.
func (r *Renderer) Render(cls Classification, active *models.Document, docs []models.Document, src MetadataSource) *Node {
	root := &Node{Kind: KindRoot, Class: ClassContent}

	if cls.Mode == ModeNone || active == nil {
		return root.Append(Paragraph(NoActiveText, ClassNoFile))
	}

	root.Append(Heading(2, cls.Header))

	switch cls.Mode {
	case ModeArea, ModeAreas:
		found := FindByAreas(docs, src, cls.Areas)
		for _, g := range GroupByBuckets(found, r.opts.Buckets, r.opts.NoteExtension) {
			root.Append(r.Section(g.Bucket, g.Bucket, g.Documents, active, src))
		}
	case ModeDay:
		notes := FilterExtension(docs, r.opts.NoteExtension)
		root.Append(
			r.Section(CreatedTitle, "", FindByDay(notes, cls.Day, ByCreated), active, src),
			r.Section(ModifiedTitle, "", FindByDay(notes, cls.Day, ByModified), active, src),
		)
	default:
		root.Append(Paragraph(OtherText, ""))
	}
	return root
}

// Section returns a titled list, or an empty node when docs is empty.
func (r *Renderer) Section(title, bucket string, docs []models.Document, active *models.Document, src MetadataSource) *Node {
	if len(docs) == 0 {
		return Empty()
	}
	return (&Node{Kind: KindSection}).Append(
		Heading(4, title),
		r.List(bucket, docs, active, src),
	)
}

// List returns one item per document, or an empty node when docs is empty.
// The active document is inert; every other entry is a link.
func (r *Renderer) List(bucket string, docs []models.Document, active *models.Document, src MetadataSource) *Node {
	if len(docs) == 0 {
		return Empty()
	}
	list := &Node{Kind: KindList}
	for _, d := range docs {
		item := &Node{Kind: KindItem}
		if r.opts.DecorateBullets {
			item.Bullet = Bullet(bucket, d)
		}
		if active != nil && active.Path == d.Path {
			item.Append(&Node{Kind: KindActive, Text: d.Basename, Class: ClassActiveFile, Path: d.Path})
		} else {
			item.Append(&Node{Kind: KindLink, Text: Title(d, src), Path: d.Path, Pane: r.opts.Pane})
		}
		list.Append(item)
	}
	return list
}

// Title prefers a non-empty frontmatter "title" and falls back to the basename.
func Title(d models.Document, src MetadataSource) string {
	if src != nil {
		if meta, ok := src.Metadata(d.Path); ok {
			if s, ok := meta.Property("title").(string); ok && s != "" {
				return s
			}
		}
	}
	return d.Basename
}
