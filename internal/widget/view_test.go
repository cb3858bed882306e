package widget

import (
	"testing"

	"github.com/starford/dynwidget/internal/vault"
)

func newHost(t *testing.T) *vault.Vault {
	t.Helper()
	v := vault.New(discardLogger())
	v.Put(mkdoc("Goals/Run.md"), fm("areas", []any{"[[Health]]"}))
	v.Put(mkdoc("Inbox/Shoes.md"), fm("area", "Health"))
	v.Put(mkdoc("Inbox/Taxes.md"), fm("area", "Finance"))
	v.Put(mkdoc("Inbox/Loose.md"), nil)
	return v
}

func openWidget(t *testing.T, host Host) *Widget {
	t.Helper()
	w := New(host, Options{Buckets: []string{"Inbox", "Goals"}}, discardLogger())
	if err := w.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWidget_OpenRendersFallback(t *testing.T) {
	w := openWidget(t, newHost(t))

	if w.Renders() != 1 {
		t.Fatalf("renders = %d", w.Renders())
	}
	if w.State() != StateIdle {
		t.Errorf("state = %v", w.State())
	}
	if p := w.Tree().Find(KindParagraph); len(p) != 1 || p[0].Text != NoActiveText {
		t.Errorf("tree = %+v", w.Tree())
	}
	if w.ViewType() != ViewType {
		t.Errorf("view type = %q", w.ViewType())
	}
}

func TestWidget_ActiveChangeRerenders(t *testing.T) {
	host := newHost(t)
	w := openWidget(t, host)

	var got []*Node
	w.OnRender(func(n *Node) { got = append(got, n) })

	if err := host.SetActive("Goals/Run.md"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("listener calls = %d", len(got))
	}
	if cls := w.Classification(); cls.Mode != ModeAreas || cls.Header != "Health" {
		t.Errorf("classification = %+v", cls)
	}
	var titles []string
	for _, leaf := range append(got[0].Find(KindLink), got[0].Find(KindActive)...) {
		titles = append(titles, leaf.Text)
	}
	if !equalStrings(titles, []string{"Shoes", "Run"}) {
		t.Errorf("entries = %v", titles)
	}
	if got[0] != w.Tree() {
		t.Error("listener tree differs from current tree")
	}
}

func TestWidget_MetadataChangeFilter(t *testing.T) {
	host := newHost(t)
	w := openWidget(t, host)
	if err := host.SetActive("Goals/Run.md"); err != nil {
		t.Fatal(err)
	}
	before := w.Renders()

	host.Put(mkdoc("Inbox/Taxes.md"), fm("area", "Finance", "title", "Taxes 2025"))
	if w.Renders() != before {
		t.Errorf("unrelated metadata change re-rendered")
	}

	host.Put(mkdoc("Goals/Run.md"), fm("area", "Finance"))
	if w.Renders() != before+1 {
		t.Fatalf("active metadata change did not re-render")
	}
	if cls := w.Classification(); cls.Mode != ModeArea || cls.Header != "Finance" {
		t.Errorf("classification = %+v", cls)
	}
}

func TestWidget_RenameFilter(t *testing.T) {
	host := newHost(t)
	w := openWidget(t, host)
	if err := host.SetActive("Goals/Run.md"); err != nil {
		t.Fatal(err)
	}

	before := w.Renders()
	if err := host.Rename("Inbox/Loose.md", mkdoc("Inbox/Loose2.md"), nil); err != nil {
		t.Fatal(err)
	}
	if w.Renders() != before {
		t.Error("rename of unrelated document re-rendered")
	}

	if err := host.Rename("Inbox/Shoes.md", mkdoc("Goals/Shoes.md"), fm("area", "Health")); err != nil {
		t.Fatal(err)
	}
	if w.Renders() != before+1 {
		t.Fatal("rename within shared area did not re-render")
	}
	if links := w.Tree().Find(KindLink); len(links) != 1 || links[0].Path != "Goals/Shoes.md" {
		t.Errorf("links = %+v", links)
	}

	if err := host.Rename("Goals/Run.md", mkdoc("Goals/Marathon.md"), fm("areas", []any{"Health"})); err != nil {
		t.Fatal(err)
	}
	if w.Renders() != before+2 {
		t.Fatal("rename of active document did not re-render")
	}
	if act := w.Tree().Find(KindActive); len(act) != 1 || act[0].Text != "Marathon" {
		t.Errorf("active = %+v", act)
	}
}

func TestWidget_DeleteFilter(t *testing.T) {
	host := newHost(t)
	w := openWidget(t, host)

	if err := host.SetActive("Inbox/Loose.md"); err != nil {
		t.Fatal(err)
	}
	before := w.Renders()
	host.Remove("Inbox/Taxes.md")
	if w.Renders() != before {
		t.Error("delete re-rendered an other-mode widget")
	}

	if err := host.SetActive("Goals/Run.md"); err != nil {
		t.Fatal(err)
	}
	before = w.Renders()
	host.Remove("Inbox/Shoes.md")
	if w.Renders() != before+1 {
		t.Fatal("delete did not re-render an area-mode widget")
	}
	if links := w.Tree().Find(KindLink); len(links) != 0 {
		t.Errorf("links after delete = %+v", links)
	}

	host.Remove("Goals/Run.md")
	if p := w.Tree().Find(KindParagraph); len(p) != 1 || p[0].Text != NoActiveText {
		t.Errorf("tree after deleting active = %+v", w.Tree())
	}
}

func TestWidget_CloseUnsubscribes(t *testing.T) {
	host := newHost(t)
	w := New(host, Options{}, discardLogger())
	if err := w.Open(); err != nil {
		t.Fatal(err)
	}
	if err := w.Open(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	before := w.Renders()
	if err := host.SetActive("Inbox/Loose.md"); err != nil {
		t.Fatal(err)
	}
	if w.Renders() != before {
		t.Error("closed widget kept rendering")
	}
	if len(w.Tree().Children) != 0 {
		t.Errorf("closed tree = %+v", w.Tree())
	}
}

func TestWidget_ActivateNavigates(t *testing.T) {
	host := newHost(t)
	w := openWidget(t, host)

	if err := w.Activate("Inbox/Shoes.md"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	active, ok := host.Active()
	if !ok || active.Path != "Inbox/Shoes.md" {
		t.Fatalf("active = %+v", active)
	}
	if cls := w.Classification(); cls.Header != "Health" {
		t.Errorf("header = %q", cls.Header)
	}
	if err := w.Activate("missing.md"); err == nil {
		t.Error("expected error for unknown path")
	}
}

func TestWidget_ListenerSeesEventsQueuedDuringRender(t *testing.T) {
	host := newHost(t)
	w := openWidget(t, host)

	var headers []string
	w.OnRender(func(*Node) {
		cls := w.Classification()
		headers = append(headers, cls.Header)
		if cls.Header == "Health" {
			_ = host.SetActive("Inbox/Taxes.md")
		}
	})

	if err := host.SetActive("Goals/Run.md"); err != nil {
		t.Fatal(err)
	}
	if !equalStrings(headers, []string{"Health", "Finance"}) {
		t.Errorf("headers = %v", headers)
	}
	if active, _ := host.Active(); active.Path != "Inbox/Taxes.md" {
		t.Errorf("active = %s", active.Path)
	}
}
