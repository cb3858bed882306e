package widget

import (
	"testing"

	"github.com/starford/dynwidget/internal/models"
)

var testBuckets = []string{
	"Inbox 📥",
	"Projects 🏔️/Active ✅",
	"Projects 🏔️",
	"Archives 📦",
}

func TestGroupByBuckets_OrderAndFiltering(t *testing.T) {
	docs := []models.Document{
		mkdoc("Archives 📦/old.md"),
		mkdoc("Inbox 📥/idea.md"),
		mkdoc("Inbox 📥/photo.png"),
		mkdoc("Projects 🏔️/Active ✅/launch.md"),
		mkdoc("Projects 🏔️/Backlog/later.md"),
		mkdoc("Loose/unfiled.md"),
	}
	groups := GroupByBuckets(docs, testBuckets, "md")

	if len(groups) != len(testBuckets) {
		t.Fatalf("groups = %d, want %d", len(groups), len(testBuckets))
	}
	want := [][]string{
		{"Inbox 📥/idea.md"},
		{"Projects 🏔️/Active ✅/launch.md"},
		{"Projects 🏔️/Backlog/later.md"},
		{"Archives 📦/old.md"},
	}
	for i, g := range groups {
		if g.Bucket != testBuckets[i] {
			t.Errorf("group %d bucket = %q, want %q", i, g.Bucket, testBuckets[i])
		}
		if !equalStrings(paths(g.Documents), want[i]) {
			t.Errorf("group %q = %v, want %v", g.Bucket, paths(g.Documents), want[i])
		}
	}
}

func TestGroupByBuckets_AtMostOneBucket(t *testing.T) {
	docs := []models.Document{mkdoc("Projects 🏔️/Active ✅/a.md"), mkdoc("Projects 🏔️/b.md")}
	groups := GroupByBuckets(docs, testBuckets, "md")

	seen := map[string]int{}
	for _, g := range groups {
		for _, d := range g.Documents {
			seen[d.Path]++
		}
	}
	for p, n := range seen {
		if n != 1 {
			t.Errorf("%s appears in %d buckets", p, n)
		}
	}
}

func TestGroupByBuckets_LiteralPrefix(t *testing.T) {
	docs := []models.Document{mkdoc("Projects/Active/a.md"), mkdoc("Projects/Active Old/b.md")}
	groups := GroupByBuckets(docs, []string{"Projects/Active"}, "md")
	if !equalStrings(paths(groups[0].Documents), []string{"Projects/Active/a.md", "Projects/Active Old/b.md"}) {
		t.Errorf("prefix match = %v", paths(groups[0].Documents))
	}
}

func TestGroupByBuckets_EmptyBucketsKept(t *testing.T) {
	groups := GroupByBuckets(nil, testBuckets, "md")
	if len(groups) != len(testBuckets) {
		t.Fatalf("groups = %d", len(groups))
	}
	for _, g := range groups {
		if g.Documents == nil || len(g.Documents) != 0 {
			t.Errorf("bucket %q documents = %#v, want empty slice", g.Bucket, g.Documents)
		}
	}
}

func TestFindByArea(t *testing.T) {
	docs := []models.Document{mkdoc("a.md"), mkdoc("b.md"), mkdoc("c.md"), mkdoc("d.md")}
	src := metaMap{
		"a.md": fm("area", "[[X]]"),
		"b.md": fm("areas", []any{"[[Y]]", "[[X]]"}),
		"c.md": fm("area", "Y"),
		"d.md": fm("area", 7),
	}
	got := FindByArea(docs, src, "X")
	if !equalStrings(paths(got), []string{"a.md", "b.md"}) {
		t.Errorf("FindByArea(X) = %v", paths(got))
	}
	if got := FindByArea(docs, src, "[[Y]]"); !equalStrings(paths(got), []string{"b.md", "c.md"}) {
		t.Errorf("FindByArea([[Y]]) = %v", paths(got))
	}
	if got := FindByArea(docs, src, "Z"); len(got) != 0 {
		t.Errorf("FindByArea(Z) = %v", paths(got))
	}
}

func TestFindByAreas_DedupPreservesFirst(t *testing.T) {
	docs := []models.Document{mkdoc("A.md"), mkdoc("B.md"), mkdoc("C.md")}
	src := metaMap{
		"A.md": fm("areas", []any{"X", "W"}),
		"B.md": fm("area", "X"),
		"C.md": fm("area", "Y"),
	}
	got := FindByAreas(docs, src, []string{"X", "W"})
	if !equalStrings(paths(got), []string{"A.md", "B.md"}) {
		t.Errorf("FindByAreas = %v, want [A.md B.md]", paths(got))
	}
	got = FindByAreas(docs, src, []string{"Y", "X"})
	if !equalStrings(paths(got), []string{"C.md", "A.md", "B.md"}) {
		t.Errorf("FindByAreas order = %v", paths(got))
	}
}

func TestFindByDay(t *testing.T) {
	day, _ := ParseDay("2025-07-15")
	docs := []models.Document{
		models.NewDocument("early.md", at("2025-07-15 08:00"), at("2025-07-16 09:00")),
		models.NewDocument("late.md", at("2025-07-15 21:30"), at("2025-07-15 22:00")),
		models.NewDocument("prev.md", at("2025-07-14 23:59"), at("2025-07-15 00:00")),
		models.NewDocument("year.md", at("2024-07-15 12:00"), at("2024-07-15 12:00")),
		models.NewDocument("tie.md", at("2025-07-15 21:30"), at("2025-01-01 00:00")),
	}

	created := FindByDay(docs, day, ByCreated)
	if !equalStrings(paths(created), []string{"late.md", "tie.md", "early.md"}) {
		t.Errorf("created = %v", paths(created))
	}
	modified := FindByDay(docs, day, ByModified)
	if !equalStrings(paths(modified), []string{"late.md", "prev.md"}) {
		t.Errorf("modified = %v", paths(modified))
	}
}

func TestWhich_Valid(t *testing.T) {
	if !ByCreated.Valid() || !ByModified.Valid() || Which("accessed").Valid() {
		t.Error("unexpected Which validity")
	}
}
