package project

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showcase/service/internal/kv"
)

func newTestService(t *testing.T) (*Service, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	svc := NewService(NewRepository(store))

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}
	n := 0
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("p%d", n)
	}
	return svc, store
}

func mustCreate(t *testing.T, svc *Service, in Input) *Project {
	t.Helper()
	p, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return p
}

func testFile(id string) File {
	return File{ID: id, Name: id + ".zip", Slug: id + ".zip", Key: "files/" + id + ".zip", URL: "http://blobs/files/" + id + ".zip", Hash: "h" + id, Size: 10}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p := mustCreate(t, svc, Input{
		Title:   "  Tiny Synth ",
		Summary: "four voices",
		Tags:    []string{"Audio", "audio", " Embedded  C "},
		Media:   []Media{{URL: "https://img.example.com/a.png"}},
	})
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "tiny-synth", p.Slug)
	assert.Equal(t, "Tiny Synth", p.Title)
	assert.Equal(t, []string{"audio", "embedded c"}, p.Tags)
	assert.Equal(t, MediaImage, p.Media[0].Kind)
	assert.True(t, p.Published)
	assert.Empty(t, p.Files)

	got, err := svc.Get(ctx, "tiny-synth")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	got, err = svc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Tiny Synth", got.Title)
}

func TestCreateSlugs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, Input{Title: "Demo"})
	b := mustCreate(t, svc, Input{Title: "Demo"})
	c := mustCreate(t, svc, Input{Title: "???"})
	assert.Equal(t, "demo", a.Slug)
	assert.Equal(t, "demo-2", b.Slug)
	assert.Equal(t, "project", c.Slug)

	_, err := svc.Create(ctx, Input{Title: "Other", Slug: "demo"})
	assert.ErrorIs(t, err, ErrConflict)

	d := mustCreate(t, svc, Input{Title: "Other", Slug: "My Custom Slug"})
	assert.Equal(t, "my-custom-slug", d.Slug)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		in   Input
	}{
		{"missing title", Input{Title: "  "}},
		{"bad media url", Input{Title: "x", Media: []Media{{URL: "ftp://x/y"}}}},
		{"relative media url", Input{Title: "x", Media: []Media{{URL: "/a.png"}}}},
		{"unknown media kind", Input{Title: "x", Media: []Media{{Kind: "gif", URL: "https://x/y"}}}},
		{"too many tags", Input{Title: "x", Tags: manyTags(maxTags + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func manyTags(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("t%d", i)
	}
	return out
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, Input{Title: "First", Tags: []string{"a"}})
	mustCreate(t, svc, Input{Title: "Taken"})

	title := "Renamed"
	published := false
	got, err := svc.Update(ctx, p.ID, Patch{Title: &title, Published: &published})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "first", got.Slug, "slug stays stable when the title changes")
	assert.False(t, got.Published)
	assert.Equal(t, []string{"a"}, got.Tags)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	slug := "taken"
	_, err = svc.Update(ctx, p.ID, Patch{Slug: &slug})
	assert.ErrorIs(t, err, ErrConflict)

	slug = "first"
	_, err = svc.Update(ctx, p.ID, Patch{Slug: &slug})
	assert.NoError(t, err, "keeping its own slug is not a conflict")

	empty := ""
	_, err = svc.Update(ctx, p.ID, Patch{Title: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, "missing", Patch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	draft := false

	a := mustCreate(t, svc, Input{Title: "Alpha", Tags: []string{"go"}})
	b := mustCreate(t, svc, Input{Title: "Bravo", Tags: []string{"rust"}, Featured: true})
	c := mustCreate(t, svc, Input{Title: "Charlie", Description: "written in Go", Tags: []string{"go"}})
	mustCreate(t, svc, Input{Title: "Delta", Published: &draft})

	ids := func(ps []Project) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	items, total, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids(items), "featured first, then newest")

	items, total, err = svc.List(ctx, Filter{IncludeDrafts: true, Sort: SortTitle})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, "Delta", items[3].Title)

	items, _, err = svc.List(ctx, Filter{Tag: "GO"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, c.ID}, ids(items))

	items, _, err = svc.List(ctx, Filter{Query: "go"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, c.ID}, ids(items))

	featured := true
	items, _, err = svc.List(ctx, Filter{Featured: &featured})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(items))

	require.NoError(t, svc.RecordDownload(ctx, a.ID))
	require.NoError(t, svc.RecordDownload(ctx, a.ID))
	items, _, err = svc.List(ctx, Filter{Sort: SortPopular})
	require.NoError(t, err)
	assert.Equal(t, a.ID, items[0].ID)

	items, total, err = svc.List(ctx, Filter{Sort: SortTitle, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{b.ID}, ids(items))

	items, _, err = svc.List(ctx, Filter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFilesAndVersions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, Input{Title: "Lib"})

	_, err := svc.AttachFile(ctx, p.ID, testFile("f1"))
	require.NoError(t, err)
	got, err := svc.AttachFile(ctx, p.ID, testFile("f1"))
	require.NoError(t, err)
	assert.Len(t, got.Files, 1, "attaching twice is a no-op")
	_, err = svc.AttachFile(ctx, p.ID, testFile("f2"))
	require.NoError(t, err)

	v1, err := svc.AddVersion(ctx, p.ID, VersionInput{Version: "1.0.0", FileIDs: []string{"f1"}})
	require.NoError(t, err)
	assert.Len(t, v1.Files, 1)
	_, err = svc.AddVersion(ctx, p.ID, VersionInput{Version: "1.1.0", Notes: " fixes "})
	require.NoError(t, err)

	_, err = svc.AddVersion(ctx, p.ID, VersionInput{Version: "1.0.0"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.AddVersion(ctx, p.ID, VersionInput{Version: "2.0.0", FileIDs: []string{"nope"}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddVersion(ctx, p.ID, VersionInput{Version: ""})
	assert.ErrorIs(t, err, ErrValidation)

	got, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Versions, 2)
	assert.Equal(t, "1.1.0", got.Versions[0].Version, "newest first")
	assert.Equal(t, "fixes", got.Versions[0].Notes)

	f, orphan, err := svc.DetachFile(ctx, p.ID, "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", f.ID)
	assert.True(t, orphan)

	got, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Files, 1)
	assert.Empty(t, got.Versions[1].Files, "detached file leaves the version too")

	_, _, err = svc.DetachFile(ctx, p.ID, "f1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetachSharedFileIsNotOrphan(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, Input{Title: "A"})
	b := mustCreate(t, svc, Input{Title: "B"})
	for _, id := range []string{a.ID, b.ID} {
		_, err := svc.AttachFile(ctx, id, testFile("shared"))
		require.NoError(t, err)
	}

	_, orphan, err := svc.DetachFile(ctx, a.ID, "shared")
	require.NoError(t, err)
	assert.False(t, orphan)
}

func TestDeleteReturnsOrphans(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, Input{Title: "A"})
	b := mustCreate(t, svc, Input{Title: "B"})
	for _, f := range []File{testFile("own"), testFile("shared")} {
		_, err := svc.AttachFile(ctx, a.ID, f)
		require.NoError(t, err)
	}
	_, err := svc.AttachFile(ctx, b.ID, testFile("shared"))
	require.NoError(t, err)
	_, _, err = svc.Favorite(ctx, a.ID, "visitor-1")
	require.NoError(t, err)

	removed, orphans, err := svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.ID)
	require.Len(t, orphans, 1)
	assert.Equal(t, "own", orphans[0].ID)

	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	favs, err := svc.FavoritesOf(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Empty(t, favs)

	_, _, err = svc.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavorites(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, Input{Title: "Fav"})
	draft := false
	hidden := mustCreate(t, svc, Input{Title: "Hidden", Published: &draft})

	n, changed, err := svc.Favorite(ctx, p.ID, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, changed)

	n, changed, err = svc.Favorite(ctx, p.Slug, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "favoriting twice counts once")
	assert.False(t, changed)

	n, _, err = svc.Favorite(ctx, p.ID, "visitor-2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	favs, err := svc.FavoritesOf(ctx, "visitor-1")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, 2, favs[0].Favorites)

	n, changed, err = svc.Unfavorite(ctx, p.ID, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, changed)
	_, changed, err = svc.Unfavorite(ctx, p.ID, "visitor-1")
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = svc.Favorite(ctx, hidden.ID, "visitor-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.Favorite(ctx, p.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTags(t *testing.T) {
	svc, _ := newTestService(t)
	draft := false
	mustCreate(t, svc, Input{Title: "A", Tags: []string{"go", "cli"}})
	mustCreate(t, svc, Input{Title: "B", Tags: []string{"go", "web"}})
	mustCreate(t, svc, Input{Title: "C", Tags: []string{"secret"}, Published: &draft})

	tags, err := svc.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []TagCount{{"go", 2}, {"cli", 1}, {"web", 1}}, tags)
}

func TestFilesForIndex(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, Input{Title: "A"})
	b := mustCreate(t, svc, Input{Title: "B"})
	_, err := svc.AttachFile(ctx, a.ID, testFile("x"))
	require.NoError(t, err)
	_, err = svc.AttachFile(ctx, b.ID, testFile("x"))
	require.NoError(t, err)
	_, err = svc.AttachFile(ctx, b.ID, testFile("y"))
	require.NoError(t, err)

	entries, err := svc.Files(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "x", entries[0].ID)
	assert.Equal(t, "files/x.zip", entries[0].Key)
}

func TestFileVisible(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	draft := false
	pub := mustCreate(t, svc, Input{Title: "Public"})
	hidden := mustCreate(t, svc, Input{Title: "Hidden", Published: &draft})
	_, err := svc.AttachFile(ctx, hidden.ID, testFile("d"))
	require.NoError(t, err)
	_, err = svc.AttachFile(ctx, hidden.ID, testFile("s"))
	require.NoError(t, err)
	_, err = svc.AttachFile(ctx, pub.ID, testFile("s"))
	require.NoError(t, err)

	tests := []struct {
		file string
		want bool
	}{
		{file: "d", want: false},
		{file: "s", want: true},
		{file: "loose", want: true},
	}
	for _, tt := range tests {
		got, err := svc.FileVisible(ctx, tt.file)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.file)
	}
}

func TestExportImport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, Input{Title: "A"})
	mustCreate(t, svc, Input{Title: "B"})

	exported, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, exported, 2)

	other, _ := newTestService(t)
	require.NoError(t, other.Import(ctx, exported))
	got, err := other.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, exported[0].ID, got.ID)

	dup := []Project{exported[0], exported[0]}
	assert.ErrorIs(t, other.Import(ctx, dup), ErrConflict)
	assert.ErrorIs(t, other.Import(ctx, []Project{{Title: "no id"}}), ErrValidation)
}

func TestConcurrentFavoritesAreNotLost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, Input{Title: "Busy"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.Favorite(ctx, p.ID, fmt.Sprintf("visitor-%02d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Favorites)
}

type failingStore struct{ kv.Store }

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("store down")
}

func TestStoreErrorsPropagate(t *testing.T) {
	svc := NewService(NewRepository(failingStore{kv.NewMemoryStore()}))
	_, _, err := svc.List(context.Background(), Filter{})
	require.Error(t, err)
	assert.False(t, svc.IsNotFound(err))
}
