// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docextract/internal/httputil"
	"github.com/pdiddy/docextract/internal/render"
	"github.com/pdiddy/docextract/pkg/types"
)

// --- test helpers ---

type putCall struct {
	bucket, key, contentType string
	data                     []byte
}

type memStore struct {
	mu      sync.Mutex
	calls   []putCall
	failKey string
}

func (s *memStore) Put(_ context.Context, bucket, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.failKey {
		return errors.New("access denied")
	}
	s.calls = append(s.calls, putCall{bucket: bucket, key: key, contentType: contentType, data: data})
	return nil
}

func (s *memStore) keys() []string {
	var out []string
	for _, c := range s.calls {
		out = append(out, c.key)
	}
	return out
}

type mapFetcher map[string]string

func (f mapFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	body, ok := f[uri]
	if !ok {
		return nil, fmt.Errorf("no such uri %s", uri)
	}
	return []byte(body), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func imagePara(id string) *types.Paragraph {
	return &types.Paragraph{Runs: []types.InlineRun{&types.ImageRef{ObjectID: id}, &types.TextRun{Content: "\n"}}}
}

func heading(s string) *types.Paragraph {
	return &types.Paragraph{
		Style: &types.ParagraphStyle{NamedStyleType: types.HeadingStyle},
		Runs:  []types.InlineRun{&types.TextRun{Content: s + "\n"}},
	}
}

func textPara(s string) *types.Paragraph {
	return &types.Paragraph{Runs: []types.InlineRun{&types.TextRun{Content: s + "\n"}}}
}

func cellOf(blocks ...types.Block) types.TableCell {
	return types.TableCell{Blocks: blocks}
}

func imageMap(ids ...string) map[string]types.InlineImage {
	m := make(map[string]types.InlineImage, len(ids))
	for _, id := range ids {
		m[id] = types.InlineImage{ObjectID: id, ContentURI: "mem://" + id, ContentType: "image/png"}
	}
	return m
}

func fetcherFor(ids ...string) mapFetcher {
	f := mapFetcher{}
	for _, id := range ids {
		f["mem://"+id] = "bytes-of-" + id
	}
	return f
}

// --- tests ---

func TestCollectImages_Order(t *testing.T) {
	doc := &types.Document{
		ID:    "doc-9",
		Title: "Heart Disease - Completed",
		Blocks: []types.Block{
			imagePara("a"),
			&types.Table{Rows: []types.TableRow{
				{Cells: []types.TableCell{cellOf(imagePara("b")), cellOf(imagePara("c"))}},
				{Cells: []types.TableCell{cellOf(&types.Table{Rows: []types.TableRow{
					{Cells: []types.TableCell{cellOf(imagePara("d"))}},
				}})}},
			}},
			&types.Paragraph{Runs: []types.InlineRun{
				&types.ImageRef{ObjectID: "e"},
				&types.ImageRef{ObjectID: "unknown"},
				&types.ImageRef{ObjectID: "f"},
			}},
		},
		Images: imageMap("a", "b", "c", "d", "e", "f"),
	}

	imgs := CollectImages(doc)

	require.Len(t, imgs, 6)
	for i, want := range []string{"a", "b", "c", "d", "e", "f"} {
		assert.Equal(t, i+1, imgs[i].Seq)
		assert.Equal(t, want, imgs[i].ObjectID)
		assert.Equal(t, fmt.Sprintf("heartdisease/doc-9/image_%03d.jpg", i+1), imgs[i].Key)
		assert.Equal(t, "mem://"+want, imgs[i].ContentURI)
	}
}

func TestCollectImages_SkipsImagesWithoutURI(t *testing.T) {
	imgs := imageMap("a", "b")
	imgs["drawing"] = types.InlineImage{ObjectID: "drawing"}
	doc := &types.Document{
		ID:     "d",
		Title:  "t",
		Blocks: []types.Block{imagePara("drawing"), imagePara("a"), imagePara("b")},
		Images: imgs,
	}

	got := CollectImages(doc)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ObjectID)
	assert.Equal(t, 1, got[0].Seq)
}

func TestCollectImages_Empty(t *testing.T) {
	assert.Empty(t, CollectImages(nil))
	assert.Empty(t, CollectImages(&types.Document{}))
}

func TestExport_UploadsInOrder(t *testing.T) {
	doc := &types.Document{
		ID:     "doc-1",
		Title:  "My Doc!",
		Blocks: []types.Block{imagePara("a"), textPara("body"), imagePara("b")},
		Images: imageMap("a", "b"),
	}
	store := &memStore{}
	e := New(store, fetcherFor("a", "b"), Options{Bucket: "articles", Logger: quietLogger()})

	res := e.Export(context.Background(), doc)

	assert.Equal(t, 2, res.Uploaded)
	assert.Equal(t, 0, res.Failed)
	assert.False(t, res.HasFailures())
	assert.Equal(t, []string{"mydoc/doc-1/image_001.jpg", "mydoc/doc-1/image_002.jpg"}, store.keys())
	assert.Equal(t, store.keys(), res.Keys())
	for _, c := range store.calls {
		assert.Equal(t, "articles", c.bucket)
		assert.Equal(t, "image/jpeg", c.contentType)
	}
	assert.Equal(t, "bytes-of-a", string(store.calls[0].data))
}

func TestExport_ContinuesPastFailures(t *testing.T) {
	doc := &types.Document{
		ID:     "d",
		Title:  "t",
		Blocks: []types.Block{imagePara("a"), imagePara("gone"), imagePara("b"), imagePara("c")},
		Images: imageMap("a", "gone", "b", "c"),
	}
	store := &memStore{failKey: "t/d/image_003.jpg"}
	e := New(store, fetcherFor("a", "b", "c"), Options{Bucket: "bkt", Logger: quietLogger()})

	res := e.Export(context.Background(), doc)

	assert.Equal(t, 2, res.Uploaded)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 4, res.Total())
	assert.True(t, res.HasFailures())
	assert.Equal(t, []string{"t/d/image_001.jpg", "t/d/image_004.jpg"}, store.keys())

	require.Len(t, res.Images, 4)
	assert.ErrorContains(t, res.Images[1].Err, "fetching gone")
	assert.ErrorContains(t, res.Images[2].Err, "access denied")
	assert.NoError(t, res.Images[3].Err)
}

func TestExport_NoBody(t *testing.T) {
	store := &memStore{}
	e := New(store, fetcherFor(), Options{Logger: quietLogger()})

	res := e.Export(context.Background(), &types.Document{ID: "d", Title: "t", Images: imageMap("a")})

	assert.Equal(t, 0, res.Total())
	assert.Empty(t, store.calls)
}

func TestExport_LogsFailures(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	doc := &types.Document{ID: "d", Title: "t", Blocks: []types.Block{imagePara("a")}, Images: imageMap("a")}

	New(&memStore{}, mapFetcher{}, Options{Logger: logger}).Export(context.Background(), doc)

	out := buf.String()
	assert.Contains(t, out, "found images to export")
	assert.Contains(t, out, "image export failed")
	assert.Contains(t, out, "key=t/d/image_001.jpg")
}

func TestExport_OverHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png":
			w.Header().Set("Content-Type", "image/png")
			fmt.Fprint(w, "PNGDATA")
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	imgs := map[string]types.InlineImage{
		"a": {ObjectID: "a", ContentURI: ts.URL + "/a.png"},
		"b": {ObjectID: "b", ContentURI: ts.URL + "/expired.png"},
	}
	doc := &types.Document{ID: "d", Title: "t", Blocks: []types.Block{imagePara("a"), imagePara("b")}, Images: imgs}
	store := &memStore{}
	fetcher := httputil.NewFetcher(ts.Client(), "docextract-test")

	res := New(store, fetcher, Options{Bucket: "b", Logger: quietLogger()}).Export(context.Background(), doc)

	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, store.calls, 1)
	assert.Equal(t, "PNGDATA", string(store.calls[0].data))
	assert.Equal(t, "image/jpeg", store.calls[0].contentType)
}

// The rendered JSON and the export pass number images independently. When
// the introduction holds an image, export slot 1 is the introduction image
// while the JSON cover URL (also slot 1) was assigned to the first body
// image. This is a known limitation; the test pins the current behaviour.
func TestExport_IntroductionImageNumberingDiverges(t *testing.T) {
	doc := &types.Document{
		ID:    "d",
		Title: "t",
		Blocks: []types.Block{
			heading("Introduction"),
			&types.Paragraph{Runs: []types.InlineRun{&types.TextRun{Content: "intro "}, &types.ImageRef{ObjectID: "intro"}}},
			imagePara("body1"),
			imagePara("body2"),
		},
		Images: imageMap("intro", "body1", "body2"),
	}

	article := render.Build(doc)
	exported := CollectImages(doc)

	require.Len(t, exported, 3)
	assert.Equal(t, "/api/images/t/d/image_001.jpg", article.Image)
	assert.Equal(t, "intro", exported[0].ObjectID, "export slot 1 holds the introduction image")
	assert.Equal(t, "t/d/image_003.jpg", exported[2].Key, "export writes a slot the JSON never references")
}

// Without an image in the introduction both passes agree slot for slot.
func TestExport_NumberingAgreesWithRender(t *testing.T) {
	doc := &types.Document{
		ID:    "d",
		Title: "t",
		Blocks: []types.Block{
			heading("Introduction"),
			textPara("intro"),
			imagePara("a"),
			&types.Table{Rows: []types.TableRow{{Cells: []types.TableCell{cellOf(imagePara("b"))}}}},
			imagePara("c"),
		},
		Images: imageMap("a", "b", "c"),
	}

	article := render.Build(doc)
	exported := CollectImages(doc)

	require.Len(t, exported, 3)
	assert.Equal(t, "/api/images/"+exported[0].Key, article.Image)

	var urls []string
	for _, n := range article.Document {
		switch n := n.(type) {
		case *types.ParagraphNode:
			for _, c := range n.Content {
				if im, ok := c.(*types.ImageNode); ok {
					urls = append(urls, im.URL)
				}
			}
		case *types.TableNode:
			p := n.Rows[0].Cells[0].Content[0].(*types.ParagraphNode)
			urls = append(urls, p.Content[0].(*types.ImageNode).URL)
		}
	}
	assert.Equal(t, []string{"/api/images/" + exported[1].Key, "/api/images/" + exported[2].Key}, urls)
}
