package api

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/tierzen/internal/drag"
	"github.com/meur/tierzen/internal/models"
	"github.com/meur/tierzen/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "tierzen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, Options{AllowedOrigins: []string{"*"}}), store
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createBoard(t *testing.T, s *Server) models.Board {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/boards", models.BoardCreate{Name: "Snacks"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Board](t, rec)
}

// layout places each tier on a 100 unit row and the unranked pool below,
// items 100 units wide in sequence order.
func layout(b models.Board) []drag.Region {
	row := func(c models.CollectionID, y float64, items []models.Item) drag.Region {
		r := drag.Region{Collection: c, Bounds: drag.Rect{X: 0, Y: y, Width: 800, Height: 100}}
		for i, it := range items {
			r.Items = append(r.Items, drag.ItemBox{
				ItemID: it.ID,
				Rect:   drag.Rect{X: float64(i) * 100, Y: y, Width: 100, Height: 100},
			})
		}
		return r
	}

	var regions []drag.Region
	for i, tier := range b.Tiers {
		regions = append(regions, row(models.CollectionID(tier.ID), float64(i)*100, tier.Items))
	}
	return append(regions, row(models.Unranked, float64(len(b.Tiers))*100, b.Unranked))
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestTemplates_DefaultIsServedUnseeded(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	templates := decode[[]models.Template](t, rec)
	require.Len(t, templates, 1)
	assert.Equal(t, models.DefaultTemplateID, templates[0].ID)

	rec = do(t, s, http.MethodGet, "/api/templates/"+models.DefaultTemplateID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/templates/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBoard(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBoard(t, s)

	assert.Equal(t, "Snacks", b.Name)
	assert.True(t, b.EditMode)
	require.Len(t, b.Tiers, 3)
	assert.Equal(t, "tier-s-initial", b.Tiers[0].ID)
	assert.Len(t, b.Unranked, 2)

	rec := do(t, s, http.MethodPost, "/api/boards", models.BoardCreate{TemplateID: "missing"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/boards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.BoardSummary](t, rec), 1)

	rec = do(t, s, http.MethodGet, "/api/s/"+b.ShareCode, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, b.ID, decode[models.Board](t, rec).ID)
}

func TestBoardNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/api/boards/missing", "/api/boards/missing/drag", "/api/s/nope"} {
		rec := do(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := do(t, s, http.MethodDelete, "/api/boards/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBoard(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBoard(t, s)

	rec := do(t, s, http.MethodDelete, "/api/boards/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/boards/"+b.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTierAndItemEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBoard(t, s)
	base := "/api/boards/" + b.ID

	rec := do(t, s, http.MethodPost, base+"/tiers", models.TierCreate{Name: "C Tier", Color: "#333"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tier := decode[models.Tier](t, rec)
	assert.Equal(t, models.TextWhite, tier.TextColor)

	name := "Top"
	rec = do(t, s, http.MethodPut, base+"/tiers/tier-s-initial", models.TierPatch{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Top", decode[models.Board](t, rec).Tiers[0].Name)

	rec = do(t, s, http.MethodPost, base+"/tiers/"+tier.ID+"/move", models.TierMove{Index: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tier.ID, decode[models.Board](t, rec).Tiers[0].ID)

	rec = do(t, s, http.MethodPut, base+"/tiers/missing", models.TierPatch{Name: &name})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, base+"/items", models.ItemInput{Name: "Gamma"})
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[models.Item](t, rec)

	rec = do(t, s, http.MethodPut, base+"/items/"+item.ID+"/error", models.ItemErrorUpdate{HasError: true})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodPut, base+"/items/"+item.ID, models.ItemInput{Name: "Gamma 2"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Item](t, rec)
	assert.Equal(t, "Gamma 2", updated.Name)
	assert.False(t, updated.HasError)

	rec = do(t, s, http.MethodDelete, base+"/items/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, base+"/items/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, base+"/tiers/tier-s-initial", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.Board](t, rec).Tiers, 3)

	rec = do(t, s, http.MethodPost, base+"/items", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemNameRequired(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBoard(t, s)
	base := "/api/boards/" + b.ID

	rec := do(t, s, http.MethodPost, base+"/items", models.ItemInput{Name: "  ", ImageURL: "x.png"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Item name is required")

	rec = do(t, s, http.MethodPut, base+"/items/item-alpha-initial", models.ItemInput{Name: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, base, nil)
	got := decode[models.Board](t, rec)
	require.Len(t, got.Unranked, 2)
	assert.Equal(t, "Item Alpha", got.Unranked[0].Name)
}

func TestDragRejectedInEditMode(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBoard(t, s)

	rec := do(t, s, http.MethodPost, "/api/boards/"+b.ID+"/drag", DragBegin{ItemID: "item-alpha-initial"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/boards/"+b.ID+"/drag", DragBegin{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDragRoundTripPersists(t *testing.T) {
	s, store := newTestServer(t)
	b := createBoard(t, s)
	base := "/api/boards/" + b.ID

	rec := do(t, s, http.MethodPut, base+"/mode", models.ModeUpdate{EditMode: false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, base+"/drag", DragBegin{ItemID: "item-alpha-initial"})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[drag.State](t, rec)
	require.NotNil(t, st.Session)
	assert.Equal(t, models.Unranked, st.Session.Origin)
	assert.Nil(t, st.Preview)

	rec = do(t, s, http.MethodPost, base+"/drag/move", DragMove{
		Pointer: drag.Point{X: 50, Y: 150},
		Regions: layout(b),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	st = decode[drag.State](t, rec)
	require.NotNil(t, st.Preview)
	assert.Equal(t, drag.Preview{Target: "tier-a-initial", Index: 0}, *st.Preview)

	rec = do(t, s, http.MethodGet, base+"/drag", nil)
	assert.NotNil(t, decode[drag.State](t, rec).Preview)

	rec = do(t, s, http.MethodPost, base+"/drag/drop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[struct {
		Outcome string       `json:"outcome"`
		Board   models.Board `json:"board"`
		Drag    drag.State   `json:"drag"`
	}](t, rec)
	assert.Equal(t, "moved", res.Outcome)
	assert.False(t, res.Drag.Dragging())
	require.Len(t, res.Board.Tiers[1].Items, 1)
	assert.Equal(t, "item-alpha-initial", res.Board.Tiers[1].Items[0].ID)

	reloaded := New(store, Options{})
	rec = do(t, reloaded, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Board](t, rec)
	require.Len(t, got.Tiers[1].Items, 1)
	assert.Equal(t, "item-alpha-initial", got.Tiers[1].Items[0].ID)
	assert.Len(t, got.Unranked, 1)
	assert.False(t, got.EditMode)
}

func TestDragCancelAndEditModeAbandon(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBoard(t, s)
	base := "/api/boards/" + b.ID

	do(t, s, http.MethodPut, base+"/mode", models.ModeUpdate{EditMode: false})

	rec := do(t, s, http.MethodPost, base+"/drag", DragBegin{ItemID: "item-beta-initial"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPost, base+"/drag/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[drag.State](t, rec).Dragging())

	rec = do(t, s, http.MethodPost, base+"/drag", DragBegin{ItemID: "item-beta-initial"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPut, base+"/mode", models.ModeUpdate{EditMode: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, base+"/drag", nil)
	assert.False(t, decode[drag.State](t, rec).Dragging())

	rec = do(t, s, http.MethodPost, base+"/drag/drop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode[DropResult](t, rec).Outcome)
}

func TestReset(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBoard(t, s)
	base := "/api/boards/" + b.ID

	do(t, s, http.MethodDelete, base+"/tiers/tier-s-initial", nil)
	do(t, s, http.MethodPut, base+"/mode", models.ModeUpdate{EditMode: false})

	rec := do(t, s, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Board](t, rec)
	assert.Len(t, got.Tiers, 3)
	assert.Len(t, got.Unranked, 2)
	assert.True(t, got.EditMode)
}

func TestExportXML(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBoard(t, s)

	rec := do(t, s, http.MethodGet, "/api/boards/"+b.ID+"/export.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="Snacks.xml"`)

	var doc struct {
		Name string `xml:"name,attr"`
	}
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Snacks", doc.Name)
}

func TestExportPNG(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBoard(t, s)

	rec := do(t, s, http.MethodGet, "/api/boards/"+b.ID+"/export.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "My-List.png", filename("My List!", "png"))
	assert.Equal(t, "tierlist.xml", filename("???", "xml"))
}
