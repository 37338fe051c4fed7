package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/iafilius/DoggiesWorld/cmd/dogviewer/uihelpers"
	"github.com/iafilius/DoggiesWorld/src/config"
	"github.com/iafilius/DoggiesWorld/src/dogworld"
	"github.com/iafilius/DoggiesWorld/src/types"
)

const breedsJSON = `[
 {"id": 1, "name": "Small", "height": {"metric": "10 - 20"}, "weight": {"metric": "3 - 5"}, "life_span": "12 - 14 years", "reference_image_id": "small"},
 {"id": 2, "name": "Tall", "height": {"metric": "30 - 40"}, "weight": {"metric": "20 - 30"}, "life_span": "10 years", "reference_image_id": "tall"}
]`

func newTestState(t *testing.T) *uiState {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/images/") {
			w.Header().Set("Content-Type", "image/png")
			png.Encode(w, image.NewRGBA(image.Rect(0, 0, 40, 20)))
			return
		}
		io.WriteString(w, breedsJSON)
	}))
	t.Cleanup(api.Close)

	cfg := config.DefaultConfig()
	cfg.APIURL = api.URL
	cfg.ImageURLTemplate = api.URL + "/images/%s.png"
	cfg.ChartPath = filepath.Join(t.TempDir(), "dog_chart.png")
	ctx := context.Background()
	svc, err := dogworld.Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	a := test.NewApp()
	t.Cleanup(a.Quit)
	w := a.NewWindow(windowTitle)
	state := newUIState(ctx, a, w, svc, cfg)
	w.SetContent(buildLayout(state))
	buildMenus(state)
	return state
}

func TestActionsOnEmptyDatabase(t *testing.T) {
	state := newTestState(t)
	if state.status.Text != uihelpers.StatusReady {
		t.Fatalf("initial status %q", state.status.Text)
	}
	showAverage(state, types.Height)
	if state.status.Text != "Average Value was not calculated because of empty database" {
		t.Fatalf("status %q", state.status.Text)
	}
	if state.avgText.Text != uihelpers.DataUnavailable {
		t.Fatalf("avg text %q", state.avgText.Text)
	}
	showPicture(state)
	if state.status.Text != "A picture of a dog couldn't be found because of empty database" {
		t.Fatalf("status %q", state.status.Text)
	}
}

func TestFillAverageChartAndClear(t *testing.T) {
	state := newTestState(t)
	fillDatabase(state)
	if state.status.Text != uihelpers.StatusFilled {
		t.Fatalf("status after fill %q", state.status.Text)
	}

	showAverage(state, types.Height)
	if state.avgText.Text != "Height 25.0 cm" || state.status.Text != "Average Height was displayed" {
		t.Fatalf("average => %q / %q", state.avgText.Text, state.status.Text)
	}

	showChart(state, types.Weight)
	if state.status.Text != uihelpers.StatusChartShown || state.lastChart == nil {
		t.Fatalf("chart => %q", state.status.Text)
	}

	runFill(state, func() bool { return false })
	if state.status.Text != uihelpers.StatusNotUpdated {
		t.Fatalf("declined overwrite => %q", state.status.Text)
	}
	runFill(state, func() bool { return true })
	if state.status.Text != uihelpers.StatusUpdated {
		t.Fatalf("accepted overwrite => %q", state.status.Text)
	}

	clearDatabase(state)
	if state.status.Text != uihelpers.StatusCleared {
		t.Fatalf("status after clear %q", state.status.Text)
	}
	if state.avgText.Text != uihelpers.DataUnavailable || state.picText.Text != uihelpers.PictureUnavailable {
		t.Fatalf("labels not reset: %q / %q", state.avgText.Text, state.picText.Text)
	}
	if state.lastChart != nil {
		t.Fatalf("chart should be dropped on clear")
	}
	if n, _ := state.svc.Store.Count(context.Background()); n != 0 {
		t.Fatalf("rows after clear: %d", n)
	}
}

func TestThemeColorAppliesAndPersists(t *testing.T) {
	state := newTestState(t)
	red := color.NRGBA{R: 0xff, A: 0xff}
	applyThemeColor(state, red)
	savePrefs(state)
	if len(state.buttonBGs) != 3 {
		t.Fatalf("expected 3 feature buttons, got %d", len(state.buttonBGs))
	}
	for i, r := range state.buttonBGs {
		if r.FillColor != color.Color(red) {
			t.Fatalf("button %d not recolored: %v", i, r.FillColor)
		}
	}
	if state.avgText.Color != color.Color(red) || state.picText.Color != color.Color(red) {
		t.Fatalf("label text not recolored: %v / %v", state.avgText.Color, state.picText.Color)
	}

	state.themeColor = defaultThemeColor
	loadPrefs(state)
	if uihelpers.HexColor(state.themeColor) != "#ff0000" {
		t.Fatalf("theme color not restored: %v", state.themeColor)
	}
}

func TestPictureButtonFetchesDirectly(t *testing.T) {
	state := newTestState(t)
	test.Tap(state.picButton)
	if state.status.Text != "A picture of a dog couldn't be found because of empty database" {
		t.Fatalf("status after tap on empty database %q", state.status.Text)
	}

	fillDatabase(state)
	test.Tap(state.picButton)
	if state.status.Text != uihelpers.StatusPictureShown {
		t.Fatalf("status after tap %q", state.status.Text)
	}
	if state.picText.Text != "Small" && state.picText.Text != "Tall" {
		t.Fatalf("picture label %q", state.picText.Text)
	}
	if b := state.pictureIm.Image.Bounds(); b.Dx() != 370 || b.Dy() != 185 {
		t.Fatalf("picture not fitted: %v", b)
	}
}
