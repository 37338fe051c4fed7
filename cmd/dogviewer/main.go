package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	png "image/png"
	"os"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/pflag"

	"github.com/iafilius/DoggiesWorld/cmd/dogviewer/uihelpers"
	"github.com/iafilius/DoggiesWorld/src/applog"
	"github.com/iafilius/DoggiesWorld/src/config"
	"github.com/iafilius/DoggiesWorld/src/dogworld"
	"github.com/iafilius/DoggiesWorld/src/metrics"
	"github.com/iafilius/DoggiesWorld/src/types"
)

const (
	windowTitle  = "Doggies World"
	windowWidth  = 1500
	windowHeight = 740
)

var defaultThemeColor = color.NRGBA{R: 0x7f, G: 0xa7, B: 0xd9, A: 0xff}

type uiState struct {
	app    fyne.App
	window fyne.Window
	svc    *dogworld.Service
	cfg    *config.Config
	ctx    context.Context

	themeColor color.Color

	// button backgrounds and label text follow the color theme
	buttonBGs []*canvas.Rectangle
	avgText   *canvas.Text
	picText   *canvas.Text

	picButton *widget.Button
	status    *widget.Label
	chartImg  *canvas.Image
	pictureIm *canvas.Image

	// last rendered artifacts, used by the export items
	lastChart image.Image
}

func main() {
	fs := pflag.NewFlagSet("dogviewer", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	applog.SetLogLevel(cfg.LogLevel)
	defer applog.Sync()

	ctx := context.Background()
	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
	}
	svc, err := dogworld.Open(ctx, cfg, m)
	if err != nil {
		applog.Errorf("open database: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	if m != nil {
		srv := metrics.NewServer(cfg.MetricsAddr, m, svc.Store, applog.Logger())
		go func() {
			if err := srv.Start(); err != nil {
				applog.Errorf("status server: %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	a := app.NewWithID("com.doggies.world")
	w := a.NewWindow(windowTitle)
	w.Resize(fyne.NewSize(windowWidth, windowHeight))

	state := newUIState(ctx, a, w, svc, cfg)
	loadPrefs(state)
	w.SetContent(buildLayout(state))
	buildMenus(state)
	applyThemeColor(state, state.themeColor)

	applog.Infof("viewer ready (chart=%s)", cfg.ChartPath)
	w.ShowAndRun()
}

func newUIState(ctx context.Context, a fyne.App, w fyne.Window, svc *dogworld.Service, cfg *config.Config) *uiState {
	state := &uiState{
		app:        a,
		window:     w,
		svc:        svc,
		cfg:        cfg,
		ctx:        ctx,
		themeColor: defaultThemeColor,
		avgText:    canvas.NewText(uihelpers.DataUnavailable, defaultThemeColor),
		picText:    canvas.NewText(uihelpers.PictureUnavailable, defaultThemeColor),
		status:     widget.NewLabel(uihelpers.StatusReady),
	}
	state.avgText.Alignment = fyne.TextAlignCenter
	state.avgText.TextSize = 18
	state.picText.Alignment = fyne.TextAlignCenter
	state.picText.TextSize = 16

	cw, chh := uihelpers.ComputeChartDimensions(windowWidth / 2)
	state.chartImg = canvas.NewImageFromImage(uihelpers.Placeholder(cw, chh, uihelpers.DataUnavailable))
	state.chartImg.FillMode = canvas.ImageFillContain
	state.chartImg.SetMinSize(fyne.NewSize(float32(cw), float32(chh)))

	state.pictureIm = canvas.NewImageFromImage(uihelpers.Placeholder(cfg.PictureWidth, cfg.PictureMaxHeight, uihelpers.PictureUnavailable))
	state.pictureIm.FillMode = canvas.ImageFillContain
	state.pictureIm.SetMinSize(fyne.NewSize(float32(cfg.PictureWidth), float32(cfg.PictureMaxHeight)))
	return state
}

// themedButton stacks a button over a background that follows the color theme.
func themedButton(state *uiState, label string, tapped func()) (*widget.Button, fyne.CanvasObject) {
	bg := canvas.NewRectangle(state.themeColor)
	bg.CornerRadius = 4
	state.buttonBGs = append(state.buttonBGs, bg)
	btn := widget.NewButton(label, tapped)
	btn.Importance = widget.LowImportance
	return btn, container.NewStack(bg, btn)
}

// menuButton is a themed button that opens items as a popup menu below itself.
func menuButton(state *uiState, label string, items []*fyne.MenuItem) fyne.CanvasObject {
	menu := fyne.NewMenu(label, items...)
	var btn *widget.Button
	btn, obj := themedButton(state, label, func() {
		pos := state.app.Driver().AbsolutePositionForObject(btn).Add(fyne.NewPos(0, btn.Size().Height))
		widget.ShowPopUpMenuAtPosition(menu, state.window.Canvas(), pos)
	})
	return obj
}

func buildLayout(state *uiState) fyne.CanvasObject {
	var avgItems, chartItems []*fyne.MenuItem
	for _, m := range types.Metrics {
		m := m
		avgItems = append(avgItems, fyne.NewMenuItem(m.DisplayName(), func() { showAverage(state, m) }))
		chartItems = append(chartItems, fyne.NewMenuItem(m.DisplayName()+" chart", func() { showChart(state, m) }))
	}
	avgBtn := menuButton(state, "Get Average Dog Value", avgItems)
	chartBtn := menuButton(state, "Open Dog Chart", chartItems)
	var picBtn fyne.CanvasObject
	state.picButton, picBtn = themedButton(state, "Open Dog Picture", func() { showPicture(state) })

	left := container.NewVBox(avgBtn, chartBtn, picBtn, layout.NewSpacer(), container.NewPadded(state.avgText))

	picPanel := container.NewBorder(nil, container.NewPadded(state.picText), nil, nil, state.pictureIm)

	closeBtn := widget.NewButton("Close", func() { state.window.Close() })
	closeBtn.Importance = widget.DangerImportance
	bottom := container.NewBorder(nil, nil, nil, closeBtn, state.status)

	body := container.NewBorder(nil, nil,
		container.NewGridWrap(fyne.NewSize(300, 420), left),
		container.NewPadded(picPanel),
		container.NewPadded(state.chartImg))
	return container.NewBorder(nil, bottom, nil, nil, body)
}

func buildMenus(state *uiState) {
	if state == nil || state.window == nil || state.app == nil {
		return
	}
	dbMenu := fyne.NewMenu("Database",
		fyne.NewMenuItem("Fill Database", func() { fillDatabase(state) }),
		fyne.NewMenuItem("Clear Database", func() { clearDatabase(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Breeds…", func() { exportBreeds(state) }),
		fyne.NewMenuItem("Export Chart…", func() { exportChartPNG(state, "dog_chart.png") }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	themeMenu := fyne.NewMenu("Color Theme",
		fyne.NewMenuItem("Choose Color", func() { chooseColor(state) }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(dbMenu, themeMenu))

	canv := state.window.Canvas()
	if canv != nil {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { state.window.Close() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { state.window.Close() })
	}
}

func setStatus(state *uiState, text string) {
	state.status.SetText(text)
}

func fillDatabase(state *uiState) {
	has, err := state.svc.HasData(state.ctx)
	if err != nil {
		applog.Errorf("fill: %v", err)
		dialog.ShowError(err, state.window)
		return
	}
	if !has {
		runFill(state, nil)
		return
	}
	dialog.ShowConfirm("Database",
		"The database is not empty. Do you want to proceed and overwrite the existing data?",
		func(ok bool) { runFill(state, func() bool { return ok }) },
		state.window)
}

func runFill(state *uiState, overwrite func() bool) {
	out, res, err := state.svc.Fill(state.ctx, overwrite)
	if err != nil {
		applog.Errorf("fill: %v", err)
		setStatus(state, uihelpers.FailureStatus(uihelpers.StatusNotUpdated, err))
		dialog.ShowError(err, state.window)
		return
	}
	switch out {
	case dogworld.FillFilled:
		setStatus(state, uihelpers.StatusFilled)
	case dogworld.FillReplaced:
		setStatus(state, uihelpers.StatusUpdated)
	default:
		setStatus(state, uihelpers.StatusNotUpdated)
		return
	}
	applog.Infof("fill %s: %d breeds in %s (run %s)", out, res.Breeds, res.Duration.Round(time.Millisecond), res.RunID)
}

func clearDatabase(state *uiState) {
	if err := state.svc.Clear(state.ctx); err != nil {
		applog.Errorf("clear: %v", err)
		dialog.ShowError(err, state.window)
		return
	}
	resetViews(state)
	setStatus(state, uihelpers.StatusCleared)
}

// resetViews puts the result widgets back to their "not available" state.
func resetViews(state *uiState) {
	state.avgText.Text = uihelpers.DataUnavailable
	state.avgText.Refresh()
	state.picText.Text = uihelpers.PictureUnavailable
	state.picText.Refresh()
	b := state.chartImg.Image.Bounds()
	state.chartImg.Image = uihelpers.Placeholder(b.Dx(), b.Dy(), uihelpers.DataUnavailable)
	state.chartImg.Refresh()
	state.pictureIm.Image = uihelpers.Placeholder(state.cfg.PictureWidth, state.cfg.PictureMaxHeight, uihelpers.PictureUnavailable)
	state.pictureIm.Refresh()
	state.lastChart = nil
}

func showAverage(state *uiState, m types.Metric) {
	a, err := state.svc.Average(state.ctx, m)
	if err != nil {
		applog.Warnf("average %s: %v", m, err)
		state.avgText.Text = uihelpers.DataUnavailable
		state.avgText.Refresh()
		setStatus(state, uihelpers.FailureStatus("Average Value was not calculated", err))
		return
	}
	state.avgText.Text = a.String()
	state.avgText.Refresh()
	setStatus(state, uihelpers.AverageStatus(a.Name))
}

func showChart(state *uiState, m types.Metric) {
	c, err := state.svc.Chart(state.ctx, m)
	if err != nil {
		applog.Warnf("chart %s: %v", m, err)
		setStatus(state, uihelpers.FailureStatus("A Bar Chart couldn't be displayed", err))
		return
	}
	state.lastChart = c.Image
	state.chartImg.Image = c.Image
	state.chartImg.Refresh()
	setStatus(state, uihelpers.StatusChartShown)
}

func showPicture(state *uiState) {
	p, err := state.svc.Picture(state.ctx)
	if err != nil {
		applog.Warnf("picture: %v", err)
		state.picText.Text = uihelpers.PictureUnavailable
		state.picText.Refresh()
		setStatus(state, uihelpers.FailureStatus("A picture of a dog couldn't be found", err))
		return
	}
	b := p.Image.Bounds()
	w, h := uihelpers.FitPicture(b.Dx(), b.Dy(), state.cfg.PictureWidth, state.cfg.PictureMaxHeight)
	state.pictureIm.Image = uihelpers.ScaleImage(p.Image, w, h)
	state.pictureIm.Refresh()
	state.picText.Text = p.Breed
	state.picText.Refresh()
	setStatus(state, uihelpers.StatusPictureShown)
}

func chooseColor(state *uiState) {
	picker := dialog.NewColorPicker("Color Theme", "Pick a color for the buttons and labels", func(c color.Color) {
		applyThemeColor(state, c)
		savePrefs(state)
		setStatus(state, uihelpers.StatusThemeChanged)
	}, state.window)
	picker.Advanced = true
	picker.SetColor(state.themeColor)
	picker.Show()
}

func applyThemeColor(state *uiState, c color.Color) {
	state.themeColor = c
	for _, r := range state.buttonBGs {
		r.FillColor = c
		r.Refresh()
	}
	for _, t := range []*canvas.Text{state.avgText, state.picText} {
		t.Color = c
		t.Refresh()
	}
}

func exportBreeds(state *uiState) {
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := state.svc.ExportYAML(state.ctx, wc); err != nil {
			applog.Warnf("export breeds: %v", err)
			setStatus(state, uihelpers.FailureStatus("Breeds were not exported", err))
			return
		}
		setStatus(state, uihelpers.StatusExported)
	}, state.window)
	fs.SetFileName("breeds.yaml")
	fs.Show()
}

func exportChartPNG(state *uiState, defaultName string) {
	if state.lastChart == nil {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	img := state.lastChart
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := png.Encode(wc, img); err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		setStatus(state, uihelpers.StatusChartExported)
	}, state.window)
	fs.SetFileName(defaultName)
	fs.Show()
}

// prefs
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	state.app.Preferences().SetString("themeColor", uihelpers.HexColor(state.themeColor))
}

func loadPrefs(state *uiState) {
	raw := state.app.Preferences().StringWithFallback("themeColor", "")
	if raw == "" {
		return
	}
	c, err := uihelpers.ParseHexColor(raw)
	if err != nil {
		applog.Debugf("ignoring saved theme color: %v", err)
		return
	}
	state.themeColor = c
}
