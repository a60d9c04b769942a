package gui

import (
	"strings"

	"openwrt-build/internal/fs"
	"openwrt-build/internal/logger"
	"openwrt-build/internal/selection"
	"openwrt-build/internal/toh"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

type mainView struct {
	app          fyne.App
	window       fyne.Window
	log          zerolog.Logger
	configValues fs.EnvConfig
	loader       *toh.Loader
	state        *selection.State

	// set while widgets are updated from a snapshot so that their
	// OnChanged callbacks do not feed back into the state
	updating bool
	loading  bool

	targetSelect    *widget.Select
	subtargetSelect *widget.Select
	infoLabels      map[string]*widget.Label
	wikiLink        *widget.Hyperlink
	devicesLabel    *widget.Label
	backupEntry     *widget.Entry
	backupBtn       *widget.Button
	downloadBtn     *widget.Button
	reloadBtn       *widget.Button
	statusLabel     *widget.Label
	progress        *widget.ProgressBarInfinite
}

func BuildMainWindow() {
	a := app.NewWithID("org.openwrt.build-gui")
	w := a.NewWindow("openwrt-build")

	configValues, err := fs.LoadConfig()
	if err != nil {
		fyne.LogError("failed to load configuration", err)
		configValues = fs.EnvConfig{}
	}

	logCfg := logger.Config{Level: configValues[fs.LogLevel]}
	if path, err := fs.LogFilePath(); err == nil {
		logCfg.LogFile = path
	}
	closer, err := logger.Init(logCfg)
	if err != nil {
		fyne.LogError("failed to initialise logging", err)
	} else {
		defer closer.Close()
	}

	cachePath, err := fs.CacheFilePath()
	if err != nil {
		fyne.LogError("failed to resolve cache path", err)
		cachePath = ""
	}

	mv := &mainView{
		app:          a,
		window:       w,
		log:          logger.WithComponent("gui"),
		configValues: configValues,
		loader: &toh.Loader{
			URL:       strings.TrimSpace(configValues[fs.TohURL]),
			CachePath: cachePath,
			Logger:    logger.WithComponent("toh"),
		},
		state: selection.New(),
	}

	mv.buildContent()
	mv.state.Subscribe(mv.applySnapshot)

	w.Resize(fyne.NewSize(1280, 960))
	w.SetFixedSize(true)

	mv.loadCatalog(false)
	w.ShowAndRun()
}

func (mv *mainView) runOnUI(fn func()) {
	fyne.Do(fn)
}
