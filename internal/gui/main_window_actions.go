package gui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"openwrt-build/internal/backup"
	"openwrt-build/internal/fs"
	"openwrt-build/internal/selection"
	"openwrt-build/internal/toh"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

func displayOrder() []string {
	fields := make([]string, 0, len(toh.DisplayFields))
	for _, field := range toh.DisplayFields {
		if _, ok := fieldTitles[field]; ok {
			fields = append(fields, field)
		}
	}
	return fields
}

// loadCatalog fetches the hardware table off the UI goroutine. refresh
// bypasses the cache.
func (mv *mainView) loadCatalog(refresh bool) {
	if mv.loading {
		return
	}
	mv.loading = true
	mv.setBusy(true, "Loading hardware table...")

	go func() {
		var (
			catalog *toh.Catalog
			err     error
		)
		if refresh {
			catalog, err = mv.loader.Refresh(context.Background())
		} else {
			catalog, err = mv.loader.Load(context.Background())
		}

		mv.runOnUI(func() {
			mv.finishLoad(catalog, err, refresh)
		})
	}()
}

func (mv *mainView) finishLoad(catalog *toh.Catalog, err error, refresh bool) {
	mv.loading = false
	mv.setBusy(false, "")
	if err != nil {
		// setBusy disabled the pickers; the previous catalog is still usable
		mv.applySnapshot(mv.state.Snapshot())
		mv.showLoadError(err, refresh)
		return
	}

	mv.statusLabel.SetText(fmt.Sprintf("%d devices in %d targets", catalog.Len(), len(catalog.Targets())))
	mv.state.SetCatalog(catalog)
	if err := mv.state.Restore(mv.configValues[fs.LastTarget], mv.configValues[fs.LastSubtarget]); err != nil {
		mv.log.Warn().Err(err).Msg("could not restore previous selection")
	}
}

func (mv *mainView) showLoadError(err error, refresh bool) {
	mv.log.Error().Err(err).Msg("hardware table unavailable")
	mv.statusLabel.SetText("Hardware table unavailable")

	hasCatalog := mv.state.Snapshot().Targets != nil
	message := err.Error()
	var loadErr *toh.LoadError
	if errors.As(err, &loadErr) && loadErr.Stage == toh.StageFetch {
		message = "Could not download the Table of Hardware from openwrt.org.\n\n" + message
	}

	label := widget.NewLabel(message + "\n\nRetry?")
	label.Wrapping = fyne.TextWrapWord
	confirm := dialog.NewCustomConfirm("Hardware table unavailable", "Retry", "Close", label, func(ok bool) {
		if ok {
			mv.loadCatalog(refresh)
			return
		}
		if !hasCatalog {
			mv.app.Quit()
		}
	}, mv.window)
	confirm.Resize(fyne.NewSize(500, 220))
	confirm.Show()
}

func (mv *mainView) setBusy(busy bool, status string) {
	if busy {
		mv.progress.Show()
		mv.progress.Start()
		mv.reloadBtn.Disable()
		mv.targetSelect.Disable()
		mv.subtargetSelect.Disable()
	} else {
		mv.progress.Stop()
		mv.progress.Hide()
		mv.reloadBtn.Enable()
	}
	mv.statusLabel.SetText(status)
}

func (mv *mainView) onTargetChanged(target string) {
	if mv.updating || target == "" {
		return
	}
	if err := mv.state.SelectTarget(target); err != nil {
		mv.log.Warn().Err(err).Str("target", target).Msg("target selection failed")
	}
}

func (mv *mainView) onSubtargetChanged(subtarget string) {
	if mv.updating || subtarget == "" {
		return
	}
	if err := mv.state.SelectSubtarget(subtarget); err != nil {
		mv.log.Warn().Err(err).Str("subtarget", subtarget).Msg("subtarget selection failed")
	}
}

// applySnapshot renders the selection state. It runs on the UI goroutine
// because every state change is triggered from there.
func (mv *mainView) applySnapshot(snap selection.Snapshot) {
	mv.updating = true
	defer func() { mv.updating = false }()

	mv.targetSelect.SetOptions(snap.Targets)
	if len(snap.Targets) > 0 {
		mv.targetSelect.Enable()
	} else {
		mv.targetSelect.Disable()
	}
	if snap.Target != "" {
		mv.targetSelect.SetSelected(snap.Target)
	} else {
		mv.targetSelect.ClearSelected()
	}

	mv.subtargetSelect.SetOptions(snap.Subtargets)
	if len(snap.Subtargets) > 0 {
		mv.subtargetSelect.Enable()
	} else {
		mv.subtargetSelect.Disable()
	}
	if snap.Subtarget != "" {
		mv.subtargetSelect.SetSelected(snap.Subtarget)
	} else {
		mv.subtargetSelect.ClearSelected()
	}

	mv.renderInfo(snap)

	if snap.Err != nil {
		mv.statusLabel.SetText(snap.Err.Error())
		return
	}

	if snap.Phase == selection.SubtargetSelected {
		mv.persist(map[string]string{
			fs.LastTarget:    snap.Target,
			fs.LastSubtarget: snap.Subtarget,
		})
	}
}

func (mv *mainView) renderInfo(snap selection.Snapshot) {
	for field, label := range mv.infoLabels {
		label.SetText(strings.TrimSpace(snap.Info[field]))
	}

	wiki := strings.TrimSpace(snap.Info["wikideviurl"])
	mv.wikiLink.SetText(wiki)
	if wiki == "" {
		mv.wikiLink.SetURL(nil)
	} else if err := mv.wikiLink.SetURLFromString(wiki); err != nil {
		mv.log.Debug().Err(err).Str("url", wiki).Msg("invalid wikidevi url")
	}

	switch n := len(snap.Devices); {
	case snap.Phase != selection.SubtargetSelected:
		mv.devicesLabel.SetText("")
	case n == 1:
		mv.devicesLabel.SetText("1 matching device")
	default:
		mv.devicesLabel.SetText(fmt.Sprintf("%d matching devices", n))
	}
}

func (mv *mainView) persist(values map[string]string) {
	changed := false
	for key, value := range values {
		if mv.configValues[key] != value {
			changed = true
			break
		}
	}
	if !changed {
		return
	}

	updated := mv.configValues.Clone()
	for key, value := range values {
		updated[key] = value
	}
	if err := fs.SaveConfig(updated); err != nil {
		fyne.LogError("failed to save configuration", err)
		return
	}
	mv.configValues = updated
}

func (mv *mainView) setBackupPath(path string) error {
	resolved := filepath.Clean(path)
	if err := backup.Validate(resolved); err != nil {
		return err
	}
	mv.backupEntry.SetText(resolved)
	mv.persist(map[string]string{fs.BackupPath: resolved})
	mv.log.Info().Str("path", resolved).Msg("backup file selected")
	return nil
}

func (mv *mainView) onBackupSubmitted(text string) {
	path := strings.TrimSpace(text)
	if path == "" {
		return
	}
	if err := mv.setBackupPath(path); err != nil {
		dialog.ShowError(err, mv.window)
	}
}

func (mv *mainView) openBackupFileDialog() {
	fileDialog := dialog.NewFileOpen(func(read fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mv.window)
			return
		}
		if read == nil {
			return
		}
		defer read.Close()

		if err := mv.setBackupPath(uriToPath(read.URI())); err != nil {
			dialog.ShowError(err, mv.window)
		}
	}, mv.window)
	// the extension filter only sees the last suffix; setBackupPath
	// enforces the full .tar.gz
	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".gz"}))
	fileDialog.SetTitleText("Select Backup File")

	currentPath := strings.TrimSpace(mv.backupEntry.Text)
	if currentPath != "" {
		uri := storage.NewFileURI(filepath.Dir(currentPath))
		if listURI, err := storage.ListerForURI(uri); err == nil {
			fileDialog.SetLocation(listURI)
		} else {
			fyne.LogError("failed to set initial backup file location", err)
		}
	}

	fileDialog.Resize(fyne.NewSize(900, 600))
	fileDialog.Show()
}

func (mv *mainView) showDownloadDialog() {
	hostEntry := widget.NewEntry()
	hostEntry.SetText(mv.configValues[fs.RouterIP])
	hostEntry.SetPlaceHolder(defaultRouterIP)

	form := dialog.NewForm(
		"Download backup from router",
		"Download",
		"Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Router address", hostEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			host := strings.TrimSpace(hostEntry.Text)
			if host == "" {
				host = defaultRouterIP
			}
			mv.persist(map[string]string{fs.RouterIP: host})
			mv.downloadBackup(host)
		},
		mv.window,
	)
	form.Resize(fyne.NewSize(420, 160))
	form.Show()
}

const defaultRouterIP = "192.168.1.1"

func (mv *mainView) downloadBackup(host string) {
	dir, err := fs.BackupDir()
	if err != nil {
		dialog.ShowError(err, mv.window)
		return
	}

	params := backup.Parameters{
		Host:              host,
		PromptCredentials: mv.credentialsPrompt(host),
		Dest:              filepath.Join(dir, backup.DefaultBackupName(host, time.Now())),
	}

	mv.downloadBtn.Disable()
	mv.backupBtn.Disable()
	mv.progress.Show()
	mv.progress.Start()

	logFn := func(line string) {
		mv.log.Info().Str("host", host).Msg(line)
		mv.runOnUI(func() {
			mv.statusLabel.SetText(line)
		})
	}

	go func() {
		path, err := backup.FetchFromDevice(context.Background(), params, logFn)
		mv.runOnUI(func() {
			mv.progress.Stop()
			mv.progress.Hide()
			mv.downloadBtn.Enable()
			mv.backupBtn.Enable()

			if err == nil {
				err = mv.setBackupPath(path)
			}
			if err != nil {
				mv.log.Error().Err(err).Str("host", host).Msg("backup download failed")
				mv.statusLabel.SetText("Backup download failed")
				dialog.ShowError(err, mv.window)
			}
		})
	}()
}

func uriToPath(uri fyne.URI) string {
	path := uri.Path()
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 2 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.Clean(filepath.FromSlash(path))
}
