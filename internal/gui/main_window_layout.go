package gui

import (
	"openwrt-build/internal/fs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var fieldTitles = map[string]string{
	"brand":               "Brand",
	"model":               "Model",
	"version":             "Version",
	"cpu":                 "CPU",
	"supportedsincerel":   "Supported since",
	"supportedcurrentrel": "Current release",
	"packagearchitecture": "Package architecture",
	"wikideviurl":         "WikiDevi",
}

func (mv *mainView) buildContent() {
	mv.setupSelects()
	mv.setupInfo()
	mv.setupBackupRow()
	mv.setupStatus()

	selectRow := container.NewGridWithColumns(2,
		container.NewBorder(nil, nil, widget.NewLabel("Target"), nil, mv.targetSelect),
		container.NewBorder(nil, nil, widget.NewLabel("Subtarget"), nil, mv.subtargetSelect),
	)

	backupRow := container.NewBorder(nil, nil, mv.backupBtn, mv.downloadBtn, mv.backupEntry)

	top := container.NewVBox(
		selectRow,
		backupRow,
		widget.NewSeparator(),
	)

	info := container.NewVBox(
		widget.NewLabelWithStyle("Device information", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		mv.buildInfoForm(),
		mv.devicesLabel,
	)

	bottom := container.NewBorder(nil, nil, nil, mv.reloadBtn,
		container.NewStack(mv.progress, mv.statusLabel),
	)

	content := container.NewBorder(top, bottom, nil, nil, container.NewVScroll(info))
	mv.window.SetContent(content)
}

func (mv *mainView) setupSelects() {
	mv.targetSelect = widget.NewSelect(nil, mv.onTargetChanged)
	mv.targetSelect.PlaceHolder = "Select target"
	mv.targetSelect.Disable()

	mv.subtargetSelect = widget.NewSelect(nil, mv.onSubtargetChanged)
	mv.subtargetSelect.PlaceHolder = "Select subtarget"
	mv.subtargetSelect.Disable()
}

func (mv *mainView) setupInfo() {
	mv.infoLabels = make(map[string]*widget.Label)
	for field := range fieldTitles {
		if field == "wikideviurl" {
			continue
		}
		label := widget.NewLabel("")
		label.Wrapping = fyne.TextWrapWord
		mv.infoLabels[field] = label
	}
	mv.wikiLink = widget.NewHyperlink("", nil)
	mv.devicesLabel = widget.NewLabel("")
}

func (mv *mainView) buildInfoForm() *widget.Form {
	form := widget.NewForm()
	for _, field := range displayOrder() {
		if field == "wikideviurl" {
			form.Append(fieldTitles[field], mv.wikiLink)
			continue
		}
		form.Append(fieldTitles[field], mv.infoLabels[field])
	}
	return form
}

func (mv *mainView) setupBackupRow() {
	mv.backupEntry = widget.NewEntry()
	mv.backupEntry.SetText(mv.configValues[fs.BackupPath])
	mv.backupEntry.SetPlaceHolder("Select sysupgrade backup file (.tar.gz)")
	mv.backupEntry.OnSubmitted = mv.onBackupSubmitted

	mv.backupBtn = widget.NewButton("Select backup file", mv.openBackupFileDialog)
	mv.downloadBtn = widget.NewButton("Download from router", mv.showDownloadDialog)
}

func (mv *mainView) setupStatus() {
	mv.statusLabel = widget.NewLabel("")
	mv.progress = widget.NewProgressBarInfinite()
	mv.progress.Hide()
	mv.reloadBtn = widget.NewButton("Reload hardware table", func() {
		mv.loadCatalog(true)
	})
}
