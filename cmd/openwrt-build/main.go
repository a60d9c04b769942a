package main

// openwrt-build
// Pick an OpenWrt target/subtarget from the Table of Hardware and a
// sysupgrade backup in preparation for building a firmware image.

import (
	"openwrt-build/internal/gui"
)

func main() {
	gui.BuildMainWindow()
}
