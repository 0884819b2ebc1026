package main

import (
	"os"
	"testing"

	"github.com/kigopro/kigo/internal/ui"
)

func TestMain(m *testing.M) {
	ui.ForceNoColor()
	os.Exit(m.Run())
}
