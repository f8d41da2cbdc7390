package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatLength(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func formatNPS(avg, peak float64, available bool) string {
	if !available {
		return "-"
	}
	return fmt.Sprintf("%.1f/%.1f", avg, peak)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
