package cli

import (
	"fmt"
	"io"
	"strings"
)

const bannerDefaultWidth = 60

// PrintBanner renders a box-drawing banner around a title using the default width.
func PrintBanner(w io.Writer, title string) {
	PrintBannerWidth(w, title, bannerDefaultWidth)
}

// PrintBannerWidth renders a banner of the given width, growing it to fit the title.
func PrintBannerWidth(w io.Writer, title string, width int) {
	if width < 10 {
		width = bannerDefaultWidth
	}

	inner := width - 2
	if n := len([]rune(title)) + 2; n > inner {
		inner = n
	}

	edge := strings.Repeat("═", inner)
	fmt.Fprintf(w, "╔%s╗\n", edge)
	fmt.Fprintf(w, "║%s║\n", padCenter(title, inner))
	fmt.Fprintf(w, "╚%s╝\n", edge)
}

func padCenter(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return string([]rune(text)[:width])
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-n-left)
}
