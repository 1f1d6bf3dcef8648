package ui

import "strings"

const bannerArt = `
   ▄▄▄·  ▐ ▄  ▄▄ • ▄▄▌
  ▐█ ▀█ •█▌▐█▐█ ▀ ▪██•  ▪
  ▄█▀▀█ ▐█▐▐▌▄█ ▀█▄██▪   ▄█▀▄
  ▐█ ▪▐▌██▐█▌▐█▄▪▐█▐█▌▐▌▐█▌.▐▌
   ▀  ▀ ▀▀ █▪·▀▀▀▀ .▀▀▀  ▀█▄▀▪

        voice assistant`

// renderBanner returns the banner art horizontally centred for the
// given terminal width. No scaling is applied.
func renderBanner(width int) string {
	lines := strings.Split(strings.Trim(bannerArt, "\n"), "\n")

	maxW := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > maxW {
			maxW = n
		}
	}

	var b strings.Builder
	for _, l := range lines {
		pad := 0
		if width > maxW {
			pad = (width - maxW) / 2
		}
		if pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(bannerStyle.Render(l))
		b.WriteByte('\n')
	}
	return b.String()
}
