// Package markdown normalizes model-generated markdown so it renders
// cleanly: consistent header and bullet spacing, collapsed whitespace, and
// uniform emphasis markers.
package markdown

import (
	"regexp"
	"strings"
)

// Style selects the output shape produced by Clean.
type Style string

const (
	// StyleParagraph reflows the text into prose paragraphs.
	StyleParagraph Style = "paragraph"
	// StyleBullet reshapes multi-line sections into dash bullets.
	StyleBullet Style = "bullet"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x09\x0B-\x1F\x7F-\x9F]`)
	// Strips markup-breaking characters. Header and emphasis markers stay
	// so the formatting rules below can repair them.
	unwantedChars = regexp.MustCompile(`[\\|\^~` + "`" + `@\$%&[\]{}()<>]`)

	headerNoSpace     = regexp.MustCompile(`(?m)^(#+)([^\s#])`)
	headerNeedsBlank  = regexp.MustCompile(`([^\n])\n(#+)[ \t]`)
	headerTrailBlank  = regexp.MustCompile(`(#+[ \t].*?)\n([^#\n])`)
	runSpaces         = regexp.MustCompile(`[ \t]+`)
	excessNewlines    = regexp.MustCompile(`\n{3,}`)
	trailingSpaces    = regexp.MustCompile(`(?m)[ \t]+$`)
	bulletMarkers     = regexp.MustCompile(`\s*[•\-]\s*`)
	sentenceBreak     = regexp.MustCompile(`([.!?])[ \t]*\n([^\n])`)
	boldSpacing       = regexp.MustCompile(`\*\*\s*([^*\n]+?)\s*\*\*`)
	underBold         = regexp.MustCompile(`__\s*([^_\n]+?)\s*__`)
	italicSpacing     = regexp.MustCompile(`_\s*([^_\n]+?)\s*_`)
	starItalic        = regexp.MustCompile(`(^|[^*])\*\s*([^*\n]+?)\s*\*($|[^*])`)
	headerLeadSpacing = regexp.MustCompile(`(?m)^\s*(#+)\s*`)
	headerBlankAfter  = regexp.MustCompile(`\n(#+ [^\n]+)\n([^\n])`)
	punctThenChar     = regexp.MustCompile(`([.,;:!?])([^\s0-9])`)
	spaceBeforePunct  = regexp.MustCompile(`\s+([.,;:!?])`)
	paragraphSpacing  = regexp.MustCompile(`\s*\n\s*\n\s*`)
)

// Clean strips control and markup-breaking characters from model output and
// reformats it according to the requested style. Unknown styles are treated
// as StyleParagraph. Empty input stays empty.
func Clean(text string, style Style) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = controlChars.ReplaceAllString(text, "")
	text = unwantedChars.ReplaceAllString(text, "")

	// Headers need a space after the marker and blank lines on both sides.
	text = headerNoSpace.ReplaceAllString(text, "$1 $2")
	text = headerNeedsBlank.ReplaceAllString(text, "$1\n\n$2 ")
	text = headerTrailBlank.ReplaceAllString(text, "$1\n\n$2")

	text = runSpaces.ReplaceAllString(text, " ")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = trailingSpaces.ReplaceAllString(text, "")

	if style == StyleBullet {
		text = reshapeBullets(text)
	} else {
		text = bulletMarkers.ReplaceAllString(text, "")
		text = sentenceBreak.ReplaceAllString(text, "$1 $2")
		text = excessNewlines.ReplaceAllString(text, "\n\n")
	}

	// Normalize emphasis: tight ** for bold, tight _ for italics.
	text = boldSpacing.ReplaceAllString(text, "**$1**")
	text = underBold.ReplaceAllString(text, "**$1**")
	text = italicSpacing.ReplaceAllString(text, "_$1_")
	text = starItalic.ReplaceAllString(text, "${1}_${2}_$3")

	text = headerLeadSpacing.ReplaceAllString(text, "$1 ")
	text = headerBlankAfter.ReplaceAllString(text, "\n$1\n\n$2")

	text = punctThenChar.ReplaceAllString(text, "$1 $2")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = paragraphSpacing.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// reshapeBullets turns each multi-line section into dash bullets and leaves
// single-line sections (usually headers) alone.
func reshapeBullets(text string) string {
	sections := strings.Split(text, "\n\n")
	formatted := make([]string, 0, len(sections))
	for _, section := range sections {
		lines := strings.Split(section, "\n")
		if len(lines) <= 1 {
			formatted = append(formatted, strings.TrimSpace(section))
			continue
		}
		bullets := make([]string, 0, len(lines))
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			bullets = append(bullets, "- "+strings.TrimSpace(strings.TrimLeft(line, "•-* ")))
		}
		formatted = append(formatted, strings.Join(bullets, "\n"))
	}
	return strings.Join(formatted, "\n\n")
}
