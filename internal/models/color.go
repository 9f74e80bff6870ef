package models

import (
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog/log"
)

const (
	// TextBlack is used on light tier colors and whenever a color is unusable
	TextBlack = "#000000"
	// TextWhite is used on dark tier colors
	TextWhite = "#FFFFFF"
)

var hexColorRegex = regexp.MustCompile(`^(?:[0-9a-fA-F]{3}){1,2}$`)

// Contrast returns the text color readable on top of the given background.
// The leading "#" is optional and both 3- and 6-digit forms are accepted.
// An empty color yields black; a malformed one yields black with a warning.
func Contrast(hexColor string) string {
	if hexColor == "" {
		return TextBlack
	}

	hex := strings.Replace(hexColor, "#", "", 1)
	if !hexColorRegex.MatchString(hex) {
		log.Warn().Str("color", hexColor).Msg("Invalid hex color, defaulting text to black")
		return TextBlack
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		log.Warn().Err(err).Str("color", hexColor).Msg("Failed to parse hex color, defaulting text to black")
		return TextBlack
	}

	luminance := 0.299*c.R + 0.587*c.G + 0.114*c.B
	if luminance > 0.5 {
		return TextBlack
	}
	return TextWhite
}
