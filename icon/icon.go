// Package icon renders status symbols in the configured variant.
package icon

import (
	"github.com/playmark/playmark/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants lists the accepted values of icons.variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a status symbol.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Progress
	Play
	Resume
)

type variants struct {
	emoji, nerd, plain string
}

var icons = map[Icon]variants{
	Success:  {"✅", "", "✓"},
	Fail:     {"❌", "", "✗"},
	Progress: {"⏳", "", "…"},
	Play:     {"▶️", "", ">"},
	Resume:   {"⏩", "", ">>"},
}

// Get renders i for the configured variant. Unknown variants render nothing.
func Get(i Icon) string {
	v := icons[i]
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return v.emoji
	case nerd:
		return v.nerd
	case plain:
		return v.plain
	default:
		return ""
	}
}
