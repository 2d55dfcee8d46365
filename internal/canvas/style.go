package canvas

import (
	"fmt"

	"github.com/ironsheep/scanpad/internal/config"
	"github.com/ironsheep/scanpad/internal/imaging"
)

// StyleFromConfig builds the overlay style from the canvas settings.
func StyleFromConfig(cfg config.CanvasConfig) (OverlayStyle, error) {
	c, err := imaging.ParseHexColor(cfg.OverlayColor)
	if err != nil {
		return OverlayStyle{}, fmt.Errorf("overlay color: %w", err)
	}
	return OverlayStyle{Color: c, Width: cfg.OverlayWidth, Dash: cfg.OverlayDash}, nil
}
