package segmentcache

import (
	"fmt"
	"time"
)

// Config holds the detector thresholds a set of cached results was produced
// with. It is comparable and used directly as the partition key.
type Config struct {
	PictureBlackRatio   float64
	PixelBlackThreshold float64
	MinBlackDuration    time.Duration
}

// Valid reports whether the thresholds are usable.
func (c Config) Valid() bool {
	return c.PictureBlackRatio > 0 && c.PictureBlackRatio <= 1 &&
		c.PixelBlackThreshold >= 0 && c.PixelBlackThreshold <= 1 &&
		c.MinBlackDuration > 0
}

func (c Config) String() string {
	return fmt.Sprintf("pic_th=%g pix_th=%g d=%s", c.PictureBlackRatio, c.PixelBlackThreshold, c.MinBlackDuration)
}
