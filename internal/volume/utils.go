package volume

import (
	"math"

	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("component", "volume")

func isFinite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func ceilDiv(a, b int) int { return (a + b - 1) / b }
