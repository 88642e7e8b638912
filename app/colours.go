package app

const (
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var levelColours = map[Level]string{
	LevelInfo:    Cyan,
	LevelSuccess: Green,
	LevelError:   Red,
}

var sentimentColours = map[string]string{
	"HAPPY":   Green,
	"SAD":     Blue,
	"ANGRY":   Red,
	"NEUTRAL": Gray,
	"ANXIOUS": Yellow,
}

// Colourise wraps s in the given colour when enabled.
func Colourise(enabled bool, colour, s string) string {
	if !enabled || colour == "" {
		return s
	}
	return colour + s + ResetColor
}

// SentimentColour returns the display colour for a sentiment name.
func SentimentColour(sentiment string) string {
	return sentimentColours[sentiment]
}
