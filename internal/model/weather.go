package model

// Weather icon buckets. The probability space maps onto five fixed icons,
// sunny at the top and rain at the bottom.
const (
	IconSunny        = "☀️"
	IconMostlySunny  = "🌤️"
	IconPartlyCloudy = "⛅"
	IconCloudy       = "🌥️"
	IconRainy        = "🌧️"
)

// WeatherIcon maps a rise probability to its forecast icon.
func WeatherIcon(probability float64) string {
	switch {
	case probability >= 0.7:
		return IconSunny
	case probability >= 0.6:
		return IconMostlySunny
	case probability >= 0.4:
		return IconPartlyCloudy
	case probability >= 0.3:
		return IconCloudy
	default:
		return IconRainy
	}
}

// WeatherDescription maps a rise probability to its forecast sentence.
// Buckets match WeatherIcon exactly.
func WeatherDescription(probability float64) string {
	switch {
	case probability >= 0.7:
		return "Strong rise expected"
	case probability >= 0.6:
		return "Rise likely"
	case probability >= 0.4:
		return "Mixed signals"
	case probability >= 0.3:
		return "Fall likely"
	default:
		return "Strong fall expected"
	}
}
