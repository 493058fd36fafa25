package analyzer

import "stockweather/internal/model"

// Weather maps a rise probability onto its forecast icon and description.
func Weather(p float64) (icon, description string) {
	return model.WeatherIcon(p), model.WeatherDescription(p)
}
