package weather

// CategorizeTemperature maps a Fahrenheit reading to an ordinal label.
// Boundaries are closed below and open above; out-of-physical-range values
// still categorize.
func CategorizeTemperature(tempF float64) string {
	switch {
	case tempF < 32:
		return "freezing"
	case tempF < 50:
		return "cold"
	case tempF < 70:
		return "mild"
	case tempF < 85:
		return "warm"
	default:
		return "hot"
	}
}

// CategorizeHumidity maps a relative humidity percentage to a comfort label.
func CategorizeHumidity(humidityPct float64) string {
	switch {
	case humidityPct < 30:
		return "dry"
	case humidityPct < 50:
		return "comfortable"
	case humidityPct < 70:
		return "humid"
	default:
		return "very_humid"
	}
}
