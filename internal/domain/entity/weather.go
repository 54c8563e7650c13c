package entity

// WeatherReport is the dashboard's weather payload for a point.
type WeatherReport struct {
	Location WeatherLocation  `json:"location"`
	Current  CurrentWeather   `json:"current"`
	Alerts   []WeatherNotice  `json:"alerts"`
	Forecast []ForecastPeriod `json:"forecast"`
}

type WeatherLocation struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

type CurrentWeather struct {
	Temperature int     `json:"temperature"` // °C
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	WindSpeed   int     `json:"windSpeed"`  // km/h
	Humidity    int     `json:"humidity"`   // %
	Pressure    int     `json:"pressure"`   // hPa
	Visibility  float64 `json:"visibility"` // km
	Icon        string  `json:"icon"`
}

type ForecastPeriod struct {
	Time        string `json:"time"`
	Temp        int    `json:"temp"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// WeatherNotice is a weather-specific alert attached to a report.
type WeatherNotice struct {
	ID          string    `json:"id"`
	Type        AlertType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Areas       []string  `json:"areas"`
	Expires     string    `json:"expires"`
	Source      string    `json:"source"`
}
