package domain

type WeatherReport struct {
	City         string  `json:"city"`
	TemperatureC float64 `json:"temperature_c"`
	Condition    string  `json:"condition"`
	Humidity     float64 `json:"humidity"`
}
