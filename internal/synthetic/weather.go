package synthetic

import (
	"math"
	"time"

	"agri-advisor/internal/models"
)

// WeatherSource labels seasonal-normal snapshots.
const WeatherSource = models.SyntheticSourcePrefix + "seasonal-normal"

type monthNormal struct {
	tempC, humidity, rainMM float64
	condition               string
}

// Plains-of-India monthly normals, January first.
var normals = [12]monthNormal{
	{18, 60, 0, "clear"},
	{21, 55, 0, "clear"},
	{26, 45, 0, "clear"},
	{31, 40, 0, "hot and dry"},
	{34, 45, 1, "hot and dry"},
	{32, 65, 5, "pre-monsoon showers"},
	{29, 82, 12, "monsoon rain"},
	{28, 85, 12, "monsoon rain"},
	{28, 80, 7, "scattered showers"},
	{27, 68, 2, "partly cloudy"},
	{23, 62, 0, "clear"},
	{19, 62, 0, "clear"},
}

// Weather returns a deterministic snapshot around the monthly normal for loc and day.
func Weather(loc models.Location, day time.Time) models.WeatherSnapshot {
	n := normals[day.Month()-1]
	key := loc.Key() + day.Format(time.DateOnly)

	temp := n.tempC + (seededRandom(seed(key+"_temp"))*2-1)*2
	humidity := n.humidity + (seededRandom(seed(key+"_humidity"))*2-1)*5
	rain := n.rainMM * seededRandom(seed(key+"_rain"))

	return models.WeatherSnapshot{
		TemperatureC: math.Round(temp*10) / 10,
		HumidityPct:  math.Round(humidity),
		RainfallMM:   math.Round(rain*10) / 10,
		WindKph:      math.Round(5 + seededRandom(seed(key+"_wind"))*10),
		Condition:    n.condition,
		ObservedAt:   time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, day.Location()),
		Source:       WeatherSource,
		Synthetic:    true,
	}
}
