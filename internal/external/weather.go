package external

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const weatherProvider = "openweather"

// IconURL is the OpenWeather icon for code at 2x resolution.
func IconURL(code string) string {
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", code)
}

// WeatherCondition is one entry of the weather array.
type WeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentWeather mirrors the /data/2.5/weather payload fields the app shows.
type CurrentWeather struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []WeatherCondition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

// ForecastEntry is one 3-hour slot of /data/2.5/forecast.
type ForecastEntry struct {
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []WeatherCondition `json:"weather"`
}

type forecastResponse struct {
	List []ForecastEntry `json:"list"`
}

// WeatherClient queries OpenWeather by city name in metric units.
type WeatherClient struct {
	http   *resty.Client
	apiKey string
}

func NewWeatherClient(baseURL, apiKey string) *WeatherClient {
	return &WeatherClient{http: newRestyClient(baseURL, 0), apiKey: apiKey}
}

func (c *WeatherClient) query(city string) map[string]string {
	return map[string]string{"q": city, "units": "metric", "appid": c.apiKey}
}

func (c *WeatherClient) Current(ctx context.Context, city string) (*CurrentWeather, error) {
	var out CurrentWeather
	_, err := call(ctx, weatherProvider, "current", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetQueryParams(c.query(city)).SetResult(&out).Get("/data/2.5/weather")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *WeatherClient) Forecast(ctx context.Context, city string) ([]ForecastEntry, error) {
	var out forecastResponse
	_, err := call(ctx, weatherProvider, "forecast", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetQueryParams(c.query(city)).SetResult(&out).Get("/data/2.5/forecast")
	})
	if err != nil {
		return nil, err
	}
	return out.List, nil
}
