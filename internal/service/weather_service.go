package service

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"

	"kbomate/internal/external"
	"kbomate/internal/models"
)

// WeatherProvider is satisfied by *external.WeatherClient.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (*external.CurrentWeather, error)
	Forecast(ctx context.Context, city string) ([]external.ForecastEntry, error)
}

type WeatherService struct {
	provider WeatherProvider
	stadiums []external.Stadium
}

func NewWeatherService(provider WeatherProvider, stadiums []external.Stadium) *WeatherService {
	return &WeatherService{provider: provider, stadiums: stadiums}
}

// HourlyItem is one forecast slot as shown on the stadium card.
type HourlyItem struct {
	DtTxt string `json:"dt_txt"`
	Temp  int    `json:"temp"`
	Icon  string `json:"icon"`
	Desc  string `json:"desc"`
}

type ForecastDay struct {
	Date  string       `json:"date"`
	Items []HourlyItem `json:"items"`
}

type HourlyForecast struct {
	Stadium external.Stadium `json:"stadium"`
	Days    []ForecastDay    `json:"days"`
}

type CurrentWeather struct {
	Stadium external.Stadium         `json:"stadium"`
	Weather *external.CurrentWeather `json:"weather"`
}

func (s *WeatherService) Stadiums() []external.Stadium {
	return s.stadiums
}

func (s *WeatherService) stadium(city string) (external.Stadium, error) {
	st, ok := external.FindStadium(s.stadiums, strings.TrimSpace(city))
	if !ok {
		return external.Stadium{}, models.NewNotFoundError("Stadium", city)
	}
	return st, nil
}

// Current fetches the live conditions for a catalog city. No retry on failure.
func (s *WeatherService) Current(ctx context.Context, city string) (*CurrentWeather, error) {
	st, err := s.stadium(city)
	if err != nil {
		return nil, err
	}
	w, err := s.provider.Current(ctx, st.City)
	if err != nil {
		return nil, upstream("weather", err)
	}
	return &CurrentWeather{Stadium: st, Weather: w}, nil
}

// Hourly fetches the 3-hour forecast and buckets it by calendar date.
func (s *WeatherService) Hourly(ctx context.Context, city string) (*HourlyForecast, error) {
	st, err := s.stadium(city)
	if err != nil {
		return nil, err
	}
	entries, err := s.provider.Forecast(ctx, st.City)
	if err != nil {
		return nil, upstream("weather", err)
	}
	return &HourlyForecast{Stadium: st, Days: GroupForecast(entries)}, nil
}

// GroupForecast keys entries by the date prefix of dt_txt. Entry order within a day is preserved.
func GroupForecast(entries []external.ForecastEntry) []ForecastDay {
	index := make(map[string]int)
	days := make([]ForecastDay, 0)

	for _, e := range entries {
		if len(e.DtTxt) < 10 {
			continue
		}
		item := HourlyItem{DtTxt: e.DtTxt, Temp: int(math.Round(e.Main.Temp))}
		if len(e.Weather) > 0 {
			item.Icon = external.IconURL(e.Weather[0].Icon)
			item.Desc = e.Weather[0].Description
		}

		date := e.DtTxt[:10]
		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, ForecastDay{Date: date})
		}
		days[i].Items = append(days[i].Items, item)
	}

	slices.SortStableFunc(days, func(a, b ForecastDay) int { return strings.Compare(a.Date, b.Date) })
	return days
}

// upstream keeps AppErrors and reports everything else as a provider failure.
func upstream(provider string, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewUpstreamError(provider+" request failed", err)
}
