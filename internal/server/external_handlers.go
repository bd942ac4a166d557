package server

import (
	"kbomate/internal/featureflags"
	"kbomate/internal/middleware"
	"kbomate/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TranscriptErrorMessage is the only error body the transcript proxy returns.
const TranscriptErrorMessage = "유튜브 자막을 추출할 수 없습니다."

// GetStadiums handles GET /api/weather/stadiums
// @Summary KBO stadium catalog
// @Tags weather
// @Produce json
// @Success 200 {array} external.Stadium
// @Router /weather/stadiums [get]
func (s *Server) GetStadiums(c *fiber.Ctx) error {
	return c.JSON(s.weatherService.Stadiums())
}

// GetCurrentWeather handles GET /api/weather/:city
// @Summary Current weather at a stadium city
// @Tags weather
// @Produce json
// @Param city path string true "Catalog city"
// @Success 200 {object} service.CurrentWeather
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /weather/{city} [get]
func (s *Server) GetCurrentWeather(c *fiber.Ctx) error {
	w, err := s.weatherService.Current(c.UserContext(), c.Params("city"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// GetHourlyWeather handles GET /api/weather/:city/hourly
// @Summary 3-hour forecast grouped by date
// @Tags weather
// @Produce json
// @Param city path string true "Catalog city"
// @Success 200 {object} service.HourlyForecast
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /weather/{city}/hourly [get]
func (s *Server) GetHourlyWeather(c *fiber.Ctx) error {
	f, err := s.weatherService.Hourly(c.UserContext(), c.Params("city"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(f)
}

type videoRequest struct {
	VideoURL string `json:"videoUrl"`
}

// YouTubeTranscript handles POST /api/youtube-transcript
// @Summary Fetch a video's captions
// @Description Any failure answers 500 with a fixed message
// @Tags youtube
// @Accept json
// @Produce json
// @Param request body object{videoUrl=string} true "Video"
// @Success 200 {object} object{transcript=string}
// @Failure 500 {object} object{error=string}
// @Router /youtube-transcript [post]
func (s *Server) YouTubeTranscript(c *fiber.Ctx) error {
	var req videoRequest
	if err := c.BodyParser(&req); err != nil {
		return transcriptFailed(c, err)
	}
	text, err := s.summaryService.Transcript(c.UserContext(), req.VideoURL)
	if err != nil {
		return transcriptFailed(c, err)
	}
	return c.JSON(fiber.Map{"transcript": text})
}

func transcriptFailed(c *fiber.Ctx, err error) error {
	middleware.Logger.WarnContext(c.UserContext(), "transcript proxy failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": TranscriptErrorMessage})
}

// SummarizeYouTube handles POST /api/youtube/summary
// @Summary Summarize a video with the LLM
// @Tags youtube
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{videoUrl=string} true "Video"
// @Success 200 {object} object{id=int,summary=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /youtube/summary [post]
func (s *Server) SummarizeYouTube(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled(featureflags.YouTubeSummary, currentUserID(c)) {
		return respondError(c, models.NewNotFoundError("Feature", featureflags.YouTubeSummary))
	}
	var req videoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	summary, err := s.summaryService.SummarizeVideo(c.UserContext(), req.VideoURL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": summary.ID, "summary": summary.Content})
}
