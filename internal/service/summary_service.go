package service

import (
	"context"
	"strconv"
	"strings"

	"kbomate/internal/external"
	"kbomate/internal/models"
	"kbomate/internal/repository"
	"kbomate/internal/validation"
)

const (
	youtubeSummaryPrompt = "다음 유튜브 영상의 자막을 한국어로 요약해줘. 주요 내용과 하이라이트를 포함해서:\n"
	commentSummaryPrompt = "다음은 야구 직관 메이트 모집글에 달린 댓글들이야. 한국어로 간단히 요약해줘:\n"
)

// TranscriptFetcher is satisfied by *external.TranscriptClient.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoURL string) ([]external.TranscriptSegment, error)
}

// TextGenerator is satisfied by *external.GeminiClient.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SummaryService produces transcripts and LLM summaries and keeps a record of each summary.
type SummaryService struct {
	transcripts TranscriptFetcher
	llm         TextGenerator
	summaries   repository.SummaryRepository
	posts       repository.MatePostRepository
	comments    repository.MateCommentRepository
}

func NewSummaryService(
	transcripts TranscriptFetcher,
	llm TextGenerator,
	summaries repository.SummaryRepository,
	posts repository.MatePostRepository,
	comments repository.MateCommentRepository,
) *SummaryService {
	return &SummaryService{
		transcripts: transcripts,
		llm:         llm,
		summaries:   summaries,
		posts:       posts,
		comments:    comments,
	}
}

// Transcript returns the caption text of a video, segments joined by a single space.
func (s *SummaryService) Transcript(ctx context.Context, videoURL string) (string, error) {
	videoURL = trimmed(videoURL)
	if err := validation.ValidateYouTubeURL(videoURL); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	segments, err := s.transcripts.Fetch(ctx, videoURL)
	if err != nil {
		return "", upstream("transcript", err)
	}

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	return strings.Join(texts, " "), nil
}

// SummarizeVideo summarizes a video's transcript and stores the result.
func (s *SummaryService) SummarizeVideo(ctx context.Context, videoURL string) (*models.Summary, error) {
	transcript, err := s.Transcript(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	text, err := s.llm.Generate(ctx, youtubeSummaryPrompt+transcript)
	if err != nil {
		return nil, upstream("gemini", err)
	}

	summary := &models.Summary{
		Source:    models.SummarySourceYouTube,
		SourceRef: trimmed(videoURL),
		Content:   text,
	}
	if err := s.summaries.Create(ctx, summary); err != nil {
		return nil, wrap(err)
	}
	return summary, nil
}

// SummarizeComments digests the live comments of a mate post.
func (s *SummaryService) SummarizeComments(ctx context.Context, postID uint) (*models.Summary, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, wrap(err)
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, wrap(err)
	}
	if len(comments) == 0 {
		return nil, models.NewValidationError("No comments to summarize")
	}

	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		lines = append(lines, c.Content)
	}
	text, err := s.llm.Generate(ctx, commentSummaryPrompt+strings.Join(lines, "\n"))
	if err != nil {
		return nil, upstream("gemini", err)
	}

	summary := &models.Summary{
		MateID:    &postID,
		Source:    models.SummarySourceComments,
		SourceRef: "mate:" + strconv.FormatUint(uint64(postID), 10),
		Content:   text,
	}
	if err := s.summaries.Create(ctx, summary); err != nil {
		return nil, wrap(err)
	}
	return summary, nil
}

// LatestCommentSummary returns nil when the post has no stored summary.
func (s *SummaryService) LatestCommentSummary(ctx context.Context, postID uint) (*models.Summary, error) {
	sum, err := s.summaries.LatestForMate(ctx, postID)
	if err != nil {
		return nil, wrap(err)
	}
	return sum, nil
}
