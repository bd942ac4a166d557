package service

import (
	"context"
	"strings"
	"testing"

	"kbomate/internal/external"
	"kbomate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideo = "https://www.youtube.com/watch?v=abc123"

func TestSummaryService_TranscriptJoinsWithSpace(t *testing.T) {
	fetch := &transcriptStub{segments: []external.TranscriptSegment{{Text: "오늘"}, {Text: "경기"}, {Text: "하이라이트"}}}
	svc := NewSummaryService(fetch, &llmStub{}, &summaryRepoStub{}, &matePostRepoStub{}, &mateCommentRepoStub{})

	text, err := svc.Transcript(context.Background(), testVideo)
	require.NoError(t, err)
	assert.Equal(t, "오늘 경기 하이라이트", text)
}

func TestSummaryService_TranscriptFailures(t *testing.T) {
	svc := NewSummaryService(&transcriptStub{err: errBoom}, &llmStub{}, &summaryRepoStub{}, &matePostRepoStub{}, &mateCommentRepoStub{})

	_, err := svc.Transcript(context.Background(), "")
	assertValidationError(t, err)
	_, err = svc.Transcript(context.Background(), "https://example.com/video")
	assertValidationError(t, err)
	_, err = svc.Transcript(context.Background(), testVideo)
	assertCode(t, err, models.CodeUpstream)
}

func TestSummaryService_SummarizeVideo(t *testing.T) {
	fetch := &transcriptStub{segments: []external.TranscriptSegment{{Text: "9회말"}, {Text: "끝내기"}}}
	llm := &llmStub{reply: "끝내기 안타로 승리"}
	repo := &summaryRepoStub{}
	svc := NewSummaryService(fetch, llm, repo, &matePostRepoStub{}, &mateCommentRepoStub{})

	sum, err := svc.SummarizeVideo(context.Background(), testVideo)
	require.NoError(t, err)
	assert.Equal(t, "끝내기 안타로 승리", sum.Content)
	assert.Equal(t, models.SummarySourceYouTube, sum.Source)
	assert.Equal(t, testVideo, sum.SourceRef)
	require.Len(t, llm.prompts, 1)
	assert.Equal(t, youtubeSummaryPrompt+"9회말 끝내기", llm.prompts[0])
	assert.Len(t, repo.saved, 1)
}

func TestSummaryService_SummarizeVideoLLMFailure(t *testing.T) {
	fetch := &transcriptStub{segments: []external.TranscriptSegment{{Text: "x"}}}
	repo := &summaryRepoStub{}
	svc := NewSummaryService(fetch, &llmStub{err: errBoom}, repo, &matePostRepoStub{}, &mateCommentRepoStub{})

	_, err := svc.SummarizeVideo(context.Background(), testVideo)
	assertCode(t, err, models.CodeUpstream)
	assert.Empty(t, repo.saved)
}

func TestSummaryService_SummarizeComments(t *testing.T) {
	posts := &matePostRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.MatePost, error) { return &models.MatePost{ID: id}, nil },
	}
	comments := &mateCommentRepoStub{
		listByPostFn: func(context.Context, uint) ([]models.MateComment, error) {
			return []models.MateComment{{Content: "저 갈게요"}, {Content: "몇 시에 만나요?"}}, nil
		},
	}
	llm := &llmStub{reply: "두 명이 참가 의사를 밝힘"}
	repo := &summaryRepoStub{}
	svc := NewSummaryService(&transcriptStub{}, llm, repo, posts, comments)

	sum, err := svc.SummarizeComments(context.Background(), 12)
	require.NoError(t, err)
	require.NotNil(t, sum.MateID)
	assert.Equal(t, uint(12), *sum.MateID)
	assert.Equal(t, models.SummarySourceComments, sum.Source)
	assert.True(t, strings.HasSuffix(llm.prompts[0], "저 갈게요\n몇 시에 만나요?"))

	latest, err := svc.LatestCommentSummary(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, sum, latest)
}

func TestSummaryService_SummarizeCommentsNeedsComments(t *testing.T) {
	posts := &matePostRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.MatePost, error) { return &models.MatePost{ID: id}, nil },
	}
	llm := &llmStub{}
	svc := NewSummaryService(&transcriptStub{}, llm, &summaryRepoStub{}, posts, &mateCommentRepoStub{})

	_, err := svc.SummarizeComments(context.Background(), 1)
	assertValidationError(t, err)
	assert.Empty(t, llm.prompts)
}
