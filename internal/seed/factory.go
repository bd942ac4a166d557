package seed

import (
	"fmt"
	"strings"
	"time"

	"kbomate/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the sign-in password of every generated user.
const DefaultPassword = "kbomate2026"

var (
	matchups = []string{"주말 3연전", "개막전", "더블헤더", "어린이날 시리즈", "가을야구", "원정 경기"}

	titleTemplates = []string{
		"%s %s 직관 같이 가실 분",
		"%s %s 응원석 메이트 구해요",
		"%s %s 치맥 하면서 보실 분",
		"%s %s 유니폼 입고 같이 가요",
	}

	contentLines = []string{
		"응원가 같이 부르실 분 환영합니다.",
		"경기 끝나고 간단히 식사해요.",
		"초보 팬도 괜찮아요, 규칙 알려드릴게요.",
		"1루 쪽 자리로 예매할 예정입니다.",
		"우천 취소되면 다음 경기로 옮겨요.",
		"응원 도구는 제가 챙겨갈게요.",
	}

	commentLines = []string{"저요!", "아직 자리 있나요?", "친구랑 2명 가능할까요?", "시간 조금 늦어도 될까요?", "좋아요, 연락 주세요."}

	reportReasons = []string{"광고성 게시글", "욕설 및 비방", "티켓 암표 거래", "도배"}

	announcementTitles = []string{"서비스 점검 안내", "신고 처리 기준 변경", "포스트시즌 이벤트", "커뮤니티 이용 수칙"}
)

// Factory builds domain rows with gofakeit and persists them.
type Factory struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	password string
	seq      int
}

// NewFactory binds a factory to db. A zero seed picks a time-based one.
func NewFactory(db *gorm.DB, seed int64) (*Factory, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{db: db, faker: gofakeit.New(seed), password: string(hashed)}, nil
}

func (f *Factory) pick(items []string) string {
	return items[f.faker.Number(0, len(items)-1)]
}

// User creates an email account with the given role.
func (f *Factory) User(role models.Role) (*models.User, error) {
	f.seq++
	local := strings.ToLower(f.faker.Username())
	user := &models.User{
		Email:    fmt.Sprintf("%s%d@example.com", local, f.seq),
		Password: f.password,
		Nickname: truncate(f.faker.Username(), 40),
		Role:     role,
		Provider: models.ProviderEmail,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// MatePost creates an open post for a game within the next three weeks.
func (f *Factory) MatePost(author *models.User, team *models.Team) (*models.MatePost, error) {
	gameDate := time.Now().Add(time.Duration(f.faker.Number(1, 21)) * 24 * time.Hour).Truncate(time.Hour)
	post := &models.MatePost{
		UserID:              author.ID,
		TeamID:              team.ID,
		GameDate:            gameDate,
		Title:               fmt.Sprintf(f.pick(titleTemplates), team.Name, f.pick(matchups)),
		Content:             f.pick(contentLines) + " " + f.pick(contentLines),
		MaxParticipants:     f.faker.Number(2, 8),
		CurrentParticipants: 1,
		Location:            team.StadiumCity,
	}
	if f.faker.Number(0, 9) < 3 {
		url := f.faker.ImageURL(800, 600)
		post.ImageURL = &url
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Comment adds a reply from author under post.
func (f *Factory) Comment(post *models.MatePost, author *models.User) (*models.MateComment, error) {
	comment := &models.MateComment{
		PostID:  post.ID,
		UserID:  author.ID,
		Content: f.pick(commentLines),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Announcement creates a site-wide notice active for the next month.
func (f *Factory) Announcement(priority int) (*models.Announcement, error) {
	start := time.Now().Add(-time.Hour)
	end := start.Add(30 * 24 * time.Hour)
	a := &models.Announcement{
		Title:     f.pick(announcementTitles),
		Content:   f.faker.Sentence(12),
		Type:      models.AnnouncementAll,
		StartDate: &start,
		EndDate:   &end,
		Priority:  priority,
	}
	if err := f.db.Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// Report files a pending report from reporter against post.
func (f *Factory) Report(reporter *models.User, post *models.MatePost) (*models.Report, error) {
	author := post.UserID
	r := &models.Report{
		TargetType:     models.ReportTargetPost,
		TargetID:       post.ID,
		Reason:         f.pick(reportReasons),
		Status:         models.ReportStatusPending,
		ReporterID:     reporter.ID,
		UserID:         &author,
		ContentPreview: truncate(post.Title, 100),
	}
	if err := f.db.Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
