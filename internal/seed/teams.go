package seed

import (
	"context"
	"fmt"

	"kbomate/internal/models"
	"kbomate/internal/repository"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// BuiltInTeam is one of the ten KBO clubs. Latin names the slug source.
type BuiltInTeam struct {
	Name        string
	Latin       string
	StadiumCity string
}

// Slug is the URL key of the team.
func (t BuiltInTeam) Slug() string {
	return slug.Make(t.Latin)
}

// BuiltInTeams lists the league in stadium order.
var BuiltInTeams = []BuiltInTeam{
	{Name: "LG 트윈스", Latin: "LG Twins", StadiumCity: "Seoul"},
	{Name: "두산 베어스", Latin: "Doosan Bears", StadiumCity: "Seoul"},
	{Name: "키움 히어로즈", Latin: "Kiwoom Heroes", StadiumCity: "Seoul"},
	{Name: "SSG 랜더스", Latin: "SSG Landers", StadiumCity: "Incheon"},
	{Name: "KT 위즈", Latin: "KT Wiz", StadiumCity: "Suwon"},
	{Name: "한화 이글스", Latin: "Hanwha Eagles", StadiumCity: "Daejeon"},
	{Name: "삼성 라이온즈", Latin: "Samsung Lions", StadiumCity: "Daegu"},
	{Name: "NC 다이노스", Latin: "NC Dinos", StadiumCity: "Changwon"},
	{Name: "롯데 자이언츠", Latin: "Lotte Giants", StadiumCity: "Busan"},
	{Name: "KIA 타이거즈", Latin: "KIA Tigers", StadiumCity: "Gwangju"},
}

// Teams upserts the built-in clubs by slug. Running it twice changes nothing.
func Teams(ctx context.Context, db *gorm.DB) error {
	repo := repository.NewTeamRepository(db)
	for _, item := range BuiltInTeams {
		team := models.Team{
			Name:        item.Name,
			Slug:        item.Slug(),
			StadiumCity: item.StadiumCity,
		}
		if err := repo.UpsertBySlug(ctx, &team); err != nil {
			return fmt.Errorf("seed team %s: %w", team.Slug, err)
		}
	}
	return nil
}
