// Package seed fills the database with the KBO team catalog and, for
// development, generated community data.
package seed

import (
	"context"
	"fmt"

	"kbomate/internal/middleware"
	"kbomate/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// RandSeed fixes generated content. Zero picks a time-based seed.
	RandSeed int64
}

// Result counts what a Seed run created.
type Result struct {
	Users    int
	Posts    int
	Comments int
	Reports  int
}

// Seed populates the database with teams and generated users, posts,
// comments, announcements and reports.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (Result, error) {
	var res Result
	middleware.Logger.Info("seeding database", "users", opts.NumUsers, "posts", opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return res, fmt.Errorf("clear data: %w", err)
		}
	}

	if err := Teams(ctx, db); err != nil {
		return res, err
	}
	var teams []models.Team
	if err := db.WithContext(ctx).Order("id ASC").Find(&teams).Error; err != nil {
		return res, fmt.Errorf("load teams: %w", err)
	}

	if opts.NumUsers <= 0 {
		return res, nil
	}

	f, err := NewFactory(db.WithContext(ctx), opts.RandSeed)
	if err != nil {
		return res, err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.User(models.RoleUser)
		if err != nil {
			return res, fmt.Errorf("create user: %w", err)
		}
		team := teams[i%len(teams)]
		if err := db.WithContext(ctx).Model(u).Update("favorite_team_id", team.ID).Error; err != nil {
			return res, fmt.Errorf("set favorite team: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)

	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		post, err := f.MatePost(author, &teams[f.faker.Number(0, len(teams)-1)])
		if err != nil {
			return res, fmt.Errorf("create mate post: %w", err)
		}
		res.Posts++

		for c := f.faker.Number(0, 3); c > 0; c-- {
			if _, err := f.Comment(post, users[f.faker.Number(0, len(users)-1)]); err != nil {
				return res, fmt.Errorf("create comment: %w", err)
			}
			res.Comments++
		}

		// Every fifth post gets a report from someone other than its author.
		if i%5 == 0 && len(users) > 1 {
			reporter := users[(indexOf(users, author)+1)%len(users)]
			if _, err := f.Report(reporter, post); err != nil {
				return res, fmt.Errorf("create report: %w", err)
			}
			res.Reports++
		}
	}

	for p := 1; p <= 2; p++ {
		if _, err := f.Announcement(p); err != nil {
			return res, fmt.Errorf("create announcement: %w", err)
		}
	}

	middleware.Logger.Info("seeding complete",
		"users", res.Users, "posts", res.Posts, "comments", res.Comments, "reports", res.Reports)
	return res, nil
}

func indexOf(users []*models.User, target *models.User) int {
	for i, u := range users {
		if u.ID == target.ID {
			return i
		}
	}
	return 0
}

// clearData removes community rows but keeps teams.
func clearData(db *gorm.DB) error {
	middleware.Logger.Info("clearing existing data")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE summaries, mate_comments, mate_posts, reports, user_bans, admin_page_roles, announcements, banners, users RESTART IDENTITY CASCADE`).Error
	}
	for _, m := range []any{
		&models.Summary{}, &models.MateComment{}, &models.MatePost{}, &models.Report{},
		&models.UserBan{}, &models.AdminPageRole{}, &models.Announcement{}, &models.Banner{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
