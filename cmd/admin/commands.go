package main

import (
	"context"
	"fmt"

	"kbomate/internal/models"
	"kbomate/internal/repository"
	"kbomate/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// cliActorID marks audit entries written from the shell.
const cliActorID uint = 0

type services struct {
	users   repository.UserRepository
	roles   *service.RoleService
	members *service.AdminUserService
}

func newServices(db *gorm.DB) *services {
	users := repository.NewUserRepository(db)
	return &services{
		users: users,
		roles: service.NewRoleService(users, repository.NewPageRoleRepository(db)),
		members: service.NewAdminUserService(
			users,
			repository.NewMatePostRepository(db),
			repository.NewReportRepository(db),
			repository.NewBanRepository(db),
		),
	}
}

func newRootCmd(connect func() (*gorm.DB, error)) *cobra.Command {
	var svc *services

	root := &cobra.Command{
		Use:           "admin",
		Short:         "KBO Mate administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			svc = newServices(db)
			return nil
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "set-role <email> <admin|moderator|user>",
			Short: "Change the role of an account",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				user, err := lookup(ctx, svc.users, args[0])
				if err != nil {
					return err
				}
				_, changed, err := svc.roles.SaveRoles(ctx, cliActorID, []service.RoleChange{
					{UserID: user.ID, Role: models.Role(args[1])},
				})
				if err != nil {
					return err
				}
				if changed == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already has role %s\n", user.Email, args[1])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "list-staff",
			Short: "List admins and moderators",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				users, err := svc.roles.ListStaff(cmd.Context())
				if err != nil {
					return err
				}
				n := 0
				for _, u := range users {
					if !u.Role.IsStaff() {
						continue
					}
					n++
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", u.ID, u.Role, u.Email, u.Nickname)
				}
				if n == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no staff accounts")
				}
				return nil
			},
		},
		newBanCmd(func() *services { return svc }),
	)
	return root
}

func newBanCmd(svc func() *services) *cobra.Command {
	var days int
	var reason string

	cmd := &cobra.Command{
		Use:   "ban <email>",
		Short: "Suspend an account for a number of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := lookup(ctx, svc().users, args[0])
			if err != nil {
				return err
			}
			ban, err := svc().members.Ban(ctx, service.BanInput{
				ActorID: cliActorID,
				UserID:  user.ID,
				Days:    days,
				Reason:  reason,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "banned %s until %s (ban %d)\n", user.Email, ban.EndAt.Format("2006-01-02 15:04"), ban.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Ban length in days")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason shown to the user")
	return cmd
}

func lookup(ctx context.Context, users repository.UserRepository, email string) (*models.User, error) {
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", email)
	}
	return user, nil
}
