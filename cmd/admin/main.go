// Command admin manages owner accounts: approval, suspension and the
// residence publication quota.
//
//	admin approve <user-id>
//	admin suspend <user-id>
//	admin set-status <user-id> <pending|active|suspended>
//	admin set-quota <user-id> <n>
//	admin list-owners [-status pending]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"resirent/internal/config"
	"resirent/internal/database"
	"resirent/internal/domain"
	"resirent/internal/modules/admin"
	"resirent/internal/pkg/logger"
	"resirent/internal/repository"
)

var errUsage = errors.New("usage")

const usage = `usage:
  admin approve <user-id>
  admin suspend <user-id>
  admin set-status <user-id> <pending|active|suspended>
  admin set-quota <user-id> <n>
  admin list-owners [-status pending|active|suspended]
`

type ownerAdmin interface {
	ApproveOwner(ctx context.Context, userID int64) (*domain.OwnerProfile, error)
	SuspendOwner(ctx context.Context, userID int64) (*domain.OwnerProfile, error)
	SetStatus(ctx context.Context, userID int64, status string) (*domain.OwnerProfile, error)
	SetQuota(ctx context.Context, userID int64, quota int) (*domain.OwnerProfile, error)
	ListOwners(ctx context.Context, status string) ([]domain.OwnerSummary, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	log.SetOutput(os.Stderr)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	svc := admin.NewService(repository.NewUserRepository(db), log)
	if err := run(context.Background(), svc, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc ownerAdmin, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "approve", "suspend":
		if len(rest) != 1 {
			return errUsage
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		var p *domain.OwnerProfile
		if cmd == "approve" {
			p, err = svc.ApproveOwner(ctx, id)
		} else {
			p, err = svc.SuspendOwner(ctx, id)
		}
		if err != nil {
			return err
		}
		printProfile(out, p)
		return nil

	case "set-status":
		if len(rest) != 2 {
			return errUsage
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		p, err := svc.SetStatus(ctx, id, rest[1])
		if err != nil {
			return err
		}
		printProfile(out, p)
		return nil

	case "set-quota":
		if len(rest) != 2 {
			return errUsage
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("quota %q is not a number", rest[1])
		}
		p, err := svc.SetQuota(ctx, id, n)
		if err != nil {
			return err
		}
		printProfile(out, p)
		return nil

	case "list-owners":
		fs := flag.NewFlagSet("list-owners", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		status := fs.String("status", "", "only owners with this account status")
		if err := fs.Parse(rest); err != nil || fs.NArg() > 0 {
			return errUsage
		}
		owners, err := svc.ListOwners(ctx, *status)
		if err != nil {
			return err
		}
		printOwners(out, owners)
		return nil
	}
	return errUsage
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("user id %q is not a positive integer", raw)
	}
	return id, nil
}

func printProfile(out io.Writer, p *domain.OwnerProfile) {
	fmt.Fprintf(out, "owner %d: status=%s residences_to_publish=%d\n",
		p.UserID, p.AccountStatus, p.ResidencesToPublish)
}

func printOwners(out io.Writer, owners []domain.OwnerSummary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tSTATUS\tQUOTA\tRESIDENCES\tJOINED")
	for _, o := range owners {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t%s\t%d\t%d\t%s\n",
			o.User.ID, o.User.Email, o.User.FirstName, o.User.LastName,
			o.Profile.AccountStatus, o.Profile.ResidencesToPublish, o.ResidenceCount,
			o.User.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}
