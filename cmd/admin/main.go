// Command admin runs management operations against the database without the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/config"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/database"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/service"

	"gorm.io/gorm"
)

const usage = `Usage:
  admin promote <user_id>      - Promote user to admin
  admin demote <user_id>       - Demote admin to user
  admin list-admins            - List all admins
  admin metrics                - Show user counts
  admin soft-delete <user_id>  - Anonymize a user and remove their ads
  admin hard-delete <user_id>  - Remove a user with all their content`

var errUsage = errors.New("invalid usage")

// operator acts on behalf of whoever runs the CLI. It is not a database user.
var operator = access.ForUser("operator", models.RoleAdmin)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	middleware.ConfigureLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	images, err := service.NewImageStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open image storage: %v", err)
	}

	mgmt := newManagement(db, images, cfg.ImageBaseURL)
	if err := run(context.Background(), mgmt, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usage)
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newManagement(db *gorm.DB, images *service.ImageStore, baseURL string) *service.ManagementService {
	repos := repository.New(db)
	tx := repository.NewTransactor(db)
	ads := service.NewAdService(repos, tx, images, baseURL)
	return service.NewManagementService(repos, tx, ads, images)
}

func run(ctx context.Context, mgmt *service.ManagementService, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list-admins":
		admins, err := mgmt.ListAdmins(ctx, operator)
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			fmt.Fprintln(out, "No admins found in the system")
			return nil
		}
		fmt.Fprintln(out, "Current Admins:")
		for _, admin := range admins {
			fmt.Fprintf(out, "ID: %d | Username: %s | Name: %s %s\n", admin.ID, admin.Username, admin.FirstName, admin.LastName)
		}
		return nil

	case "metrics":
		m, err := mgmt.Metrics(ctx, operator)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Total users: %d\nActive users: %d\nDeleted users: %d\n", m.TotalUsers, m.ActiveUsers, m.DeletedUsers)
		return nil
	}

	if len(args) < 2 {
		return errUsage
	}
	id, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid user id %q", args[1])
	}
	userID := uint(id)

	switch args[0] {
	case "promote":
		err = mgmt.SetRole(ctx, operator, userID, models.RoleAdmin)
	case "demote":
		err = mgmt.SetRole(ctx, operator, userID, models.RoleUser)
	case "soft-delete":
		err = mgmt.SoftDeleteUser(ctx, operator, userID)
	case "hard-delete":
		err = mgmt.HardDeleteUser(ctx, operator, userID)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: done for user %d\n", args[0], userID)
	return nil
}
