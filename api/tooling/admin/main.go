// This program performs administrative tasks for the dealerdesk service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/mail"
	"os"
	"time"

	"github.com/jcpaschoal/dealerdesk/app/sdk/auth"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus/stores/tenantdb"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus/stores/userdb"
	"github.com/jcpaschoal/dealerdesk/business/sdk/migrate"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/password"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config replicates the parts of the service configuration the tool needs.
type Config struct {
	Auth struct {
		TokenSecret string        `envconfig:"AUTH_TOKEN_SECRET" default:"dev-only-secret"`
		TokenTTL    time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"168h"`
	}
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"dealerdesk"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN", func(context.Context) string { return "" })
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "admin", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: migrate, create-admin, set-quota, gen-token")
		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	userBus := userbus.NewCore(log, userdb.NewStore(log, db))
	tenantBus := tenantbus.NewCore(log, tenantdb.NewStore(log, db))

	switch os.Args[1] {
	case "migrate":
		if err := migrate.Migrate(ctx, log, db.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Println("migrations complete")
		return nil

	case "create-admin":
		return runCreateAdmin(ctx, userBus, os.Args[2:])

	case "set-quota":
		return runSetQuota(ctx, tenantBus, os.Args[2:])

	case "gen-token":
		codec := auth.NewTokenCodec(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
		return runGenToken(ctx, userBus, codec, os.Args[2:])
	}

	return fmt.Errorf("unknown command: %s", os.Args[1])
}

func runCreateAdmin(ctx context.Context, ub *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-admin", flag.ExitOnError)
	emailStr := cmd.String("email", "", "Admin email (Required)")
	passStr := cmd.String("password", "", "Admin password (Required)")
	nameStr := cmd.String("name", "Administrator", "Admin full name")
	cmd.Parse(args)

	if *emailStr == "" || *passStr == "" {
		cmd.PrintDefaults()
		return errors.New("missing required fields")
	}

	n, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	p, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	usr, err := ub.Create(ctx, userbus.NewUser{
		Name:     n,
		Email:    *addr,
		Password: p,
		Role:     role.Admin,
		Status:   userstatus.Active,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("admin created: id[%d] email[%s]\n", usr.ID, usr.Email.Address)
	return nil
}

func runSetQuota(ctx context.Context, tb *tenantbus.Core, args []string) error {
	cmd := flag.NewFlagSet("set-quota", flag.ExitOnError)
	tenantID := cmd.Int64("tenant-id", 0, "Tenant id (Required)")
	quota := cmd.Int("quota", 0, "Branch quota, at least 1 (Required)")
	cmd.Parse(args)

	if *tenantID <= 0 {
		cmd.PrintDefaults()
		return errors.New("missing tenant id")
	}

	t, err := tb.QueryByID(ctx, *tenantID)
	if err != nil {
		return fmt.Errorf("query tenant: %w", err)
	}

	t, err = tb.Update(ctx, t, tenantbus.UpdateTenant{BranchQuota: quota})
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}

	fmt.Printf("tenant[%d] branch quota is now %d\n", t.ID, t.BranchQuota)
	return nil
}

func runGenToken(ctx context.Context, ub *userbus.Core, codec *auth.TokenCodec, args []string) error {
	cmd := flag.NewFlagSet("gen-token", flag.ExitOnError)
	emailStr := cmd.String("email", "", "User email (Required)")
	cmd.Parse(args)

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		cmd.PrintDefaults()
		return fmt.Errorf("invalid email: %w", err)
	}

	usr, err := ub.QueryByEmail(ctx, *addr)
	if err != nil {
		return fmt.Errorf("query user: %w", err)
	}

	token, err := codec.Sign(auth.Claims{
		UserID: usr.ID,
		Email:  usr.Email.Address,
		Role:   usr.Role.String(),
	})
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	fmt.Println(token)
	return nil
}
