package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dd0wney/cluso-netcanvas/pkg/auth"
	"github.com/dd0wney/cluso-netcanvas/pkg/config"
)

func runToken(_ context.Context, args []string) error {
	fs := newFlagSet("token")
	configPath := fs.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")
	subject := fs.String("subject", "", "token subject")
	role := fs.String("role", auth.RoleViewer, "role: admin, editor or viewer")
	ttl := fs.Duration("ttl", 0, "token lifetime (default: auth.token_ttl)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("no signing secret: set auth.jwt_secret (%sJWT_SECRET)", config.EnvPrefix)
	}
	manager, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	var token string
	if *ttl > 0 {
		token, err = manager.GenerateTokenTTL(*subject, *role, *ttl)
	} else {
		token, err = manager.GenerateToken(*subject, *role)
	}
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
