// Command devtoken prints access tokens for every member of a family so the
// API can be exercised locally without an identity provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/famfin/famfin-api/internal/config"
	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/database"
	"github.com/famfin/famfin-api/internal/pkg/jwt"
	"github.com/famfin/famfin-api/internal/pkg/logger"
)

func main() {
	familyFlag := flag.String("family", "", "family id to mint tokens for")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: "development"})

	if cfg.IsProduction() {
		log.Fatal().Msg("devtoken refuses to run with ENV=production")
	}

	familyID, err := uuid.Parse(*familyFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("-family must be a uuid")
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.ClosePostgres(db)

	members, err := user.NewRepository(db).ListByFamily(context.Background(), familyID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list family members")
	}
	if len(members) == 0 {
		log.Warn().Str("family_id", familyID.String()).Msg("family has no members")
		os.Exit(1)
	}

	jwtSvc := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	for _, m := range members {
		token, err := jwtSvc.GenerateAccessToken(m.ID, m.FamilyID, string(m.Role))
		if err != nil {
			log.Fatal().Err(err).Str("user_id", m.ID.String()).Msg("Failed to sign token")
		}
		fmt.Printf("%-6s %-20s %s\n%s\n\n", m.Role, m.Name, m.ID, token)
	}
}
