// seed crea los almacenes y cajas de un centro a partir de un archivo JSON e imprime
// tokens de desarrollo para cada rol.
//
// Uso: go run ./cmd/seed [ruta/centro.json]
// Por defecto busca centro.json en el directorio actual. Formato:
//
//	{"center_id": "...", "warehouses": [{"code": "PRINC", "name": "Magasin"}],
//	 "registers": [{"name": "Caisse 1", "kind": "PRINCIPALE"}]}
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/infrastructure/postgres"
	"github.com/jhoicas/optica-core/pkg/config"
	"github.com/jhoicas/optica-core/pkg/jwt"
	"github.com/jhoicas/optica-core/pkg/logger"
)

type centerFile struct {
	CenterID   string `json:"center_id"`
	Warehouses []struct {
		Code    string `json:"code"`
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"warehouses"`
	Registers []struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	} `json:"registers"`
}

func main() {
	path := "centro.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer %s: %v\n", path, err)
		os.Exit(1)
	}
	var in centerFile
	if err := json.Unmarshal(raw, &in); err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar JSON: %v\n", err)
		os.Exit(1)
	}
	if in.CenterID == "" {
		fmt.Fprintln(os.Stderr, "center_id es requerido")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	warehouses := postgres.NewWarehouseRepository(pool)
	registers := postgres.NewCashRegisterRepository(pool)

	existing, err := warehouses.ListByCenter(ctx, in.CenterID)
	if err != nil {
		log.Fatal().Err(err).Msg("listar almacenes")
	}
	codes := make(map[string]struct{}, len(existing))
	for _, w := range existing {
		codes[w.Code] = struct{}{}
	}

	now := time.Now()
	created := 0
	for _, w := range in.Warehouses {
		if _, ok := codes[w.Code]; ok {
			continue
		}
		wh := &entity.Warehouse{
			ID: uuid.New().String(), CenterID: in.CenterID, Code: w.Code, Name: w.Name,
			Address: w.Address, Active: true, CreatedAt: now, UpdatedAt: now,
		}
		if err := warehouses.Create(ctx, wh); err != nil {
			log.Fatal().Err(err).Str("code", w.Code).Msg("crear almacén")
		}
		log.Info().Str("id", wh.ID).Str("code", wh.Code).Msg("almacén creado")
		created++
	}

	// Las cajas solo se crean en la primera carga del centro.
	if len(existing) == 0 {
		for _, r := range in.Registers {
			reg := &entity.CashRegister{
				ID: uuid.New().String(), CenterID: in.CenterID, Name: r.Name, Kind: r.Kind, Active: true, CreatedAt: now,
			}
			if err := registers.Create(ctx, reg); err != nil {
				log.Fatal().Err(err).Str("name", r.Name).Msg("crear caja")
			}
			log.Info().Str("id", reg.ID).Str("kind", reg.Kind).Msg("caja creada")
		}
	}
	fmt.Printf("%d almacenes nuevos para el centro %s\n", created, in.CenterID)

	if cfg.JWT.Secret == "" || cfg.App.Env == "production" {
		return
	}
	signer, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("firmante JWT")
	}
	for _, role := range []string{"admin", "magasinier", "caissier"} {
		tok, err := signer.Generate(jwt.Identity{UserID: "seed-" + role, CenterID: in.CenterID, Role: role})
		if err != nil {
			log.Fatal().Err(err).Msg("generar token")
		}
		fmt.Printf("%-10s %s\n", role, tok)
	}
}
