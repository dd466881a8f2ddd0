package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/labstock/internal/catalog"
	"github.com/erazemk/labstock/internal/db"
	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/store"
)

const (
	defaultAdmin   = "admin"
	defaultCatalog = "configs/catalog.yaml"
)

func initCmd() *cobra.Command {
	var adminUser, catalogPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database, admin account and item catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := app.cfg.Database.Path
			if _, err := os.Stat(dbPath); err == nil {
				return fmt.Errorf("database %s already exists", dbPath)
			}

			res, err := initDatabase(cmd.Context(), dbPath, adminUser, catalogPath)
			if err != nil {
				return err
			}
			defer res.database.Close()

			printInitResult(cmd.OutOrStdout(), dbPath, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&adminUser, "user", "u", defaultAdmin, "admin username")
	cmd.Flags().StringVar(&catalogPath, "catalog", defaultCatalog, "seed catalog YAML (empty to skip)")
	return cmd
}

type initResult struct {
	database *sql.DB
	username string
	password string
	items    int
}

// initDatabase creates a new database with the schema, an admin account and
// the seed catalog. On failure the half-created file is removed.
func initDatabase(ctx context.Context, path, adminUsername, catalogPath string) (res *initResult, err error) {
	var items []model.Item
	if catalogPath != "" {
		items, err = catalog.Load(catalogPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) || catalogPath != defaultCatalog {
				return nil, err
			}
			app.logger.Warn("seed catalog not found, starting with no items", zap.String("path", catalogPath))
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err != nil {
			database.Close()
			os.Remove(path)
		}
	}()

	if err := db.EnsureSchema(database); err != nil {
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		return nil, fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	group := ""
	if groups := app.rotation.Groups(); len(groups) > 0 {
		group = groups[0]
	}

	_, err = store.CreateUser(ctx, database, store.NewUser{
		Username:     adminUsername,
		PasswordHash: string(hash),
		DisplayName:  adminUsername,
		GroupName:    group,
		Role:         model.RoleAdmin,
		Approved:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating admin user: %w", err)
	}

	n, err := store.ImportItems(ctx, database, items)
	if err != nil {
		return nil, fmt.Errorf("seeding catalog: %w", err)
	}

	return &initResult{database: database, username: adminUsername, password: password, items: n}, nil
}

func printInitResult(w io.Writer, dbPath string, res *initResult) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintf(w, "Catalog items imported: %d\n", res.items)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Username: %s\n", res.username)
	fmt.Fprintf(w, "  Password: %s\n", res.password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
