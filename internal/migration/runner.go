package migration

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/database"
)

//go:embed sql
var builtin embed.FS

type Runner struct {
	dbManager *database.Manager
	logger    *logrus.Logger
}

func NewRunner(dbManager *database.Manager, logger *logrus.Logger) *Runner {
	return &Runner{
		dbManager: dbManager,
		logger:    logger,
	}
}

// RunMigrations executes GORM auto-migrations, the built-in search schema for
// the active driver, then any .sql files under migrationsPath. A missing
// migrationsPath is not an error.
func (r *Runner) RunMigrations(migrationsPath string) error {
	r.logger.Info("Starting database migrations...")

	if err := r.dbManager.Migrate(); err != nil {
		return fmt.Errorf("GORM auto-migration failed: %w", err)
	}

	if err := r.runBuiltin(); err != nil {
		return fmt.Errorf("search schema migration failed: %w", err)
	}

	if migrationsPath != "" {
		if err := r.runSQLMigrations(migrationsPath); err != nil {
			return fmt.Errorf("SQL migrations failed: %w", err)
		}
	}

	r.logger.Info("Database migrations completed successfully")
	return nil
}

func (r *Runner) runBuiltin() error {
	dir := path.Join("sql", r.dbManager.Driver())
	entries, err := fs.ReadDir(builtin, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, name := range sqlFileNames(entries) {
		content, err := fs.ReadFile(builtin, path.Join(dir, name))
		if err != nil {
			return err
		}
		if err := r.runSQL(name, string(content)); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", name, err)
		}
		r.logger.WithField("file", name).Debug("Built-in migration executed")
	}
	return nil
}

func (r *Runner) runSQLMigrations(migrationsPath string) error {
	entries, err := os.ReadDir(migrationsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.WithField("path", migrationsPath).Debug("No migrations directory, skipping")
			return nil
		}
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, fileName := range sqlFileNames(entries) {
		content, err := os.ReadFile(filepath.Join(migrationsPath, fileName))
		if err != nil {
			return err
		}
		if err := r.runSQL(fileName, string(content)); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", fileName, err)
		}
		r.logger.WithField("file", fileName).Info("Migration executed successfully")
	}

	return nil
}

func sqlFileNames(entries []fs.DirEntry) []string {
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (r *Runner) runSQL(fileName, sqlContent string) error {
	// Dollar-quoted bodies cannot be split on semicolons.
	if strings.Contains(sqlContent, "$") {
		if err := r.dbManager.DB.Exec(removeComments(sqlContent)).Error; err != nil {
			return fmt.Errorf("failed to execute %s: %w", fileName, err)
		}
		return nil
	}

	for i, stmt := range splitSQLStatements(sqlContent) {
		r.logger.WithFields(logrus.Fields{
			"file":      fileName,
			"statement": i + 1,
		}).Debug("Executing SQL statement")

		if err := r.dbManager.DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to execute statement %d in %s: %w", i+1, fileName, err)
		}
	}
	return nil
}

// removeComments removes SQL comment lines while preserving structure
func removeComments(sql string) string {
	lines := strings.Split(sql, "\n")
	var result []string

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

// splitSQLStatements splits SQL content into individual statements. Trigger
// bodies (BEGIN ... END) are kept whole.
func splitSQLStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			cleanedLines = append(cleanedLines, line)
		}
	}

	cleanedSQL := strings.Join(cleanedLines, " ")

	var result []string
	var buf strings.Builder
	for _, piece := range strings.Split(cleanedSQL, ";") {
		if buf.Len() > 0 {
			buf.WriteString(";")
		}
		buf.WriteString(piece)

		stmt := strings.TrimSpace(buf.String())
		if stmt == "" {
			buf.Reset()
			continue
		}
		if openTrigger(stmt) {
			continue
		}
		result = append(result, stmt)
		buf.Reset()
	}

	return result
}

func openTrigger(stmt string) bool {
	upper := strings.ToUpper(stmt)
	return strings.Contains(upper, "CREATE TRIGGER") && !strings.HasSuffix(upper, "END")
}
