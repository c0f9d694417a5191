package nba

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/richard-senior/nbapredict/internal/logger"
	_ "modernc.org/sqlite"
)

// Persistable is implemented by every record type the Store can hold.
// Columns are described by struct tags: column, dbtype and index
type Persistable interface {
	GetTableName() string
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Store is the single persistence handle. Open it once, share it, close it
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens (creating if necessary) the sqlite database at path.
// ":memory:" gives a private in memory database
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection, every caller is sequential and :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database opened", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying connection for tests and tooling
func (s *Store) DB() *sql.DB {
	return s.db
}

// CreateTables creates the games, players and player_stats tables if they are missing
func (s *Store) CreateTables() error {
	for _, obj := range []Persistable{&Game{}, &RosterEntry{}, &PlayerStat{}} {
		if err := s.CreateTable(obj); err != nil {
			return err
		}
	}
	return nil
}

// CreateTable creates a table for the given persistable object using struct tags
func (s *Store) CreateTable(obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)
	logger.Debug("Creating table with SQL", createSQL)

	if _, err := s.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := s.db.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// Insert adds obj as a new row
func (s *Store) Insert(obj Persistable) error {
	return insert(s.db, obj)
}

// InsertAll inserts every object in one transaction, either all rows land or none do
func (s *Store) InsertAll(objects []Persistable) error {
	if len(objects) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := insert(tx, obj); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Count returns the number of rows of obj's table matching whereClause
func (s *Store) Count(obj Persistable, whereClause string, args ...any) (int, error) {
	tableName := obj.GetTableName()
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName)
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", tableName, err)
	}
	return count, nil
}

// FindAll retrieves all records of the given type
func (s *Store) FindAll(obj Persistable) ([]any, error) {
	return s.FindWhere(obj, "")
}

// FindWhere executes a custom WHERE query returning new instances of obj's type in rowid order
func (s *Store) FindWhere(obj Persistable, whereClause string, args ...any) ([]any, error) {
	tableName := obj.GetTableName()
	columns, _ := getSelectData(obj)

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), tableName)
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += " ORDER BY rowid"
	logger.Debug("FindWhere SQL", query)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var results []any
	for rows.Next() {
		newObj := reflect.New(objType).Interface()
		_, destinations := getSelectData(newObj)
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, newObj)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

func insert(e execer, obj Persistable) error {
	tableName := obj.GetTableName()
	columns, values := getInsertData(obj)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tableName, strings.Join(columns, ", "), placeholders)
	if _, err := e.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

// persistedFields walks the exported fields of obj that carry a dbtype tag
func persistedFields(obj any, fn func(field reflect.StructField, value reflect.Value, column string)) {
	objValue := reflect.ValueOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
	}
	objType := objValue.Type()

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}
		if field.Tag.Get("persist") == "false" || field.Tag.Get("db") == "-" {
			continue
		}
		column := field.Tag.Get("column")
		if column == "" {
			column = strings.ToLower(field.Name)
		}
		fn(field, objValue.Field(i), column)
	}
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj any, tableName string) string {
	var columns []string
	persistedFields(obj, func(field reflect.StructField, _ reflect.Value, column string) {
		columns = append(columns, fmt.Sprintf("%s %s", column, field.Tag.Get("dbtype")))
	})
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	var indexSQL []string
	persistedFields(obj, func(field reflect.StructField, _ reflect.Value, column string) {
		if field.Tag.Get("index") == "" {
			return
		}
		indexName := fmt.Sprintf("idx_%s_%s", tableName, column)
		indexSQL = append(indexSQL, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName, tableName, column))
	})
	return indexSQL
}

// getInsertData extracts column names and values for INSERT
func getInsertData(obj any) ([]string, []any) {
	var columns []string
	var values []any
	persistedFields(obj, func(_ reflect.StructField, value reflect.Value, column string) {
		columns = append(columns, column)
		values = append(values, value.Interface())
	})
	return columns, values
}

// getSelectData extracts column names and scan destinations for SELECT
func getSelectData(obj any) ([]string, []any) {
	var columns []string
	var destinations []any
	persistedFields(obj, func(_ reflect.StructField, value reflect.Value, column string) {
		columns = append(columns, column)
		destinations = append(destinations, value.Addr().Interface())
	})
	return columns, destinations
}
