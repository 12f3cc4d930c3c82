package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

// DefaultSchema is used when no schema is configured
const DefaultSchema = "usersreport"

var schemaPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Postgres struct {
	db          *sql.DB
	schema      string
	adminRoleID model.RoleID
	directory   *directoryRepository
	runHistory  *runHistoryRepository
}

var _ interfaces.Repository = &Postgres{}

type Option func(*Postgres)

// WithSchema sets the schema holding the directory and run history tables
func WithSchema(schema string) Option {
	return func(p *Postgres) {
		p.schema = schema
	}
}

// WithAdministratorRoleID sets the role ID reported as administrator
func WithAdministratorRoleID(id model.RoleID) Option {
	return func(p *Postgres) {
		p.adminRoleID = id
	}
}

// New opens a connection pool and verifies it with a ping. Tables are not
// created; call Migrate for that.
func New(ctx context.Context, url string, opts ...Option) (*Postgres, error) {
	p := &Postgres{
		schema:      DefaultSchema,
		adminRoleID: model.DefaultAdministratorRoleID,
	}
	for _, opt := range opts {
		opt(p)
	}

	schema, err := sanitizeSchema(p.schema)
	if err != nil {
		return nil, err
	}
	p.schema = schema

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres connection")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping postgres", goerr.V("schema", schema))
	}

	p.db = db
	p.directory = &directoryRepository{db: db, schema: schema, adminRoleID: p.adminRoleID}
	p.runHistory = &runHistoryRepository{db: db, schema: schema}
	return p, nil
}

func (p *Postgres) Directory() interfaces.DirectoryRepository {
	return p.directory
}

func (p *Postgres) DirectoryWriter() interfaces.DirectoryWriter {
	return p.directory
}

func (p *Postgres) RunHistory() interfaces.RunHistoryRepository {
	return p.runHistory
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", goerr.New("db schema is required")
	}
	if !schemaPattern.MatchString(value) {
		return "", goerr.New("invalid schema name", goerr.V("schema", value))
	}
	return value, nil
}
