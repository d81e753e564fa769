// Package postgis persists obstacle footprints in PostgreSQL/PostGIS so large
// obstacle sets can be loaded once and pulled back per planning area.
package postgis

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kass/go-rrt-planner/pkg/config"
	"github.com/kass/go-rrt-planner/pkg/models"
	_ "github.com/lib/pq"
)

const batchSize = 5000

type ObstacleStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewObstacleStore opens and pings a PostGIS connection
func NewObstacleStore(cfg config.PostGISConfig, logger *slog.Logger) (*ObstacleStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if logger == nil {
		logger = slog.Default()
	}
	return &ObstacleStore{db: db, logger: logger}, nil
}

// InitSchema drops and recreates the obstacles table
func (s *ObstacleStore) InitSchema() error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		`DROP TABLE IF EXISTS obstacles;`,
		`CREATE TABLE obstacles (
			id TEXT PRIMARY KEY,
			ceiling DOUBLE PRECISION NOT NULL,
			footprint GEOMETRY(POLYGON, 4326) NOT NULL
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// CreateSpatialIndex creates a GIST index on the footprint column
func (s *ObstacleStore) CreateSpatialIndex() error {
	start := time.Now()
	if _, err := s.db.Exec(`CREATE INDEX idx_obstacles_footprint ON obstacles USING GIST(footprint);`); err != nil {
		return fmt.Errorf("failed to create spatial index: %w", err)
	}
	if _, err := s.db.Exec("ANALYZE obstacles;"); err != nil {
		return fmt.Errorf("failed to analyze table: %w", err)
	}
	s.logger.Info("created spatial index", "elapsed", time.Since(start))
	return nil
}

// BulkInsertObstacles inserts obstacles, committing every batchSize rows
func (s *ObstacleStore) BulkInsertObstacles(obstacles []models.Polygon) error {
	stmt, err := s.db.Prepare(`
		INSERT INTO obstacles (id, ceiling, footprint)
		VALUES ($1, $2, ST_GeomFromText($3, 4326))
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	txStmt := tx.Stmt(stmt)

	for i, o := range obstacles {
		wkt, err := polygonWKT(o.Vertices)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("obstacle %s: %w", o.ID, err)
		}
		if _, err := txStmt.Exec(o.ID, o.Ceiling, wkt); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert obstacle %s: %w", o.ID, err)
		}

		if (i+1)%batchSize == 0 {
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit batch: %w", err)
			}
			tx, err = s.db.Begin()
			if err != nil {
				return fmt.Errorf("failed to begin new transaction: %w", err)
			}
			txStmt = tx.Stmt(stmt)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit final batch: %w", err)
	}
	s.logger.Debug("inserted obstacles", "count", len(obstacles))
	return nil
}

// QueryBox returns every obstacle whose footprint intersects box
func (s *ObstacleStore) QueryBox(box models.BoundingBox) ([]models.Polygon, error) {
	// exterior ring only; ST_DumpPoints paths are {ring, vertex}
	query := `
		SELECT id, ceiling, ST_Y((dp).geom) AS lat, ST_X((dp).geom) AS lon
		FROM (
			SELECT id, ceiling, ST_DumpPoints(footprint) AS dp
			FROM obstacles
			WHERE footprint && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		) AS pts
		WHERE (dp).path[1] = 1
		ORDER BY id, (dp).path[2]
	`

	rows, err := s.db.Query(query,
		box.BottomLeft.Lon, box.BottomLeft.Lat,
		box.TopRight.Lon, box.TopRight.Lat)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var vertices []vertexRow
	for rows.Next() {
		var v vertexRow
		if err := rows.Scan(&v.id, &v.ceiling, &v.lat, &v.lon); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		vertices = append(vertices, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return collectPolygons(vertices), nil
}

// Count returns the number of stored obstacles
func (s *ObstacleStore) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM obstacles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count obstacles: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *ObstacleStore) Close() error {
	return s.db.Close()
}

// vertexRow is one exterior ring vertex as returned by QueryBox
type vertexRow struct {
	id       string
	ceiling  float64
	lat, lon float64
}

// collectPolygons groups consecutive rows by id and drops each ring's closing vertex
func collectPolygons(rows []vertexRow) []models.Polygon {
	var polygons []models.Polygon
	for _, r := range rows {
		n := len(polygons)
		if n == 0 || polygons[n-1].ID != r.id {
			polygons = append(polygons, models.Polygon{ID: r.id, Ceiling: r.ceiling})
			n++
		}
		p := &polygons[n-1]
		p.Vertices = append(p.Vertices, models.Location{Lat: r.lat, Lon: r.lon})
	}

	for i := range polygons {
		vs := polygons[i].Vertices
		if len(vs) > 1 && vs[0] == vs[len(vs)-1] {
			polygons[i].Vertices = vs[:len(vs)-1]
		}
	}
	return polygons
}

// polygonWKT renders vertices as a closed WKT polygon in (lon lat) order
func polygonWKT(vertices []models.Location) (string, error) {
	if len(vertices) < 3 {
		return "", fmt.Errorf("polygon needs at least 3 vertices, got %d", len(vertices))
	}

	ring := vertices
	if vertices[0] != vertices[len(vertices)-1] {
		ring = append(ring[:len(ring):len(ring)], vertices[0])
	}

	var b strings.Builder
	b.WriteString("POLYGON((")
	for i, v := range ring {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(v.Lon, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(v.Lat, 'f', -1, 64))
	}
	b.WriteString("))")
	return b.String(), nil
}
