package manager

import (
	"database/sql"
	"fmt"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/models"
)

// Repository persists task records so download history survives restarts.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) (*Repository, error) {
	r := &Repository{db: db}
	if err := r.initTable(); err != nil {
		return nil, fmt.Errorf("failed to init tasks table: %w", err)
	}
	return r, nil
}

func (r *Repository) initTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		platform TEXT,
		format_id TEXT,
		title TEXT,
		thumbnail TEXT,
		status TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0,
		file_path TEXT,
		error TEXT,
		created_time DATETIME,
		updated_time DATETIME
	);
	`
	_, err := r.db.Exec(query)
	return err
}

// Save inserts or replaces one task record.
func (r *Repository) Save(task *models.DownloadTask) error {
	query := `INSERT OR REPLACE INTO tasks
		(id, url, platform, format_id, title, thumbnail, status, progress, file_path, error, created_time, updated_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		task.ID, task.URL, task.Platform, task.FormatID, task.Title, task.Thumbnail,
		string(task.Status), task.Progress, task.FilePath, task.Error,
		task.CreatedAt, task.UpdatedAt)
	return err
}

// Get returns one task record by id.
func (r *Repository) Get(id string) (*models.DownloadTask, error) {
	query := `SELECT id, url, platform, format_id, title, thumbnail, status, progress, file_path, error, created_time, updated_time
		FROM tasks WHERE id = ?`
	row := r.db.QueryRow(query, id)
	return scanTask(row)
}

// List returns all task records, most recently updated first.
func (r *Repository) List() ([]models.DownloadTask, error) {
	query := `SELECT id, url, platform, format_id, title, thumbnail, status, progress, file_path, error, created_time, updated_time
		FROM tasks ORDER BY updated_time DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.DownloadTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// Delete removes one task record.
func (r *Repository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.DownloadTask, error) {
	var task models.DownloadTask
	var status string
	var platform, formatID, title, thumbnail, filePath, errMsg sql.NullString
	err := row.Scan(&task.ID, &task.URL, &platform, &formatID, &title, &thumbnail,
		&status, &task.Progress, &filePath, &errMsg, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	task.Status = models.TaskStatus(status)
	task.Platform = platform.String
	task.FormatID = formatID.String
	task.Title = title.String
	task.Thumbnail = thumbnail.String
	task.FilePath = filePath.String
	task.Error = errMsg.String
	return &task, nil
}
