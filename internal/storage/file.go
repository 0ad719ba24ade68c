package storage

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/models"

	"github.com/google/uuid"
)

const (
	ApplicationsFile = "founders-applications.jsonl"
	EmailLogsFile    = "email-logs.jsonl"
)

// fileApplication is one line of the applications file.
type fileApplication struct {
	models.Application
	Timestamp string `json:"timestamp"`
	IP        string `json:"ip"`
	UA        string `json:"ua"`
}

// FileStore is the last-resort tier. It keeps JSON lines under a data directory.
type FileStore struct {
	dir string
	now func() time.Time

	// guards the applications file against a concurrent rewrite
	mu sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) Tier() Tier { return TierFile }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) CreateApplication(_ context.Context, in models.NewApplication, meta models.RequestMeta) (*models.Application, error) {
	in = in.WithDefaults()
	now := s.now().UTC()

	id, err := founderID(now)
	if err != nil {
		return nil, apperrors.NewStorageError("create_application", err)
	}

	rec := fileApplication{
		Application: models.Application{
			ID:         id,
			Email:      in.Email,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			Company:    in.Company,
			Role:       in.Role,
			Motivation: in.Motivation,
			Source:     in.Source,
			Status:     models.StatusPending,
			CreatedAt:  now,
		},
		Timestamp: now.Format(time.RFC3339Nano),
		IP:        meta.IP,
		UA:        meta.UserAgent,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return nil, apperrors.NewStorageError("create_application", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := AppendLine(s.path(ApplicationsFile), line); err != nil {
		return nil, apperrors.NewStorageError("create_application", err)
	}
	return &rec.Application, nil
}

func (s *FileStore) ListApplications(_ context.Context) ([]models.Application, error) {
	s.mu.Lock()
	lines, err := readLines(s.path(ApplicationsFile))
	s.mu.Unlock()
	if err != nil {
		return nil, apperrors.NewStorageError("list_applications", err)
	}

	apps := make([]models.Application, 0, len(lines))
	for _, line := range lines {
		var rec fileApplication
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		apps = append(apps, rec.Application)
	}
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps, nil
}

// UpdateApplicationStatus rewrites the whole file through a temp file and rename.
func (s *FileStore) UpdateApplicationStatus(_ context.Context, id string, status models.Status) (*models.Application, models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(ApplicationsFile)
	lines, err := readLines(path)
	if err != nil {
		return nil, "", apperrors.NewStorageError("update_application_status", err)
	}

	var (
		updated *models.Application
		prev    models.Status
	)
	for i, line := range lines {
		var rec fileApplication
		if err := json.Unmarshal(line, &rec); err != nil || rec.ID != id {
			continue
		}

		prev = rec.Status
		reviewedAt := s.now().UTC()
		rec.Status = status
		rec.ReviewedAt = &reviewedAt

		out, err := json.Marshal(rec)
		if err != nil {
			return nil, "", apperrors.NewStorageError("update_application_status", err)
		}
		lines[i] = out
		updated = &rec.Application
		break
	}
	if updated == nil {
		return nil, "", apperrors.NewNotFoundError("application", id)
	}

	if err := rewriteLines(path, lines); err != nil {
		return nil, "", apperrors.NewStorageError("update_application_status", err)
	}
	return updated, prev, nil
}

func (s *FileStore) AppendLog(_ context.Context, entry models.EmailLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = s.now().UTC()
	}
	entry.Metadata = metadataOrEmpty(entry.Metadata)

	line, err := json.Marshal(entry)
	if err != nil {
		return apperrors.NewStorageError("append_log", err)
	}
	if err := AppendLine(s.path(EmailLogsFile), line); err != nil {
		return apperrors.NewStorageError("append_log", err)
	}
	return nil
}

func (s *FileStore) ListEmailLogs(_ context.Context, limit int) ([]models.EmailLogEntry, error) {
	lines, err := readLines(s.path(EmailLogsFile))
	if err != nil {
		return nil, apperrors.NewStorageError("list_email_logs", err)
	}

	logs := make([]models.EmailLogEntry, 0, len(lines))
	for _, line := range lines {
		var entry models.EmailLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		logs = append(logs, entry)
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].SentAt.After(logs[j].SentAt) })
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// AppendLine writes line plus a newline with a single write on an O_APPEND file.
func AppendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// readLines returns the non-empty lines of path; a missing file has none.
func readLines(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	var lines [][]byte
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", filepath.Base(path), err)
	}
	return lines, nil
}

func rewriteLines(path string, lines [][]byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// founderID is founder_<unix millis>_<9 random base36 chars>.
func founderID(now time.Time) (string, error) {
	suffix := make([]byte, 9)
	max := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		suffix[i] = base36[n.Int64()]
	}
	return fmt.Sprintf("founder_%d_%s", now.UnixMilli(), suffix), nil
}
