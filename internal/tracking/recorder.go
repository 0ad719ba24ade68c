// Package tracking appends landing-page signups and analytics events to flat files.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"founders-circle/internal/common/logger"
	"founders-circle/internal/common/metrics"
	"founders-circle/internal/models"
	"founders-circle/internal/storage"

	"github.com/mssola/useragent"
)

const (
	WaitlistFile  = "waitlist.csv"
	AnalyticsFile = "analytics.jsonl"

	waitlistHeader = "timestamp,email,source,ua\n"
	isoMillis      = "2006-01-02T15:04:05.000Z"
)

// Mirror receives a copy of every tracking record. Failures never reach the caller.
type Mirror interface {
	Index(ctx context.Context, doc []byte) error
}

type Recorder struct {
	dir    string
	mirror Mirror
	logger logger.Logger
	now    func() time.Time
}

// NewRecorder creates dir and the waitlist header if they are missing. mirror may be nil.
func NewRecorder(dir string, mirror Mirror, log logger.Logger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, WaitlistFile), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	switch {
	case err == nil:
		_, werr := f.WriteString(waitlistHeader)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return nil, fmt.Errorf("write waitlist header: %w", werr)
		}
	case !errors.Is(err, os.ErrExist):
		return nil, fmt.Errorf("create waitlist: %w", err)
	}

	return &Recorder{
		dir:    dir,
		mirror: mirror,
		logger: log.WithFields(map[string]interface{}{"component": "tracking"}),
		now:    time.Now,
	}, nil
}

// Rows are never quoted, so separators and line breaks are removed from each field.
var (
	csvField     = strings.NewReplacer(",", "", "\r", "", "\n", "")
	csvUserAgent = strings.NewReplacer(",", " ", "\r", " ", "\n", " ")
)

// JoinWaitlist appends one CSV row. The email is expected to be validated already.
func (r *Recorder) JoinWaitlist(_ context.Context, email, source, userAgent string) (*models.WaitlistEntry, error) {
	if source == "" {
		source = models.DefaultWaitlistSource
	}
	entry := &models.WaitlistEntry{
		Timestamp: r.now().UTC(),
		Email:     csvField.Replace(email),
		Source:    csvField.Replace(source),
		UserAgent: csvUserAgent.Replace(userAgent),
	}

	row := strings.Join([]string{entry.Timestamp.Format(isoMillis), entry.Email, entry.Source, entry.UserAgent}, ",")
	if err := storage.AppendLine(filepath.Join(r.dir, WaitlistFile), []byte(row)); err != nil {
		return nil, err
	}
	metrics.WaitlistSignupsTotal.Inc()
	return entry, nil
}

// Track appends event enriched with t, ip and ua. Fields present in event win.
func (r *Recorder) Track(ctx context.Context, event map[string]interface{}, meta models.RequestMeta) error {
	record := map[string]interface{}{
		"t":  r.now().UTC().Format(isoMillis),
		"ip": meta.IP,
		"ua": meta.UserAgent,
	}
	for k, v := range event {
		record[k] = v
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal track event: %w", err)
	}
	if err := storage.AppendLine(filepath.Join(r.dir, AnalyticsFile), line); err != nil {
		return err
	}
	metrics.TrackEventsTotal.WithLabelValues(DeviceClass(meta.UserAgent)).Inc()

	if r.mirror != nil {
		if err := r.mirror.Index(ctx, line); err != nil {
			r.logger.Warn("track mirror failed", map[string]interface{}{"error": err})
		}
	}
	return nil
}

// DeviceClass buckets a User-Agent header into bot, mobile, desktop or unknown.
func DeviceClass(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return "unknown"
	}
	parsed := useragent.New(ua)
	switch {
	case parsed.Bot():
		return "bot"
	case parsed.Mobile():
		return "mobile"
	default:
		return "desktop"
	}
}
