package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logFilePrefix = "catalog-"

var numberedLogFile = regexp.MustCompile(`^catalog-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingLogger is an io.Writer that starts a new file every ISO week and
// whenever the current file would grow past maxFileSize.
type RotatingLogger struct {
	logDir      string
	retention   time.Duration
	maxFileSize int64

	mu          sync.Mutex
	currentFile *os.File
	currentWeek string
	currentSize int64
	now         func() time.Time
}

// NewRotatingLogger creates a rotating logger. A maxFileSize of 0 disables
// size based rotation.
func NewRotatingLogger(logDir string, retentionWeeks int, maxFileSize int64) *RotatingLogger {
	return &RotatingLogger{
		logDir:      logDir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// weekKey returns the ISO week in YYYY-Www format
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write appends p to the current file, rotating first when needed.
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := weekKey(rl.now())
	switch {
	case rl.currentFile == nil || rl.currentWeek != week:
		if err := rl.openLocked(week, false); err != nil {
			return 0, err
		}
	case rl.maxFileSize > 0 && rl.currentSize+int64(len(p)) > rl.maxFileSize:
		if err := rl.openLocked(week, true); err != nil {
			return 0, err
		}
	}

	n, err := rl.currentFile.Write(p)
	rl.currentSize += int64(n)
	return n, err
}

// openLocked switches to the right file for week. With full set, the current
// file is at its size limit and a new numbered file is started.
func (rl *RotatingLogger) openLocked(week string, full bool) error {
	if rl.currentFile != nil {
		_ = rl.currentFile.Close()
		rl.currentFile = nil
	}

	if err := os.MkdirAll(rl.logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	name := rl.pickFile(week, full)
	path := filepath.Join(rl.logDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	rl.currentFile = f
	rl.currentWeek = week
	rl.currentSize = size
	return nil
}

// pickFile returns the base file for the week when it still has room,
// otherwise the last numbered file with room, otherwise the next number.
func (rl *RotatingLogger) pickFile(week string, full bool) string {
	base := logFilePrefix + week + ".log"
	if !full && rl.hasRoom(filepath.Join(rl.logDir, base)) {
		return base
	}

	last := 0
	matches, _ := filepath.Glob(filepath.Join(rl.logDir, logFilePrefix+week+"_??.log"))
	for _, m := range matches {
		sub := numberedLogFile.FindStringSubmatch(filepath.Base(m))
		if len(sub) < 2 {
			continue
		}
		if n, _ := strconv.Atoi(sub[1]); n > last {
			last = n
		}
	}

	if last > 0 && !full {
		name := fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, last)
		if rl.hasRoom(filepath.Join(rl.logDir, name)) {
			return name
		}
	}
	return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, last+1)
}

func (rl *RotatingLogger) hasRoom(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return rl.maxFileSize == 0 || info.Size() < rl.maxFileSize
}

// Cleanup removes log files last modified before the retention window and
// returns how many were deleted. The scheduler calls it daily.
func (rl *RotatingLogger) Cleanup() (int, error) {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	rl.mu.Lock()
	current := ""
	if rl.currentFile != nil {
		current = filepath.Base(rl.currentFile.Name())
	}
	rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.retention)
	deleted := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == current || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(rl.logDir, name)); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

// Close closes the current file.
func (rl *RotatingLogger) Close() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.currentFile == nil {
		return nil
	}
	err := rl.currentFile.Close()
	rl.currentFile = nil
	return err
}
