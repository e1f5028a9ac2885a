package notify

import (
	"os"
	"sync"
)

// AppendLogger is a fire-and-forget append-only line sink. Each append is a
// single complete line; ordering across concurrent requests is not
// guaranteed and append failures never fail the request being handled.
type AppendLogger interface {
	Append(line string) error
}

// FileLog appends lines to a text file opened in append mode. The mutex
// keeps each line a single atomic write.
type FileLog struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileLog(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileLog{f: f}, nil
}

func (l *FileLog) Append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.f.WriteString(line + "\n")
	return err
}

func (l *FileLog) Close() error {
	return l.f.Close()
}

// MemoryLog collects appended lines in memory, for tests and dry runs.
type MemoryLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *MemoryLog) Append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	return nil
}

func (l *MemoryLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
