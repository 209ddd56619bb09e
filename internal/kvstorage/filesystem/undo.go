package filesystem

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"kv/internal/fsutil"
	"kv/internal/kvstorage"
)

// undoDelim separates the fields of an undo line.
const undoDelim = ":::"

// UndoEntry is one captured value. NewKey is set only for renames, where
// Key is the original name and NewKey is where the value lives now.
type UndoEntry struct {
	Key    string
	NewKey string
	Value  string
}

// IsRename reports whether the entry was captured by a key rename.
func (e UndoEntry) IsRename() bool {
	return e.NewKey != ""
}

// UndoLog is the single-slot record of the state before the last mutation.
//
// The file holds one line per captured value, either "key:::value" or
// "old_key:::new_key:::value". An absent file means there is nothing to
// undo; an empty file means the mutated key had no prior values.
type UndoLog struct {
	path string
}

// NewUndoLog returns an UndoLog stored at path.
func NewUndoLog(path string) *UndoLog {
	return &UndoLog{path: path}
}

// Record overwrites the log with entries.
func (u *UndoLog) Record(entries []UndoEntry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(escapeField(e.Key))
		b.WriteString(undoDelim)
		if e.IsRename() {
			b.WriteString(escapeField(e.NewKey))
			b.WriteString(undoDelim)
		}
		b.WriteString(escapeField(e.Value))
		b.WriteByte('\n')
	}
	return fsutil.AtomicWrite(u.path, []byte(b.String()))
}

// Load returns the recorded entries and whether a record exists.
func (u *UndoLog) Load() ([]UndoEntry, bool, error) {
	f, err := os.Open(u.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var entries []UndoEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := splitFields(line)
		switch len(fields) {
		case 2:
			entries = append(entries, UndoEntry{Key: fields[0], Value: fields[1]})
		case 3:
			entries = append(entries, UndoEntry{Key: fields[0], NewKey: fields[1], Value: fields[2]})
		default:
			return nil, true, fmt.Errorf("undo line %d: expected 2 or 3 fields, got %d", lineNo, len(fields))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, true, err
	}
	return entries, true, nil
}

// Clear deletes the record.
func (u *UndoLog) Clear() error {
	return fsutil.RemoveIfExists(u.path)
}

// Undo reverses the most recent mutation and clears the record, so a
// second call is a no-op. It reports whether the store changed.
func (s *Store) Undo(ctx context.Context) (bool, error) {
	entries, ok, err := s.undo.Load()
	if err != nil {
		s.logger.Warn("discarding unreadable undo record", "path", s.undo.path, "err", err)
		return false, s.undo.Clear()
	}
	if !ok {
		return false, nil
	}
	if len(entries) == 0 {
		return false, s.undo.Clear()
	}

	restored := kvstorage.NewEntries()
	var moved []string
	for _, e := range entries {
		if e.IsRename() && !restored.Has(e.Key) {
			moved = append(moved, e.NewKey)
		}
		vals, _ := restored.Get(e.Key)
		restored.Put(e.Key, append(vals, e.Value))
	}

	for _, k := range moved {
		s.data.Remove(k)
	}
	for _, k := range restored.Keys() {
		vals, _ := restored.Get(k)
		s.data.Put(k, vals)
	}

	if err := s.save(); err != nil {
		return true, err
	}
	return true, s.undo.Clear()
}

// escapeField backslash-escapes characters that would break the line format.
func escapeField(s string) string {
	if !strings.ContainsAny(s, "\\:\n\r") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ':':
			b.WriteString(`\:`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitFields splits an undo line on unescaped delimiters and unescapes
// each field. A lone unescaped ':' is kept literally.
func splitFields(line string) []string {
	var fields []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			switch line[i] {
			case 'n':
				cur.WriteByte('\n')
			case 'r':
				cur.WriteByte('\r')
			default:
				cur.WriteByte(line[i])
			}
		case strings.HasPrefix(line[i:], undoDelim):
			fields = append(fields, cur.String())
			cur.Reset()
			i += len(undoDelim) - 1
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}
