// Package storage appends dashboard events to date-organized JSONL files.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/indexdash/internal/types"
)

// Source is anything that hands out an event subscription.
type Source interface {
	Subscribe() (int64, <-chan types.Event)
	Unsubscribe(id int64)
}

// Journal writes one JSON line per event to <dir>/<YYYY-MM-DD>/events.jsonl.
type Journal struct {
	dir       string
	maxSizeMB int

	mu          sync.Mutex
	currentDate string
	logger      *lumberjack.Logger
	written     int64

	done chan struct{}
	wg   sync.WaitGroup
}

// NewJournal creates a journal rooted at dir. Nothing is written until Record
// or Follow delivers an event.
func NewJournal(dir string, maxSizeMB int) *Journal {
	if maxSizeMB <= 0 {
		maxSizeMB = 25
	}
	return &Journal{dir: dir, maxSizeMB: maxSizeMB, done: make(chan struct{})}
}

// Follow subscribes to src and records every event until Close.
func (j *Journal) Follow(src Source) {
	id, ch := src.Subscribe()
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer src.Unsubscribe(id)
		for {
			select {
			case evt, ok := <-ch:
				if !ok {
					return
				}
				j.recordLogged(evt)
			case <-j.done:
				// Events already buffered at Close still reach the file.
				for {
					select {
					case evt, ok := <-ch:
						if !ok {
							return
						}
						j.recordLogged(evt)
					default:
						return
					}
				}
			}
		}
	}()
}

func (j *Journal) recordLogged(evt types.Event) {
	if err := j.Record(evt); err != nil {
		slog.Error("journal write failed", "type", evt.Type, "error", err)
	}
}

// Record appends evt synchronously.
func (j *Journal) Record(evt types.Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("storage: marshal event: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	date := evt.At.UTC().Format("2006-01-02")
	if j.logger == nil || date != j.currentDate {
		if err := j.rotateLocked(date); err != nil {
			return err
		}
	}
	if _, err := j.logger.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("storage: write event: %w", err)
	}
	j.written++
	return nil
}

// Written reports how many events were recorded.
func (j *Journal) Written() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.written
}

// Close stops following and closes the current file.
func (j *Journal) Close() error {
	select {
	case <-j.done:
	default:
		close(j.done)
	}
	j.wg.Wait()

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.logger != nil {
		err := j.logger.Close()
		j.logger = nil
		return err
	}
	return nil
}

func (j *Journal) rotateLocked(date string) error {
	if j.logger != nil {
		if err := j.logger.Close(); err != nil {
			slog.Debug("journal close failed", "date", j.currentDate, "error", err)
		}
	}

	dir := filepath.Join(j.dir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create journal dir: %w", err)
	}
	filename := filepath.Join(dir, "events.jsonl")
	j.logger = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    j.maxSizeMB,
		MaxBackups: 10,
		MaxAge:     30,
		LocalTime:  false,
	}
	j.currentDate = date
	slog.Info("journal file opened", "file", filename)
	return nil
}
