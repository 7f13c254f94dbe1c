package watcher

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type EventKind int

const (
	EventChanged EventKind = iota
	EventMissing
)

func (k EventKind) String() string {
	if k == EventMissing {
		return "missing"
	}
	return "changed"
}

type Fingerprint struct {
	Mod  time.Time
	Size int64
	Hash string
}

type Event struct {
	Path string
	Kind EventKind
	Prev Fingerprint
	Curr Fingerprint
}

type Options struct {
	Interval time.Duration
	Buffer   int
}

// Watcher polls one data file and reports edits made by other programs.
// Writes made through Write become the new baseline and are not reported.
type Watcher struct {
	// mu is held for a whole scan so a Write can never interleave with one.
	mu       sync.Mutex
	path     string
	fp       Fingerprint
	missing  bool
	out      chan Event
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
	started  bool
	closed   bool
}

const (
	defaultInterval = time.Second
	defaultBuffer   = 4
	hashPrefix      = "sha256:"
)

// New starts from the file's current content. A path that does not exist
// yet is reported once it appears.
func New(path string, opts Options) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	buf := opts.Buffer
	if buf <= 0 {
		buf = defaultBuffer
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		out:      make(chan Event, buf),
		interval: interval,
	}
	w.fp, w.missing = read(w.path)
	return w
}

func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) Events() <-chan Event {
	return w.out
}

func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started || w.closed {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.stop = make(chan struct{})
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if evt, ok := w.Scan(); ok {
					w.emit(evt)
				}
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop ends polling and closes Events. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.started {
		close(w.stop)
	}
	w.mu.Unlock()
	w.wg.Wait()
	close(w.out)
}

// Write runs fn with scanning held off and adopts whatever fn left on disk
// as the baseline.
func (w *Watcher) Write(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := fn()
	w.fp, w.missing = read(w.path)
	return err
}

// Scan compares the file with the baseline once. Any difference becomes
// the new baseline.
func (w *Watcher) Scan() (Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return Event{}, false
	}

	info, err := os.Stat(w.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || w.missing {
			return Event{}, false
		}
		w.missing = true
		return Event{Path: w.path, Kind: EventMissing, Prev: w.fp}, true
	}
	if !w.missing && info.ModTime().Equal(w.fp.Mod) && info.Size() == w.fp.Size {
		return Event{}, false
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		if w.missing {
			return Event{}, false
		}
		w.missing = true
		return Event{Path: w.path, Kind: EventMissing, Prev: w.fp}, true
	}

	prev, wasMissing := w.fp, w.missing
	w.fp = fingerprint(info, data)
	w.missing = false
	if !wasMissing && w.fp.Hash == prev.Hash {
		// touched but not edited
		return Event{}, false
	}
	return Event{Path: w.path, Kind: EventChanged, Prev: prev, Curr: w.fp}, true
}

func (w *Watcher) emit(evt Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.out <- evt:
	default:
	}
}

func read(path string) (Fingerprint, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fingerprint{}, true
	}
	return fingerprint(info, data), false
}

func fingerprint(info fs.FileInfo, data []byte) Fingerprint {
	return Fingerprint{
		Mod:  info.ModTime(),
		Size: int64(len(data)),
		Hash: hashBytes(data),
	}
}

func hashBytes(data []byte) string {
	if len(data) == 0 {
		return hashPrefix + "0"
	}
	sum := sha256.Sum256(data)
	return hashPrefix + hex.EncodeToString(sum[:])
}
