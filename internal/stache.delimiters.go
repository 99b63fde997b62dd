package internal

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
)

// DelimiterSet is an ordered pair of opening and closing tag delimiters
type DelimiterSet struct {
	Open  string
	Close string
}

// DefaultDelimiters returns the standard "{{" "}}" pair
func DefaultDelimiters() DelimiterSet {
	return DelimiterSet{Open: DefaultOpenDelimiter, Close: DefaultCloseDelimiter}
}

// String returns the canonical "open close" form, also used as cache key
func (d DelimiterSet) String() string {
	return d.Open + " " + d.Close
}

// Validate reports an InvalidTags error when either side is empty or
// contains whitespace.
func (d DelimiterSet) Validate() error {
	if !validDelimiter(d.Open) || !validDelimiter(d.Close) {
		return NewParseError(ParseErrorInvalidTags, "", 0)
	}
	return nil
}

func validDelimiter(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, unicode.IsSpace) < 0
}

// ParseDelimiterSet splits a set-delimiter value such as "<% %>" into a pair.
// Anything other than exactly two whitespace separated parts is invalid.
func ParseDelimiterSet(value string) (DelimiterSet, error) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return DelimiterSet{}, NewParseError(ParseErrorInvalidTags, "", 0)
	}
	return DelimiterSet{Open: parts[0], Close: parts[1]}, nil
}

// TagPatterns holds the compiled patterns for one delimiter pair
type TagPatterns struct {
	Delimiters DelimiterSet
	Open       *regexp.Regexp // open delimiter followed by optional whitespace
	Close      *regexp.Regexp // optional whitespace followed by the close delimiter
	Closing    *regexp.Regexp // optional whitespace, "}" and the close delimiter
}

// CompileTagPatterns builds the patterns for a delimiter pair without caching
func CompileTagPatterns(d DelimiterSet) *TagPatterns {
	return &TagPatterns{
		Delimiters: d,
		Open:       regexp.MustCompile(regexp.QuoteMeta(d.Open) + `\s*`),
		Close:      regexp.MustCompile(`\s*` + regexp.QuoteMeta(d.Close)),
		Closing:    regexp.MustCompile(`\s*` + regexp.QuoteMeta(StrCurly+d.Close)),
	}
}

// DelimiterTable is a bounded cache of compiled tag patterns keyed by the
// delimiter pair. The default pair is always present and never evicted;
// other entries are evicted oldest first.
type DelimiterTable struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*TagPatterns
	order    []string
	logger   *zap.Logger
}

// NewDelimiterTable creates a table with the given capacity. Capacities
// below one are raised to one so the default entry always fits.
func NewDelimiterTable(capacity int, logger *zap.Logger) *DelimiterTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &DelimiterTable{
		capacity: max(capacity, 1),
		logger:   logger,
	}
	t.reset()
	return t
}

func (t *DelimiterTable) reset() {
	def := DefaultDelimiters()
	t.entries = map[string]*TagPatterns{def.String(): CompileTagPatterns(def)}
	t.order = t.order[:0]
}

// Get returns the compiled patterns for d, compiling and caching them on a miss.
// Concurrent misses on the same key converge on the first stored value.
func (t *DelimiterTable) Get(d DelimiterSet) *TagPatterns {
	key := d.String()

	t.mu.Lock()
	if p, ok := t.entries[key]; ok {
		t.mu.Unlock()
		return p
	}
	t.mu.Unlock()

	compiled := CompileTagPatterns(d)

	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.entries[key]; ok {
		return p
	}
	t.store(key, compiled)
	return compiled
}

// Put stores patterns under their delimiter key, replacing any existing value
func (t *DelimiterTable) Put(p *TagPatterns) {
	key := p.Delimiters.String()

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[key]; ok {
		t.entries[key] = p
		return
	}
	t.store(key, p)
}

// store inserts a new key, evicting the oldest non-default entries as needed.
// When the capacity leaves no room beside the default entry, nothing is stored.
// Callers hold t.mu.
func (t *DelimiterTable) store(key string, p *TagPatterns) {
	t.evictTo(t.capacity - 1)
	if len(t.entries) >= t.capacity {
		return
	}
	t.entries[key] = p
	t.order = append(t.order, key)
}

// evictTo drops oldest non-default entries until at most limit entries remain
func (t *DelimiterTable) evictTo(limit int) {
	for len(t.entries) > limit && len(t.order) > 0 {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.entries, oldest)
		t.logger.Debug(LogMsgDelimiterCacheEvicted, zap.String(LogFieldDelimiters, oldest))
	}
}

// SetCapacity changes the capacity, trimming oldest entries immediately
func (t *DelimiterTable) SetCapacity(capacity int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.capacity = max(capacity, 1)
	t.evictTo(t.capacity)
	t.logger.Debug(LogMsgDelimiterCacheResized,
		zap.Int(LogFieldCapacity, t.capacity),
		zap.Int(LogFieldEntries, len(t.entries)))
}

// Capacity returns the current capacity
func (t *DelimiterTable) Capacity() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.capacity
}

// Len returns the number of cached entries, including the default pair
func (t *DelimiterTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Contains reports whether a delimiter pair is cached
func (t *DelimiterTable) Contains(d DelimiterSet) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[d.String()]
	return ok
}

// Clear removes every entry except the default pair
func (t *DelimiterTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
}

var sharedDelimiterTable = NewDelimiterTable(DefaultDelimiterCacheCapacity, nil)

// SharedDelimiterTable returns the process-wide table used by tokenizers
// that were not given their own.
func SharedDelimiterTable() *DelimiterTable {
	return sharedDelimiterTable
}
