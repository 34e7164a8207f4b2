package embl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// cachedEntry is one cached nucleotide sequence.
type cachedEntry struct {
	Sequence    string `json:"sequence"`
	Description string `json:"description"`
	RetrievedAt int64  `json:"retrieved_at"`
}

var (
	cacheMu       sync.RWMutex
	cache         map[string]cachedEntry
	cacheLoaded   bool
	cacheFilePath string
	cacheTTLSecs  int64
)

// SetCacheFilePath overrides the on-disk cache location. Call before the
// first fetch.
func SetCacheFilePath(path string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cacheFilePath = path
	cacheLoaded = false
	cache = nil
}

// SetCacheTTLSeconds overrides the cache entry lifetime. Negative disables
// expiry.
func SetCacheTTLSeconds(secs int64) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cacheTTLSecs = secs
}

// cache TTL in seconds (default 7 days); callers hold cacheMu.
func cacheTTL() int64 {
	if cacheTTLSecs != 0 {
		return cacheTTLSecs
	}
	if s := os.Getenv("ENA_CACHE_TTL_SECONDS"); s != "" {
		if v, err := time.ParseDuration(s + "s"); err == nil {
			return int64(v.Seconds())
		}
	}
	return int64(7 * 24 * 3600)
}

// cachePath resolves the cache file location; callers hold cacheMu.
func cachePath() string {
	if cacheFilePath != "" {
		return cacheFilePath
	}
	if dir, err := os.UserCacheDir(); err == nil {
		p := filepath.Join(dir, "gogetem")
		_ = os.MkdirAll(p, 0o755)
		return filepath.Join(p, "ena_cache.json")
	}
	return filepath.Join(os.TempDir(), "gogetem_ena_cache.json")
}

func loadCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cacheLoaded {
		return
	}
	path := cachePath()
	cache = make(map[string]cachedEntry)
	data, err := os.ReadFile(path)
	if err != nil {
		cacheLoaded = true
		return
	}
	_ = json.Unmarshal(data, &cache)
	cacheLoaded = true
}

// FlushCache writes the in-memory cache to disk.
func FlushCache() {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	if cache == nil {
		return
	}
	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(cachePath(), b, 0o644)
}

func getCached(acc string) (cachedEntry, bool) {
	loadCache()
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	e, ok := cache[acc]
	if !ok {
		return cachedEntry{}, false
	}
	ttl := cacheTTL()
	if ttl > 0 && time.Now().Unix()-e.RetrievedAt > ttl {
		return cachedEntry{}, false
	}
	return e, true
}

func setCached(acc, seq, desc string) {
	if acc == "" || seq == "" {
		return
	}
	loadCache()
	cacheMu.Lock()
	cache[acc] = cachedEntry{Sequence: seq, Description: desc, RetrievedAt: time.Now().Unix()}
	cacheMu.Unlock()
	FlushCache()
}
