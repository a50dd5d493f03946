package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"qc-monitor/internal/config"
)

// HolidayProvider supplies the set of non-working dates for a region and
// year. Keys are YYYY-MM-DD strings. Implementations must never fail:
// every error path degrades to a (possibly empty) set.
type HolidayProvider interface {
	GetHolidays(region string, year int) map[string]bool
}

// HolidayService fetches holidays from a remote calendar API with a
// file cache and a bundled fallback list. Lookup order: in-process memo,
// cache file, remote API (when enabled), fallback file, empty set.
type HolidayService struct {
	cfg    config.HolidayConfig
	client *http.Client

	mutex sync.Mutex
	memo  map[string]map[string]bool
}

// holidayAPIEntry is one day in the remote calendar response.
type holidayAPIEntry struct {
	Date      string `json:"date"`
	Name      string `json:"name,omitempty"`
	IsHoliday bool   `json:"isHoliday"`
}

// holidayCacheFile is the on-disk cache format, one file per (region, year).
type holidayCacheFile struct {
	Region    string   `json:"region"`
	Year      int      `json:"year"`
	FetchedAt string   `json:"fetchedAt"`
	Dates     []string `json:"dates"`
}

// NewHolidayService creates a new holiday service
func NewHolidayService(cfg config.HolidayConfig) *HolidayService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HolidayService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		memo:   make(map[string]map[string]bool),
	}
}

// GetHolidays returns the holiday set for a region and year. The set is
// resolved once per process run and reused afterwards, so all date math
// in a run observes one consistent snapshot.
func (s *HolidayService) GetHolidays(region string, year int) map[string]bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := fmt.Sprintf("%s-%d", region, year)
	if set, ok := s.memo[key]; ok {
		return set
	}

	set := s.resolve(region, year)
	s.memo[key] = set
	return set
}

func (s *HolidayService) resolve(region string, year int) map[string]bool {
	if !s.cfg.ForceRefresh {
		if set := s.readCache(region, year); set != nil {
			log.Printf("Loaded %s holidays for %d from cache", region, year)
			return set
		}
	}

	if s.cfg.RemoteEnabled {
		set, err := s.fetchRemote(region, year)
		if err != nil {
			log.Printf("WARNING: Holiday fetch failed for %s %d: %v", region, year, err)
		} else {
			s.writeCache(region, year, set)
			log.Printf("Fetched %d %s holidays for %d from API", len(set), region, year)
			return set
		}
	}

	if set := s.readFallback(region, year); set != nil {
		log.Printf("WARNING: Using bundled fallback %s holidays for %d", region, year)
		return set
	}

	log.Printf("WARNING: No holiday data for %s %d, degrading to weekends-only", region, year)
	return map[string]bool{}
}

// fetchRemote pulls one year's calendar from the configured endpoint.
// The base URL may contain a {region} placeholder.
func (s *HolidayService) fetchRemote(region string, year int) (map[string]bool, error) {
	base := strings.ReplaceAll(s.cfg.APIBaseURL, "{region}", strings.ToLower(region))
	url := fmt.Sprintf("%s/%d/?isHoliday=true", strings.TrimRight(base, "/"), year)

	resp, err := s.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var entries []holidayAPIEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	set := make(map[string]bool)
	for _, entry := range entries {
		if !entry.IsHoliday {
			continue
		}
		if _, err := time.Parse("2006-01-02", entry.Date); err != nil {
			continue
		}
		set[entry.Date] = true
	}
	return set, nil
}

func (s *HolidayService) cachePath(region string, year int) string {
	return filepath.Join(s.cfg.CacheDir, fmt.Sprintf("holidays_%s_%d.json", region, year))
}

// readCache returns nil when there is no usable cache entry.
func (s *HolidayService) readCache(region string, year int) map[string]bool {
	data, err := os.ReadFile(s.cachePath(region, year))
	if err != nil {
		return nil
	}

	var cached holidayCacheFile
	if err := json.Unmarshal(data, &cached); err != nil {
		log.Printf("WARNING: Holiday cache read failed for %s %d: %v", region, year, err)
		return nil
	}

	set := make(map[string]bool, len(cached.Dates))
	for _, date := range cached.Dates {
		set[date] = true
	}
	return set
}

// writeCache persists a fetched holiday set atomically so a concurrent
// reader never sees a partial file.
func (s *HolidayService) writeCache(region string, year int, set map[string]bool) {
	if err := os.MkdirAll(s.cfg.CacheDir, 0o755); err != nil {
		log.Printf("WARNING: Holiday cache dir unavailable: %v", err)
		return
	}

	cached := holidayCacheFile{
		Region:    region,
		Year:      year,
		FetchedAt: time.Now().Format(time.RFC3339),
		Dates:     sortedDates(set),
	}
	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		log.Printf("WARNING: Holiday cache encode failed: %v", err)
		return
	}

	tmp, err := os.CreateTemp(s.cfg.CacheDir, "holidays_*.tmp")
	if err != nil {
		log.Printf("WARNING: Holiday cache write failed: %v", err)
		return
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		log.Printf("WARNING: Holiday cache write failed: %v", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		log.Printf("WARNING: Holiday cache write failed: %v", err)
		return
	}
	if err := os.Rename(tmp.Name(), s.cachePath(region, year)); err != nil {
		os.Remove(tmp.Name())
		log.Printf("WARNING: Holiday cache write failed: %v", err)
	}
}

// readFallback loads the bundled static holiday list. The file maps
// region to year to a list of YYYY-MM-DD dates and is meant to be
// human-editable.
func (s *HolidayService) readFallback(region string, year int) map[string]bool {
	data, err := os.ReadFile(s.cfg.FallbackFile)
	if err != nil {
		return nil
	}

	var fallback map[string]map[string][]string
	if err := json.Unmarshal(data, &fallback); err != nil {
		log.Printf("WARNING: Holiday fallback read failed: %v", err)
		return nil
	}

	dates, ok := fallback[region][fmt.Sprintf("%d", year)]
	if !ok || len(dates) == 0 {
		return nil
	}

	set := make(map[string]bool, len(dates))
	for _, date := range dates {
		set[date] = true
	}
	return set
}

func sortedDates(set map[string]bool) []string {
	dates := make([]string, 0, len(set))
	for date := range set {
		dates = append(dates, date)
	}
	// YYYY-MM-DD sorts chronologically as strings
	sort.Strings(dates)
	return dates
}
