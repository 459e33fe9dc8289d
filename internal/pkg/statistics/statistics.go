package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/AmeyBarve/CivicTrack/app/models"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/cache"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/database"
)

const (
	CacheKeyReportsTotal    = "statistics:reports:total"
	CacheKeyReportsDaily    = "statistics:reports:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyReportsResolved = "statistics:reports:resolved"
	CacheExpiration         = 30 * time.Minute
)

// StatisticsData holds the counts shown on the dashboard.
type StatisticsData struct {
	TodayReports    int `json:"today_reports"`
	ResolvedReports int `json:"resolved_reports"`
	TotalReports    int `json:"total_reports"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached counts are stale.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cached counts when they are stale.
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next UpdateCacheIfNeeded to refresh.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recounts all report statistics and stores them in the cache.
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalReports int64
	if err := db.Model(&models.Report{}).Count(&totalReports).Error; err != nil {
		log.Printf("Error counting total reports: %v", err)
		return err
	}

	var todayReports int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	if err := db.Model(&models.Report{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayReports).Error; err != nil {
		log.Printf("Error counting today's reports: %v", err)
		return err
	}

	var resolvedReports int64
	if err := db.Model(&models.Report{}).Where("status = ?", models.StatusResolved).Count(&resolvedReports).Error; err != nil {
		log.Printf("Error counting resolved reports: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyReportsTotal, strconv.FormatInt(totalReports, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total reports: %v", err)
		return err
	}

	dailyKey := fmt.Sprintf(CacheKeyReportsDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todayReports, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's reports: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyReportsResolved, strconv.FormatInt(resolvedReports, 10), CacheExpiration); err != nil {
		log.Printf("Error caching resolved reports: %v", err)
		return err
	}

	return nil
}

func cachedOrCount(key string, count func() (int64, error)) int {
	val, err := cache.Get(key)
	if err == nil {
		n, convErr := strconv.ParseInt(val, 10, 64)
		if convErr != nil {
			return 0
		}
		return int(n)
	}

	n, err := count()
	if err != nil {
		return 0
	}
	if err := cache.Set(key, strconv.FormatInt(n, 10), CacheExpiration); err != nil {
		log.Printf("Error caching %s: %v", key, err)
	}
	return int(n)
}

// GetStatisticsData returns all dashboard counts, refreshing the cache if needed.
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	db := database.GetDB()
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	return StatisticsData{
		TotalReports: cachedOrCount(CacheKeyReportsTotal, func() (int64, error) {
			var n int64
			err := db.Model(&models.Report{}).Count(&n).Error
			return n, err
		}),
		TodayReports: cachedOrCount(fmt.Sprintf(CacheKeyReportsDaily, today), func() (int64, error) {
			var n int64
			err := db.Model(&models.Report{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&n).Error
			return n, err
		}),
		ResolvedReports: cachedOrCount(CacheKeyReportsResolved, func() (int64, error) {
			var n int64
			err := db.Model(&models.Report{}).Where("status = ?", models.StatusResolved).Count(&n).Error
			return n, err
		}),
	}
}
