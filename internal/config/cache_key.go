package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ActiveAcademicYearKey returns the cache key for the active academic year row
func (r *CacheKeyStruct) ActiveAcademicYearKey() string {
	return "academic_year:active"
}

// DashboardSummaryKey returns the cache key for the dashboard counters
func (r *CacheKeyStruct) DashboardSummaryKey(academicYearID int) string {
	return fmt.Sprintf("dashboard:summary:%d", academicYearID)
}

var CacheKey = NewCacheKeyStruct()
