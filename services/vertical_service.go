package services

import (
	"log"
	"sync"

	"gorm.io/gorm"

	"github.com/summitworks/event_registration/models"
)

var (
	verticalCache map[string]models.Vertical
	verticalMutex sync.RWMutex
)

// LoadVerticals reads the vertical configuration table into the in-process
// cache. Called at startup and whenever the table changes.
func LoadVerticals(db *gorm.DB) error {
	var verticals []models.Vertical
	if err := db.Where("active = ?", true).Find(&verticals).Error; err != nil {
		return err
	}
	CacheVerticals(verticals)
	log.Printf("✅ Loaded %d active verticals", len(verticals))
	return nil
}

func CacheVerticals(verticals []models.Vertical) {
	cache := make(map[string]models.Vertical, len(verticals))
	for _, v := range verticals {
		cache[v.Code] = v
	}

	verticalMutex.Lock()
	verticalCache = cache
	verticalMutex.Unlock()
}

func GetVertical(code string) (models.Vertical, bool) {
	verticalMutex.RLock()
	defer verticalMutex.RUnlock()
	v, ok := verticalCache[code]
	return v, ok
}
