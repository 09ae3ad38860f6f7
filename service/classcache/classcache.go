// Package classcache provides an in-memory lookup table for share
// class configuration. Class rights are constitutional data seeded
// by migration and read on nearly every policy evaluation and
// ledger mutation, so they are cached process-wide. The content is
// loaded lazily at the first lookup, and Load() reloads it when a
// migration or admin tool announces a change over grevents.
package classcache

import (
	"sync"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/utils/grevents"
)

type classCache struct {
	m             sync.RWMutex
	classes       []*models.ShareClass
	lookupByClass map[enum.ShareClass]int
}

type ClassCache interface {
	Get(enum.ShareClass) *models.ShareClass
	List() []*models.ShareClass
}

var globalCache ClassCache
var once sync.Once

func GetClassCache() ClassCache {
	once.Do(func() {
		var err error
		globalCache, err = NewClassCache()
		if err != nil {
			panic(err)
		}
	})
	return globalCache
}

func NewClassCache() (ClassCache, error) {
	l := &classCache{
		classes:       []*models.ShareClass{},
		lookupByClass: map[enum.ShareClass]int{},
	}
	if err := l.Load(); err != nil {
		return nil, err
	}

	return l, nil
}

func init() {
	grevents.RegisterFunc(func(event *grevents.Event) {
		if event.Name == grevents.EventClassRefreshed {
			log.Debug("triggered share class cache refresh")
			if globalCache != nil {
				if err := globalCache.(*classCache).Load(); err != nil {
					log.Error("failed to refresh share class cache")
					return
				}
				log.Info("share class cache is refreshed")
			}
		}
	})
}

func loadClassesReal() ([]*models.ShareClass, error) {
	var classes []*models.ShareClass
	err := db.DB().Order("id asc").Find(&classes).Error
	return classes, err
}

// LoadClassesFunc is a function to populate the class cache
type LoadClassesFunc func() ([]*models.ShareClass, error)

// replaceable loading function for testing purpose
var loadClasses LoadClassesFunc = loadClassesReal

func MockLoadClasses(f LoadClassesFunc) LoadClassesFunc {
	old := loadClasses
	loadClasses = f
	return old
}

func (l *classCache) Load() error {
	l.m.Lock()
	defer l.m.Unlock()

	classes, err := loadClasses()
	if err != nil {
		return err
	}

	l.lookupByClass = map[enum.ShareClass]int{}

	l.classes = classes
	for i, class := range classes {
		l.lookupByClass[class.Class] = i
	}

	return nil
}

func (l *classCache) Get(c enum.ShareClass) *models.ShareClass {
	l.m.RLock()
	defer l.m.RUnlock()

	if idx, ok := l.lookupByClass[c]; ok {
		return l.classes[idx]
	}
	return nil
}

func (l *classCache) List() []*models.ShareClass {
	l.m.RLock()
	defer l.m.RUnlock()

	out := make([]*models.ShareClass, len(l.classes))
	copy(out, l.classes)
	return out
}
