package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// SubjectQuestionsKey returns the cache key for a subject's full question list.
func (r *CacheKeyStruct) SubjectQuestionsKey(subjectID uuid.UUID) string {
	return fmt.Sprintf("subject:%s:questions", subjectID)
}

// SubjectCatalogKey returns the cache key for the subject catalog.
func (r *CacheKeyStruct) SubjectCatalogKey() string {
	return "subjects:catalog"
}

var CacheKey = NewCacheKeyStruct()
