package memory

import (
	"time"

	"github.com/Song-beanpp/film-survey-app-final/internal/survey/flow"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live wizard engines in memory. Sessions idle for an
// hour are purged; an expired session simply looks absent to the caller.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{cache: c}
}

func (r *SessionRepository) Save(sessionId string, engine *flow.Engine) {
	r.cache.Set(sessionId, engine, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionId string) (*flow.Engine, bool) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*flow.Engine), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}
