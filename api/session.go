package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/Kellerman81/go_portfolio_admin/crud"
	"github.com/Kellerman81/go_portfolio_admin/logger"
	"github.com/Kellerman81/go_portfolio_admin/metrics"
	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// session is the console state of one browser: one page per resource.
type session struct {
	id    string
	mu    sync.Mutex
	pages map[string]*crud.Page
}

// page returns the page of res, creating it on first use.
func (s *session) page(res *crud.Resource, pageSize int) (*crud.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pages[res.Key]; ok {
		return p, false
	}
	p := crud.NewPage(res, pageSize)
	s.pages[res.Key] = p
	return p, true
}

// SessionStore keeps sessions in memory. Idle sessions expire after the TTL
// and the least recently used session is dropped when the store is full.
type SessionStore struct {
	cache  *expirable.LRU[string, *session]
	cookie string
	secure bool
	ttl    time.Duration
}

func NewSessionStore(maxSessions int, ttl time.Duration, cookieName string, secure bool) *SessionStore {
	onEvict := func(id string, _ *session) {
		logger.LogDynamicany(logger.StatusDebug, "session evicted", logger.StrSession, id)
	}
	return &SessionStore{
		cache:  expirable.NewLRU[string, *session](maxSessions, onEvict, ttl),
		cookie: cookieName,
		secure: secure,
		ttl:    ttl,
	}
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	return st.cache.Len()
}

// get returns the session of the request, starting a new one when the cookie
// is missing, malformed or expired.
func (st *SessionStore) get(c *gin.Context) *session {
	if id, err := c.Cookie(st.cookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			if sess, ok := st.cache.Get(id); ok {
				// re-adding extends the expiry
				st.cache.Add(id, sess)
				return sess
			}
		}
	}

	sess := &session{id: uuid.NewString(), pages: map[string]*crud.Page{}}
	st.cache.Add(sess.id, sess)
	metrics.SetSessions(st.cache.Len())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(st.cookie, sess.id, int(st.ttl.Seconds()), "/", "", st.secure, true)
	logger.LogDynamicany(logger.StatusDebug, "session started", logger.StrSession, sess.id)
	return sess
}
