package router

import (
	"net/http"

	"cogscreen/internal/handlers"
	"cogscreen/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const subjectSessionKey = "subjectID"

// SubjectMiddleware binds every browser session to an anonymous subject. A
// session without a subject id gets a fresh one; a subject that was swept
// while idle is recreated under the same id with empty results.
func SubjectMiddleware(log *zap.Logger, store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := session.Get(subjectSessionKey).(string)
		if !ok || uuid.Validate(id) != nil {
			id = uuid.NewString()
			session.Set(subjectSessionKey, id)
			if err := session.Save(); err != nil {
				log.Error("Failed to save session", zap.Error(err))
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}

		subj, err := store.GetOrCreate(id)
		if err != nil {
			log.Error("Failed to load subject", zap.String("subject", id), zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(handlers.SubjectContextKey, subj)
		c.Next()
	}
}
