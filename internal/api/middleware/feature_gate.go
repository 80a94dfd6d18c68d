package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type FeatureChecker interface {
	HasFeature(ctx context.Context, userID string, featureKey string) (bool, error)
}

func RequireFeature(checker FeatureChecker, featureKey string) gin.HandlerFunc {
	return RequireFeatureWhen(checker, featureKey, nil)
}

// RequireFeatureWhen gates only the requests for which applies returns true.
// A nil applies gates every request.
func RequireFeatureWhen(checker FeatureChecker, featureKey string, applies func(*gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if applies != nil && !applies(c) {
			c.Next()
			return
		}

		userID := GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user id"})
			return
		}

		allowed, err := checker.HasFeature(c.Request.Context(), userID, featureKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "feature check failed"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "feature not available", "feature": featureKey})
			return
		}
		c.Next()
	}
}
